// Package types contains view types shared by the HTTP adapter and the probe tool.
package types

// Binding is one mapping table entry.
type Binding struct {
	Kind       string `json:"kind"`
	Identifier int    `json:"identifier"`
	Action     string `json:"action"`
}

// TargetStatus reports whether a symbolic audio target currently resolves.
type TargetStatus struct {
	Target   string `json:"target"`
	Resolved bool   `json:"resolved"`
	Session  string `json:"session,omitempty"`
}
