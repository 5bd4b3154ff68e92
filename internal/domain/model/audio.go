package model

import "strings"

// Session is an application audio stream reported by the platform backend.
// Handle is opaque to everything but the backend that produced it.
type Session struct {
	Name   string `json:"name"`
	Handle string `json:"handle"`
}

// Device is an output endpoint. Name is the human-readable description used
// for alias matching; ID is what the backend needs to select it.
type Device struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// FindDevice returns the first device, in enumeration order, whose name
// contains substr. Matching is case-sensitive.
func FindDevice(devices []Device, substr string) (Device, bool) {
	for _, d := range devices {
		if strings.Contains(d.Name, substr) {
			return d, true
		}
	}
	return Device{}, false
}
