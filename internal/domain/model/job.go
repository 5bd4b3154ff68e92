package model

import "github.com/okian/padmixer/internal/domain/action"

// Job is a resolved action waiting on an execution lane.
type Job struct {
	Seq     uint64        // monotonic per service, assigned at submission
	EventID string        // originating MidiEvent.ID
	Lane    string        // serialization key, see action.LaneKey
	Action  action.Action // what to do
	Value   float64       // volume scalar for SetVolume, ignored otherwise
}
