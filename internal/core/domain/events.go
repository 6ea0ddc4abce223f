package domain

import "time"

// ChangeOp is the kind of mutation a ChangeEvent reports.
type ChangeOp string

const (
	OpCreated ChangeOp = "created"
	OpUpdated ChangeOp = "updated"
	OpDeleted ChangeOp = "deleted"
	OpCleared ChangeOp = "cleared"
	OpSeeded  ChangeOp = "seeded"
)

// Entity names used in change events.
const (
	EntityTravel = "travel"
	EntityMedia  = "media"
)

// ChangeEvent tells subscribers that data they may be showing changed.
type ChangeEvent struct {
	Entity    string    `json:"entity"`
	Op        ChangeOp  `json:"op"`
	ID        string    `json:"id,omitempty"`
	TravelID  string    `json:"travel_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
