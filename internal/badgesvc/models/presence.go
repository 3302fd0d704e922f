package models

import "time"

type PresenceState string

const (
	PresenceOutside PresenceState = "OUTSIDE"
	PresenceInside  PresenceState = "INSIDE"
)

// Presence is derived from the last movement of a badge, never stored.
type Presence struct {
	BadgeID        string        `json:"badge_id"`
	State          PresenceState `json:"state"`
	LastDirection  *Direction    `json:"last_direction"`
	LastMovementAt *time.Time    `json:"last_movement_at"`
}
