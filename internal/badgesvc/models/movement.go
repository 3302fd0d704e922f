package models

import "time"

type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Movement is one row of the append-only movements log.
type Movement struct {
	ID        int64     `json:"id"`        // Monotonic, assigned by the store
	BadgeID   string    `json:"badge_id"`  // Not a FK, unregistered badges are logged too
	Direction Direction `json:"direction"` // IN or OUT
	CreatedAt time.Time `json:"created_at"`
}

// MovementView is a movement joined with the registry display name.
type MovementView struct {
	Movement
	DisplayName *string `json:"display_name"`
}

// MovementReport is the result of a single check-in/check-out.
type MovementReport struct {
	BadgeID     string    `json:"badge_id"`
	Direction   Direction `json:"direction"`
	DisplayName *string   `json:"display_name"`
}
