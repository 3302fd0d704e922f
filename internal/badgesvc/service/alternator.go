package service

import "github.com/avvvet/badge-services/internal/badgesvc/models"

// NextDirection is the alternation rule: OUT only when the badge's last
// movement was IN, IN otherwise (no movement yet, or last was OUT).
func NextDirection(last *models.Movement) models.Direction {
	if last != nil && last.Direction == models.DirectionIn {
		return models.DirectionOut
	}
	return models.DirectionIn
}

// PresenceOf derives the presence state from the same log tail.
func PresenceOf(badgeID string, last *models.Movement) models.Presence {
	p := models.Presence{BadgeID: badgeID, State: models.PresenceOutside}
	if last == nil {
		return p
	}

	dir := last.Direction
	at := last.CreatedAt
	p.LastDirection = &dir
	p.LastMovementAt = &at
	if dir == models.DirectionIn {
		p.State = models.PresenceInside
	}
	return p
}
