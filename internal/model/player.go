package model

import "strings"

// UserID is the opaque, stable identifier for a player. It is the only key
// used to find a player's leaderboard entry.
type UserID string

// PlayerIdentity is the locally persisted identity a player carries between
// visits
type PlayerIdentity struct {
	UserID      UserID `json:"userId"`
	DisplayName string `json:"displayName"`
}

// HasName returns true if the identity carries a usable display name
func (p *PlayerIdentity) HasName() bool {
	return p != nil && strings.TrimSpace(p.DisplayName) != ""
}

// PlaceholderName is the display name used when a player submits without one
func PlaceholderName(userID UserID) string {
	runes := []rune(string(userID))
	if len(runes) > 8 {
		runes = runes[:8]
	}
	return "Player " + string(runes)
}
