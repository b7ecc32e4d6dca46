package domain

import "github.com/google/uuid"

// PlayerID is the stable identity of a player across sessions.
type PlayerID = uuid.UUID

// Player is the acting identity behind a command.
type Player struct {
	ID    PlayerID `json:"id"`
	Name  string   `json:"name"`
	Admin bool     `json:"admin,omitempty"`
}
