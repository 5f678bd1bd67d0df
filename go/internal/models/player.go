package models

import (
	"github.com/google/uuid"
)

// Direction is the way a player's avatar is facing
type Direction string

const (
	DirectionFront Direction = "front"
	DirectionBack  Direction = "back"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Location is a player's position on the town map
type Location struct {
	X        float64   `json:"x" msgpack:"x"`
	Y        float64   `json:"y" msgpack:"y"`
	Rotation Direction `json:"rotation" msgpack:"rotation"`
	Moving   bool      `json:"moving" msgpack:"moving"`
}

// Player represents a participant connected to a town
type Player struct {
	ID       string   `json:"id" msgpack:"id"`
	UserName string   `json:"user_name" msgpack:"user_name"`
	Location Location `json:"location" msgpack:"location"`
}

// NewPlayer creates a player with a fresh ID at the default spawn location
func NewPlayer(userName string) *Player {
	return &Player{
		ID:       uuid.NewString(),
		UserName: userName,
		Location: Location{Rotation: DirectionFront},
	}
}

// UpdateLocation replaces the player's current location
func (p *Player) UpdateLocation(location Location) {
	p.Location = location
}
