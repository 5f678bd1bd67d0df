package townapi

import (
	"github.com/mcdev12/coveytv/go/internal/models"
	"github.com/mcdev12/coveytv/go/internal/town"
)

const (
	// ServiceName is the fully-qualified name of the town service
	ServiceName = "covey.town.v1.TownService"

	CreateTownProcedure = "/" + ServiceName + "/CreateTown"
	ListTownsProcedure  = "/" + ServiceName + "/ListTowns"
	UpdateTownProcedure = "/" + ServiceName + "/UpdateTown"
	DeleteTownProcedure = "/" + ServiceName + "/DeleteTown"
	JoinTownProcedure   = "/" + ServiceName + "/JoinTown"
)

type CreateTownRequest struct {
	FriendlyName     string `json:"friendly_name"`
	IsPubliclyListed bool   `json:"is_publicly_listed"`
}

type CreateTownResponse struct {
	TownID             string `json:"town_id"`
	TownUpdatePassword string `json:"town_update_password"`
}

type ListTownsRequest struct{}

type ListTownsResponse struct {
	Towns []town.Listing `json:"towns"`
}

// UpdateTownRequest leaves nil fields unchanged
type UpdateTownRequest struct {
	TownID             string  `json:"town_id"`
	TownUpdatePassword string  `json:"town_update_password"`
	FriendlyName       *string `json:"friendly_name,omitempty"`
	IsPubliclyListed   *bool   `json:"is_publicly_listed,omitempty"`
}

type UpdateTownResponse struct{}

type DeleteTownRequest struct {
	TownID             string `json:"town_id"`
	TownUpdatePassword string `json:"town_update_password"`
}

type DeleteTownResponse struct{}

type JoinTownRequest struct {
	TownID   string `json:"town_id"`
	UserName string `json:"user_name"`
}

type JoinTownResponse struct {
	PlayerID         string          `json:"player_id"`
	SessionToken     string          `json:"session_token"`
	VideoToken       string          `json:"video_token"`
	FriendlyName     string          `json:"friendly_name"`
	IsPubliclyListed bool            `json:"is_publicly_listed"`
	CurrentPlayers   []models.Player `json:"current_players"`
}
