package townapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/mcdev12/coveytv/go/internal/models"
	"github.com/mcdev12/coveytv/go/internal/town"
	"github.com/rs/zerolog/log"
)

// TownsApp defines what the service layer needs from the town store
type TownsApp interface {
	CreateTown(friendlyName string, isPublic bool) (*town.Controller, error)
	GetController(townID string) (*town.Controller, error)
	ListTowns() []town.Listing
	UpdateTown(townID, password string, friendlyName *string, isPublic *bool) error
	DeleteTown(townID, password string) error
}

// Verify that the store satisfies TownsApp
var _ TownsApp = (*town.Store)(nil)

// Service implements the TownService RPC surface
type Service struct {
	app TownsApp
}

// NewService creates a new town service
func NewService(app TownsApp) *Service {
	return &Service{app: app}
}

// NewHandler builds the HTTP handler for every TownService procedure and
// returns the path it should be mounted on
func NewHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSONCodec()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(CreateTownProcedure, connect.NewUnaryHandler(CreateTownProcedure, svc.CreateTown, opts...))
	mux.Handle(ListTownsProcedure, connect.NewUnaryHandler(ListTownsProcedure, svc.ListTowns, opts...))
	mux.Handle(UpdateTownProcedure, connect.NewUnaryHandler(UpdateTownProcedure, svc.UpdateTown, opts...))
	mux.Handle(DeleteTownProcedure, connect.NewUnaryHandler(DeleteTownProcedure, svc.DeleteTown, opts...))
	mux.Handle(JoinTownProcedure, connect.NewUnaryHandler(JoinTownProcedure, svc.JoinTown, opts...))

	return "/" + ServiceName + "/", mux
}

// CreateTown creates a new town
func (s *Service) CreateTown(ctx context.Context, req *connect.Request[CreateTownRequest]) (*connect.Response[CreateTownResponse], error) {
	controller, err := s.app.CreateTown(req.Msg.FriendlyName, req.Msg.IsPubliclyListed)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&CreateTownResponse{
		TownID:             controller.TownID(),
		TownUpdatePassword: controller.UpdatePassword(),
	}), nil
}

// ListTowns returns the publicly listed towns
func (s *Service) ListTowns(ctx context.Context, req *connect.Request[ListTownsRequest]) (*connect.Response[ListTownsResponse], error) {
	return connect.NewResponse(&ListTownsResponse{
		Towns: s.app.ListTowns(),
	}), nil
}

// UpdateTown renames a town and/or changes its visibility
func (s *Service) UpdateTown(ctx context.Context, req *connect.Request[UpdateTownRequest]) (*connect.Response[UpdateTownResponse], error) {
	if err := s.app.UpdateTown(req.Msg.TownID, req.Msg.TownUpdatePassword, req.Msg.FriendlyName, req.Msg.IsPubliclyListed); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&UpdateTownResponse{}), nil
}

// DeleteTown removes a town and disconnects its players
func (s *Service) DeleteTown(ctx context.Context, req *connect.Request[DeleteTownRequest]) (*connect.Response[DeleteTownResponse], error) {
	if err := s.app.DeleteTown(req.Msg.TownID, req.Msg.TownUpdatePassword); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DeleteTownResponse{}), nil
}

// JoinTown admits a new player and returns its session credentials
func (s *Service) JoinTown(ctx context.Context, req *connect.Request[JoinTownRequest]) (*connect.Response[JoinTownResponse], error) {
	if strings.TrimSpace(req.Msg.UserName) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("user name is required"))
	}

	controller, err := s.app.GetController(req.Msg.TownID)
	if err != nil {
		return nil, toConnectError(err)
	}

	session, err := controller.AddPlayer(ctx, models.NewPlayer(req.Msg.UserName))
	if err != nil {
		log.Error().Err(err).Str("town_id", req.Msg.TownID).Msg("failed to join town")
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&JoinTownResponse{
		PlayerID:         session.Player.ID,
		SessionToken:     session.SessionToken,
		VideoToken:       session.VideoToken,
		FriendlyName:     controller.FriendlyName(),
		IsPubliclyListed: controller.IsPublic(),
		CurrentPlayers:   controller.Players(),
	}), nil
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, town.ErrInvalidTownName):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, town.ErrTownNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, town.ErrInvalidPassword):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, town.ErrTownFull):
		return connect.NewError(connect.CodeResourceExhausted, err)
	default:
		return connect.NewError(connect.CodeInternal, fmt.Errorf("town service: %w", err))
	}
}
