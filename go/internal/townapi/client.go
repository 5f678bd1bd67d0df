package townapi

import (
	"context"

	"connectrpc.com/connect"
)

// Client calls a remote TownService
type Client struct {
	createTown *connect.Client[CreateTownRequest, CreateTownResponse]
	listTowns  *connect.Client[ListTownsRequest, ListTownsResponse]
	updateTown *connect.Client[UpdateTownRequest, UpdateTownResponse]
	deleteTown *connect.Client[DeleteTownRequest, DeleteTownResponse]
	joinTown   *connect.Client[JoinTownRequest, JoinTownResponse]
}

// NewClient creates a client for the service hosted at baseURL
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	opts = append([]connect.ClientOption{WithJSONCodec()}, opts...)
	return &Client{
		createTown: connect.NewClient[CreateTownRequest, CreateTownResponse](httpClient, baseURL+CreateTownProcedure, opts...),
		listTowns:  connect.NewClient[ListTownsRequest, ListTownsResponse](httpClient, baseURL+ListTownsProcedure, opts...),
		updateTown: connect.NewClient[UpdateTownRequest, UpdateTownResponse](httpClient, baseURL+UpdateTownProcedure, opts...),
		deleteTown: connect.NewClient[DeleteTownRequest, DeleteTownResponse](httpClient, baseURL+DeleteTownProcedure, opts...),
		joinTown:   connect.NewClient[JoinTownRequest, JoinTownResponse](httpClient, baseURL+JoinTownProcedure, opts...),
	}
}

func (c *Client) CreateTown(ctx context.Context, req *CreateTownRequest) (*CreateTownResponse, error) {
	resp, err := c.createTown.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *Client) ListTowns(ctx context.Context) (*ListTownsResponse, error) {
	resp, err := c.listTowns.CallUnary(ctx, connect.NewRequest(&ListTownsRequest{}))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *Client) UpdateTown(ctx context.Context, req *UpdateTownRequest) error {
	_, err := c.updateTown.CallUnary(ctx, connect.NewRequest(req))
	return err
}

func (c *Client) DeleteTown(ctx context.Context, req *DeleteTownRequest) error {
	_, err := c.deleteTown.CallUnary(ctx, connect.NewRequest(req))
	return err
}

func (c *Client) JoinTown(ctx context.Context, req *JoinTownRequest) (*JoinTownResponse, error) {
	resp, err := c.joinTown.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}
