package api

import (
	"context"

	"github.com/flowmastery/flowmastery-go/metrics"
)

// ClientService manages tenants. All operations require the admin role;
// client-role sessions receive a 403 error envelope from the backend.
type ClientService struct {
	api *API
}

// List returns all tenants.
func (s *ClientService) List(ctx context.Context) ([]Client, error) {
	var clients []Client
	_, err := s.api.request("ListClients").
		Decode(&clients).
		Get(ctx, "/clients")
	if err != nil {
		return nil, err
	}
	return clients, nil
}

// Get returns one tenant by ID.
func (s *ClientService) Get(ctx context.Context, id string) (*Client, error) {
	var client Client
	_, err := s.api.request("GetClient").
		Path("/clients/{id}").
		PathParam("id", id).
		Decode(&client).
		Get(ctx)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// Create registers a tenant.
func (s *ClientService) Create(ctx context.Context, req CreateClientRequest) (*Client, error) {
	var client Client
	_, err := s.api.request("CreateClient").
		Body(req).
		Decode(&client).
		Post(ctx, "/clients")
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// Update modifies a tenant.
func (s *ClientService) Update(ctx context.Context, id string, req UpdateClientRequest) (*Client, error) {
	var client Client
	_, err := s.api.request("UpdateClient").
		Path("/clients/{id}").
		PathParam("id", id).
		Body(req).
		Decode(&client).
		Put(ctx)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// Delete removes a tenant and everything scoped to it.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	_, err := s.api.request("DeleteClient").
		Path("/clients/{id}").
		PathParam("id", id).
		Delete(ctx)
	return err
}

// Metrics returns the tenant-wide execution aggregates with the derived
// success rate filled in.
func (s *ClientService) Metrics(ctx context.Context, id string) (*ClientMetrics, error) {
	var m ClientMetrics
	_, err := s.api.request("GetClientMetrics").
		Path("/clients/{id}/metrics").
		PathParam("id", id).
		Decode(&m).
		Get(ctx)
	if err != nil {
		return nil, err
	}
	m.SuccessRate = metrics.SuccessRate(m.SuccessfulExecutions, m.TotalExecutions)
	return &m, nil
}
