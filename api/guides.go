package api

import (
	"context"
)

// GuideService manages the documentation guides shown on the dashboard.
// Reads are open to every authenticated role; writes are admin-only.
type GuideService struct {
	api *API
}

// List returns all guides.
func (s *GuideService) List(ctx context.Context) ([]Guide, error) {
	var guides []Guide
	_, err := s.api.request("ListGuides").
		Decode(&guides).
		Get(ctx, "/guides")
	if err != nil {
		return nil, err
	}
	return guides, nil
}

// Create adds a guide.
func (s *GuideService) Create(ctx context.Context, req UpsertGuideRequest) (*Guide, error) {
	var guide Guide
	_, err := s.api.request("CreateGuide").
		Body(req).
		Decode(&guide).
		Post(ctx, "/guides")
	if err != nil {
		return nil, err
	}
	return &guide, nil
}

// Update replaces a guide's content.
func (s *GuideService) Update(ctx context.Context, id string, req UpsertGuideRequest) (*Guide, error) {
	var guide Guide
	_, err := s.api.request("UpdateGuide").
		Path("/guides/{id}").
		PathParam("id", id).
		Body(req).
		Decode(&guide).
		Put(ctx)
	if err != nil {
		return nil, err
	}
	return &guide, nil
}

// Delete removes a guide.
func (s *GuideService) Delete(ctx context.Context, id string) error {
	_, err := s.api.request("DeleteGuide").
		Path("/guides/{id}").
		PathParam("id", id).
		Delete(ctx)
	return err
}
