package api

import (
	"context"
)

// InvitationService manages user invitations. Creating and listing are
// admin-only; Accept is unauthenticated and establishes the new account's
// session on success, like a login.
type InvitationService struct {
	api *API
}

// List returns pending invitations.
func (s *InvitationService) List(ctx context.Context) ([]Invitation, error) {
	var invitations []Invitation
	_, err := s.api.request("ListInvitations").
		Decode(&invitations).
		Get(ctx, "/invitations")
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

// Create issues an invitation. The backend emails the recipient a tokenized
// accept link.
func (s *InvitationService) Create(ctx context.Context, req CreateInvitationRequest) (*Invitation, error) {
	var inv Invitation
	_, err := s.api.request("CreateInvitation").
		Body(req).
		Decode(&inv).
		Post(ctx, "/invitations")
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Revoke cancels a pending invitation.
func (s *InvitationService) Revoke(ctx context.Context, id string) error {
	_, err := s.api.request("RevokeInvitation").
		Path("/invitations/{id}").
		PathParam("id", id).
		Delete(ctx)
	return err
}

// Accept redeems an invitation token, creating the account and signing it
// in via the session cookies on the response.
func (s *InvitationService) Accept(ctx context.Context, req AcceptInvitationRequest) (*User, error) {
	var user User
	_, err := s.api.request("AcceptInvitation").
		Body(req).
		Decode(&user).
		Post(ctx, "/invitations/accept")
	if err != nil {
		return nil, err
	}
	return &user, nil
}
