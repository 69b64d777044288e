package api

import (
	"context"
)

// AuthService handles login, logout and session introspection. The access
// and refresh tokens live in HTTP-only cookies managed by the client's jar;
// none of these methods return token material.
type AuthService struct {
	api *API
}

// LoginRequest carries the credential pair for password login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and establishes the cookie session. The returned User
// reflects the account that was signed in.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*User, error) {
	var user User
	_, err := s.api.request("Login").
		Body(req).
		Decode(&user).
		Post(ctx, "/auth/login")
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout invalidates the session server-side. The local cookie jar is not
// cleared; the backend expires the cookies in its response.
func (s *AuthService) Logout(ctx context.Context) error {
	_, err := s.api.request("Logout").Post(ctx, "/auth/logout")
	return err
}

// Me returns the currently authenticated account.
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	var user User
	_, err := s.api.request("Me").
		Decode(&user).
		Get(ctx, "/auth/me")
	if err != nil {
		return nil, err
	}
	return &user, nil
}
