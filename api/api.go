// Package api provides typed access to the FlowMastery dashboard backend.
// It layers resource-oriented services over the httpclient transport chain,
// so every call inherits session refresh, retry, and redirect handling.
package api

import (
	"github.com/flowmastery/flowmastery-go/httpclient"
)

// API groups the resource services sharing one authenticated client.
type API struct {
	client *httpclient.Client

	Auth        *AuthService
	Clients     *ClientService
	Workflows   *WorkflowService
	Chatbots    *ChatbotService
	Guides      *GuideService
	Invitations *InvitationService
}

// New wires the resource services around an existing client.
func New(client *httpclient.Client) *API {
	a := &API{client: client}
	a.Auth = &AuthService{api: a}
	a.Clients = &ClientService{api: a}
	a.Workflows = &WorkflowService{api: a}
	a.Chatbots = &ChatbotService{api: a}
	a.Guides = &GuideService{api: a}
	a.Invitations = &InvitationService{api: a}
	return a
}

// HTTPClient exposes the underlying transport client, mainly so callers can
// register the session-expired hook or inspect configuration.
func (a *API) HTTPClient() *httpclient.Client {
	return a.client
}

func (a *API) request(operation string) *httpclient.RequestBuilder {
	observeOperation(operation)
	return a.client.Request(operation)
}
