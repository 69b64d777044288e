package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmastery/flowmastery-go/httpclient"
)

func newTestAPI(t *testing.T, handler http.Handler) *API {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := httpclient.New(
		httpclient.WithBaseURL(server.URL),
		httpclient.WithRetryConfig(httpclient.DisabledRetryConfig()),
	)
	return New(client)
}

func writeData(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func TestAuthService_LoginEstablishesSession(t *testing.T) {
	var sawCookie bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "admin@flowmastery.app", req.Email)

		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok-1", Path: "/"})
		writeData(w, User{ID: "u-1", Email: req.Email, Role: "admin"})
	})
	mux.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("access_token"); err == nil && c.Value == "tok-1" {
			sawCookie = true
		}
		writeData(w, User{ID: "u-1", Email: "admin@flowmastery.app", Role: "admin"})
	})

	api := newTestAPI(t, mux)
	ctx := context.Background()

	user, err := api.Auth.Login(ctx, LoginRequest{Email: "admin@flowmastery.app", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Role)

	me, err := api.Auth.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u-1", me.ID)
	assert.True(t, sawCookie, "session cookie should ride along on later requests")
}

func TestAuthService_LoginErrorSurfacesEnvelope(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"invalid credentials","code":"INVALID_CREDENTIALS"}`)
	})

	api := newTestAPI(t, mux)

	_, err := api.Auth.Login(context.Background(), LoginRequest{Email: "x@y.z", Password: "nope"})

	apiErr, ok := httpclient.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestWorkflowService_MetricsDerivesDisplayValues(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/workflows/wf-1/metrics", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, WorkflowMetrics{
			WorkflowID:           "wf-1",
			TotalExecutions:      120,
			SuccessfulExecutions: 114,
			FailedExecutions:     6,
			AvgExecutionTimeMS:   15000,
		})
	})

	api := newTestAPI(t, mux)
	wf := &Workflow{ID: "wf-1", TimeSavedPerExecutionMinutes: 10}

	m, err := api.Workflows.Metrics(context.Background(), wf)
	require.NoError(t, err)

	assert.InDelta(t, 95.0, m.SuccessRate, 1e-9)
	assert.InDelta(t, 9.75, m.TimeSavedPerRunMins, 1e-9)
	assert.InDelta(t, 19.5, m.TotalTimeSavedHours, 1e-9)
}

func TestWorkflowService_ListAppliesFilters(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/workflows", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "c-1", r.URL.Query().Get("client_id"))
		assert.Equal(t, "true", r.URL.Query().Get("active"))
		writeData(w, []Workflow{{ID: "wf-1", ClientID: "c-1", Active: true}})
	})

	api := newTestAPI(t, mux)
	active := true

	workflows, err := api.Workflows.List(context.Background(), ListWorkflowsOptions{
		ClientID: "c-1",
		Active:   &active,
	})
	require.NoError(t, err)
	require.Len(t, workflows, 1)
	assert.Equal(t, "wf-1", workflows[0].ID)
}

func TestClientService_CRUD(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/clients", func(w http.ResponseWriter, r *http.Request) {
		var req CreateClientRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.WriteHeader(http.StatusCreated)
		writeData(w, Client{ID: "c-1", Name: req.Name})
	})
	mux.HandleFunc("GET /api/v1/clients/c-1", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, Client{ID: "c-1", Name: "Acme"})
	})
	mux.HandleFunc("PUT /api/v1/clients/c-1", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, Client{ID: "c-1", Name: "Acme Corp"})
	})
	mux.HandleFunc("DELETE /api/v1/clients/c-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	api := newTestAPI(t, mux)
	ctx := context.Background()

	created, err := api.Clients.Create(ctx, CreateClientRequest{Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "c-1", created.ID)

	got, err := api.Clients.Get(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	updated, err := api.Clients.Update(ctx, "c-1", UpdateClientRequest{Name: "Acme Corp"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)

	require.NoError(t, api.Clients.Delete(ctx, "c-1"))
}

func TestClientService_MetricsDerivesSuccessRate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/clients/c-1/metrics", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, ClientMetrics{
			ClientID:             "c-1",
			TotalExecutions:      50,
			SuccessfulExecutions: 47,
		})
	})

	api := newTestAPI(t, mux)

	m, err := api.Clients.Metrics(context.Background(), "c-1")
	require.NoError(t, err)
	assert.InDelta(t, 94.0, m.SuccessRate, 1e-9)
}

func TestChatbotService_SendTestMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/chatbots/cb-1/messages", func(w http.ResponseWriter, r *http.Request) {
		var msg ChatMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		writeData(w, ChatReply{SessionID: "sess-1", Reply: "echo: " + msg.Message})
	})

	api := newTestAPI(t, mux)

	reply, err := api.Chatbots.SendTestMessage(context.Background(), "cb-1", ChatMessage{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "sess-1", reply.SessionID)
	assert.Equal(t, "echo: hi", reply.Reply)
}

func TestInvitationService_AcceptSignsIn(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/invitations/accept", func(w http.ResponseWriter, r *http.Request) {
		var req AcceptInvitationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "invite-token", req.Token)
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok-new", Path: "/"})
		writeData(w, User{ID: "u-2", Email: "new@flowmastery.app", Role: "client"})
	})

	api := newTestAPI(t, mux)

	user, err := api.Invitations.Accept(context.Background(), AcceptInvitationRequest{
		Token:     "invite-token",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "s3cret",
	})
	require.NoError(t, err)
	assert.Equal(t, "client", user.Role)
}

func TestGuideService_List(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/guides", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []Guide{{ID: "g-1", Title: "Getting started"}})
	})

	api := newTestAPI(t, mux)

	guides, err := api.Guides.List(context.Background())
	require.NoError(t, err)
	require.Len(t, guides, 1)
	assert.Equal(t, "Getting started", guides[0].Title)
}
