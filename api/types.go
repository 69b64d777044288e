package api

import "time"

// User is the authenticated account returned by /auth/me.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"` // "admin" or "client"
	ClientID  string    `json:"client_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Client is a tenant whose workflows run in the n8n instance.
type Client struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	N8nURL       string    `json:"n8n_url,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateClientRequest creates a tenant.
type CreateClientRequest struct {
	Name         string `json:"name"`
	N8nURL       string `json:"n8n_url,omitempty"`
	N8nAPIKey    string `json:"n8n_api_key,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
}

// UpdateClientRequest updates a tenant. Zero-valued fields are left
// untouched by the backend.
type UpdateClientRequest struct {
	Name         string `json:"name,omitempty"`
	N8nURL       string `json:"n8n_url,omitempty"`
	N8nAPIKey    string `json:"n8n_api_key,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
}

// Workflow mirrors an n8n workflow tracked by the dashboard.
type Workflow struct {
	ID       string `json:"id"`
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Active   bool   `json:"active"`

	// TimeSavedPerExecutionMinutes is the manual-time baseline an admin
	// assigns to the workflow, in minutes.
	TimeSavedPerExecutionMinutes float64 `json:"time_saved_per_execution_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateWorkflowRequest adjusts dashboard-side workflow attributes.
type UpdateWorkflowRequest struct {
	Name                         string   `json:"name,omitempty"`
	Active                       *bool    `json:"active,omitempty"`
	TimeSavedPerExecutionMinutes *float64 `json:"time_saved_per_execution_minutes,omitempty"`
}

// WorkflowMetrics carries the raw execution counters the backend aggregates
// from n8n, plus the derived display values filled in client-side.
type WorkflowMetrics struct {
	WorkflowID           string  `json:"workflow_id"`
	TotalExecutions      int64   `json:"total_executions"`
	SuccessfulExecutions int64   `json:"successful_executions"`
	FailedExecutions     int64   `json:"failed_executions"`
	AvgExecutionTimeMS   float64 `json:"avg_execution_time_ms"`

	// Derived values, computed from the counters above; not part of the
	// wire payload.
	SuccessRate         float64 `json:"-"`
	TimeSavedPerRunMins float64 `json:"-"`
	TotalTimeSavedHours float64 `json:"-"`
}

// ClientMetrics aggregates execution counters across all of a tenant's
// workflows.
type ClientMetrics struct {
	ClientID             string  `json:"client_id"`
	TotalWorkflows       int64   `json:"total_workflows"`
	ActiveWorkflows      int64   `json:"active_workflows"`
	TotalExecutions      int64   `json:"total_executions"`
	SuccessfulExecutions int64   `json:"successful_executions"`
	FailedExecutions     int64   `json:"failed_executions"`
	TotalTimeSavedHours  float64 `json:"total_time_saved_hours"`

	SuccessRate float64 `json:"-"`
}

// Chatbot is a tenant-scoped conversational agent backed by an n8n webhook.
type Chatbot struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"client_id"`
	Name       string    `json:"name"`
	WebhookURL string    `json:"webhook_url"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateChatbotRequest registers a chatbot.
type CreateChatbotRequest struct {
	ClientID   string `json:"client_id"`
	Name       string `json:"name"`
	WebhookURL string `json:"webhook_url"`
}

// ChatMessage is one turn of a chatbot test conversation.
type ChatMessage struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatReply is the chatbot's answer to a test message.
type ChatReply struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// Guide is a documentation entry ("dependency") shown to client users.
type Guide struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpsertGuideRequest creates or updates a guide.
type UpsertGuideRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
}

// Invitation invites a user into a tenant (or as an admin).
type Invitation struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ClientID  string    `json:"client_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateInvitationRequest issues an invitation.
type CreateInvitationRequest struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	ClientID string `json:"client_id,omitempty"`
}

// AcceptInvitationRequest redeems an invitation token and sets the new
// account's credentials.
type AcceptInvitationRequest struct {
	Token     string `json:"token"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}
