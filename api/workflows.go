package api

import (
	"context"
	"strconv"

	"github.com/flowmastery/flowmastery-go/metrics"
)

// WorkflowService manages the workflows synced from the tenant n8n
// instances, plus their execution metrics.
type WorkflowService struct {
	api *API
}

// ListWorkflowsOptions filters List. Zero-valued fields are omitted.
type ListWorkflowsOptions struct {
	ClientID string
	Active   *bool
}

// List returns workflows visible to the current session: all of them for
// admins, the tenant's own for client users.
func (s *WorkflowService) List(ctx context.Context, opts ListWorkflowsOptions) ([]Workflow, error) {
	rb := s.api.request("ListWorkflows").Path("/workflows")
	if opts.ClientID != "" {
		rb.Query("client_id", opts.ClientID)
	}
	if opts.Active != nil {
		rb.Query("active", strconv.FormatBool(*opts.Active))
	}

	var workflows []Workflow
	_, err := rb.Decode(&workflows).Get(ctx)
	if err != nil {
		return nil, err
	}
	return workflows, nil
}

// Get returns one workflow by ID.
func (s *WorkflowService) Get(ctx context.Context, id string) (*Workflow, error) {
	var wf Workflow
	_, err := s.api.request("GetWorkflow").
		Path("/workflows/{id}").
		PathParam("id", id).
		Decode(&wf).
		Get(ctx)
	if err != nil {
		return nil, err
	}
	return &wf, nil
}

// Update adjusts dashboard-side attributes such as the manual-time baseline.
func (s *WorkflowService) Update(ctx context.Context, id string, req UpdateWorkflowRequest) (*Workflow, error) {
	var wf Workflow
	_, err := s.api.request("UpdateWorkflow").
		Path("/workflows/{id}").
		PathParam("id", id).
		Body(req).
		Decode(&wf).
		Patch(ctx)
	if err != nil {
		return nil, err
	}
	return &wf, nil
}

// Sync asks the backend to re-import a tenant's workflows from n8n and
// returns the refreshed list.
func (s *WorkflowService) Sync(ctx context.Context, clientID string) ([]Workflow, error) {
	var workflows []Workflow
	_, err := s.api.request("SyncWorkflows").
		Path("/clients/{id}/workflows/sync").
		PathParam("id", clientID).
		Decode(&workflows).
		Post(ctx)
	if err != nil {
		return nil, err
	}
	return workflows, nil
}

// Metrics returns a workflow's execution counters with the derived display
// values computed from the workflow's manual-time baseline.
func (s *WorkflowService) Metrics(ctx context.Context, workflow *Workflow) (*WorkflowMetrics, error) {
	var m WorkflowMetrics
	_, err := s.api.request("GetWorkflowMetrics").
		Path("/workflows/{id}/metrics").
		PathParam("id", workflow.ID).
		Decode(&m).
		Get(ctx)
	if err != nil {
		return nil, err
	}

	m.SuccessRate = metrics.SuccessRate(m.SuccessfulExecutions, m.TotalExecutions)
	m.TimeSavedPerRunMins = metrics.TimeSavedPerRun(workflow.TimeSavedPerExecutionMinutes, m.AvgExecutionTimeMS)
	m.TotalTimeSavedHours = metrics.TotalTimeSavedHours(
		workflow.TimeSavedPerExecutionMinutes, m.AvgExecutionTimeMS, m.TotalExecutions)
	return &m, nil
}
