// Example of using the SDK the way the dashboard does: authenticate once,
// then read workflows and their derived savings metrics. The transport chain
// handles access-token refresh transparently, so long-running processes never
// need to re-login until the refresh token itself expires.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/flowmastery/flowmastery-go/api"
	"github.com/flowmastery/flowmastery-go/config"
	"github.com/flowmastery/flowmastery-go/httpclient"
	"github.com/flowmastery/flowmastery-go/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	client := httpclient.New(
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithServiceName("example"),
		httpclient.WithSessionExpiredHook(func() {
			fmt.Fprintln(os.Stderr, "session expired, please log in again")
		}),
	)
	fm := api.New(client)
	ctx := context.Background()

	user, err := fm.Auth.Login(ctx, api.LoginRequest{
		Email:    os.Getenv("FLOWMASTERY_EMAIL"),
		Password: os.Getenv("FLOWMASTERY_PASSWORD"),
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("signed in as %s (%s)\n", user.Email, user.Role)

	workflows, err := fm.Workflows.List(ctx, api.ListWorkflowsOptions{})
	if err != nil {
		log.Fatal(err)
	}

	for i := range workflows {
		wf := &workflows[i]
		m, err := fm.Workflows.Metrics(ctx, wf)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%-30s %s%% success, %s h saved\n",
			wf.Name,
			metrics.FormatDecimal(m.SuccessRate),
			metrics.FormatDecimal(m.TotalTimeSavedHours),
		)
	}
}
