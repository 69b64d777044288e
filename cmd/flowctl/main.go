// Command flowctl is a small operator CLI for the FlowMastery dashboard
// backend. It drives the same SDK the dashboard uses, which makes it handy
// for poking at a deployment or verifying session refresh end to end.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/flowmastery/flowmastery-go/api"
	"github.com/flowmastery/flowmastery-go/config"
	"github.com/flowmastery/flowmastery-go/httpclient"
	"github.com/flowmastery/flowmastery-go/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	api *api.API
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	var (
		a       app
		baseURL string
		debug   bool
	)

	root := &cobra.Command{
		Use:           "flowctl",
		Short:         "Operator CLI for the FlowMastery dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if baseURL != "" {
				cfg.BaseURL = baseURL
			}
			if debug {
				cfg.Debug = true
			}

			a.log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				With().Timestamp().Logger()
			if !cfg.Debug {
				a.log = a.log.Level(zerolog.InfoLevel)
			}

			httpCfg := httpclient.DefaultConfig()
			httpCfg.Timeout = cfg.Timeout

			client := httpclient.New(
				httpclient.WithBaseURL(cfg.BaseURL),
				httpclient.WithAPIPrefix(cfg.APIPrefix),
				httpclient.WithBypassToken(cfg.BypassToken),
				httpclient.WithServiceName("flowctl"),
				httpclient.WithConfig(httpCfg),
				httpclient.WithDebug(cfg.Debug),
				httpclient.WithLogger(a.log),
				httpclient.WithSessionExpiredHook(func() {
					a.log.Warn().Msg("session expired, log in again with `flowctl login`")
				}),
			)
			a.api = api.New(client)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&baseURL, "base-url", "", "backend origin (overrides FLOWMASTERY_BASE_URL)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "log requests and responses")

	root.AddCommand(
		newLoginCmd(&a),
		newMeCmd(&a),
		newClientsCmd(&a),
		newWorkflowsCmd(&a),
	)
	return root
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session cookies for this process",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.api.Auth.Login(cmd.Context(), api.LoginRequest{
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			a.log.Info().Str("email", user.Email).Str("role", user.Role).Msg("logged in")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newMeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the authenticated account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.api.Auth.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", user.ID, user.Email, user.Role)
			return nil
		},
	}
}

func newClientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage tenants",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			clients, err := a.api.Clients.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range clients {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.ID, c.Name)
			}
			return nil
		},
	})
	return cmd
}

func newWorkflowsCmd(a *app) *cobra.Command {
	var clientID string

	cmd := &cobra.Command{
		Use:   "workflows",
		Short: "Inspect workflows and their metrics",
	}
	cmd.PersistentFlags().StringVar(&clientID, "client", "", "filter by tenant ID")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			workflows, err := a.api.Workflows.List(cmd.Context(), api.ListWorkflowsOptions{
				ClientID: clientID,
			})
			if err != nil {
				return err
			}
			for _, wf := range workflows {
				state := "inactive"
				if wf.Active {
					state = "active"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", wf.ID, wf.Name, state)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "metrics <workflow-id>",
		Short: "Show a workflow's execution metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := a.api.Workflows.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			m, err := a.api.Workflows.Metrics(cmd.Context(), wf)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "executions:       %d (%d ok, %d failed)\n",
				m.TotalExecutions, m.SuccessfulExecutions, m.FailedExecutions)
			fmt.Fprintf(out, "success rate:     %s%%\n", metrics.FormatDecimal(m.SuccessRate))
			fmt.Fprintf(out, "saved per run:    %s min\n", metrics.FormatDecimal(m.TimeSavedPerRunMins))
			fmt.Fprintf(out, "total time saved: %s h\n", metrics.FormatDecimal(m.TotalTimeSavedHours))
			return nil
		},
	})
	return cmd
}
