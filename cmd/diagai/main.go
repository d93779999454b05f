package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"diagai/internal/app"
	"diagai/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	flagBaseURL string
	flagTimeout int
	flagMock    bool
)

func main() {
	root := &cobra.Command{
		Use:     "diagai",
		Short:   "Terminal client for the DiagnosticAI symptom analysis service",
		Long:    "diagai is an interactive terminal client for the DiagnosticAI symptom analysis service.\n\nIt walks through a symptom conversation: describe what you feel, answer the follow-up questions the analysis asks for, review the structured summary, and optionally run web research on it.\n\ndiagai is not a diagnostic tool and does not replace medical advice.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logPath := cfg.LogFile
			if logPath == "" {
				logPath = app.DefaultLogPath()
			}
			log, closeLog, err := app.NewLogger(logPath)
			if err != nil {
				return err
			}
			defer closeLog()

			var backend app.Backend
			if flagMock {
				backend = &app.MockBackend{}
			} else {
				backend = app.NewClient(cfg.BaseURL, cfg.Timeout(), log)
			}

			session := app.NewSession()
			log.Info().
				Str("thread_id", session.ThreadID).
				Str("base_url", cfg.BaseURL).
				Bool("mock", flagMock).
				Msg("session started")

			model := tui.New(session, backend, cfg.Timeout(), tui.NewTheme(cfg.Theme))
			p := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return err
			}
			log.Info().Str("thread_id", session.ThreadID).Msg("session ended")
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "analysis server base URL (overrides config and DIAGAI_BASE_URL)")
	root.PersistentFlags().IntVar(&flagTimeout, "timeout", 0, "request timeout in seconds")
	root.Flags().BoolVar(&flagMock, "mock", false, "run against a built-in mock backend (no server needed)")

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check whether the analysis server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			resp, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", resp.Service, resp.Status)
			return nil
		},
	}

	debugCmd := &cobra.Command{
		Use:    "research-debug [symptom]",
		Short:  "Run single-symptom research against the debug endpoint",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			resp, err := client.ResearchDebug(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	root.AddCommand(healthCmd, debugCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (app.Config, error) {
	cfg, err := app.LoadConfig(app.DefaultConfigPath())
	if err != nil {
		return cfg, err
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if cmd.Flags().Changed("timeout") && flagTimeout > 0 {
		cfg.TimeoutSeconds = flagTimeout
	}
	return cfg, nil
}

func newClient(cmd *cobra.Command) (*app.Client, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return app.NewClient(cfg.BaseURL, cfg.Timeout(), app.NewConsoleLogger(os.Stderr)), nil
}
