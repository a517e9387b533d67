package ctl

import (
	"github.com/spf13/cobra"

	"acestepd/internal/config"
	"acestepd/internal/httpapi"
)

// rootFlags holds the persistent flag values shared by all subcommands.
type rootFlags struct {
	envFile  string
	cfgPath  string
	logLevel string
	logsDir  string
}

// BuildRootCmd constructs the acestepd command tree.
func BuildRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "acestepd",
		Short:         "Supervisor and launcher for the ACE-Step music generation stack",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Path to the .env file (shell environment wins over it)")
	root.PersistentFlags().StringVar(&flags.cfgPath, "config", "", "Optional config file (toml/yaml/json), defaults ACESTEP_CONFIG_PATH")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults ACESTEP_API_LOG_LEVEL)")
	root.PersistentFlags().StringVar(&flags.logsDir, "logs-dir", "", "Directory for process logs (defaults ACESTEP_LOGS_DIR or logs)")

	newApp := func() (*App, error) {
		cfg, err := config.Resolve(flags.envFile, flags.cfgPath)
		if err != nil {
			return nil, err
		}
		if flags.logsDir != "" {
			cfg.LogsDir = flags.logsDir
		}
		level := flags.logLevel
		if level == "" {
			level = cfg.APILogLevel
		}
		logger := SetupLogging(level)
		httpapi.SetLogger(logger)
		return NewApp(cfg), nil
	}

	web := &cobra.Command{
		Use:   "web",
		Short: "Launch the Gradio web UI and supervise it",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), "web")
		},
	}
	api := &cobra.Command{
		Use:   "api",
		Short: "Launch the REST API server and supervise it",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), "api")
		},
	}
	both := &cobra.Command{
		Use:   "both",
		Short: "Launch web UI and REST API together",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), "both")
		},
	}
	status := &cobra.Command{
		Use:   "status",
		Short: "Print the memory status self-test and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			return runStatus(cmd.OutOrStdout(), app)
		},
	}
	menu := &cobra.Command{
		Use:   "menu",
		Short: "Interactive launch menu",
		Long: `Present the numbered launch menu:
  1) launch the web UI
  2) launch the REST API
  3) launch both
  4) print the memory status self-test`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			return runMenu(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), app)
		},
	}

	root.AddCommand(web, api, both, status, menu)
	return root
}
