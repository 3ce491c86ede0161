package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/logging"
)

// globals are resolved once per invocation by the root PersistentPreRunE.
type globals struct {
	configPath string
	logLevel   string
	logJSON    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   "resume_tailor",
		Short: "Tailor a LaTeX resume to a job posting",
		Long: "resume_tailor extracts a job posting, asks a language model to reorder and rephrase " +
			"a baseline resume for it, renders the result into a LaTeX template and compiles a PDF.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if g.logger != nil {
				_ = g.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to config file (yaml, toml or json)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&g.logJSON, "log-json", false, "Emit JSON logs")

	cmd.AddCommand(
		newServeCmd(g),
		newTailorCmd(g),
		newScrapeCmd(g),
		newRenderCmd(g),
		newValidateCmd(g),
		newCompileCmd(g),
		newTokenCmd(g),
	)
	return cmd
}

func (g *globals) init(cmd *cobra.Command) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON = g.logJSON
	}

	logger, err := logging.New(logging.Options{JSON: cfg.Log.JSON, Level: cfg.Log.Level})
	if err != nil {
		return err
	}
	g.cfg = cfg
	g.logger = logger.With(zap.String("command", cmd.Name()))
	return nil
}
