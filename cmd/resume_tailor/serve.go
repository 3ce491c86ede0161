package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/server"
	"github.com/jonathan/resume-tailor/internal/server/ratelimit"
)

func newServeCmd(g *globals) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  "Start an HTTP server that exposes the tailoring pipeline, artifact downloads and run history.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				g.cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, g.cfg, g.logger, appOptions{withHistory: true})
			if err != nil {
				return err
			}
			defer a.Close()

			opts, err := serverOptions(g.cfg, g.logger)
			if err != nil {
				return err
			}
			opts.Service = a.pipeline
			opts.Artifacts = a.artifacts
			opts.Runs = a.runs

			srv, err := server.New(opts)
			if err != nil {
				return err
			}
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides server.port)")
	return cmd
}

// serverOptions maps configuration onto server options, leaving the
// pipeline collaborators unset.
func serverOptions(cfg *config.Config, logger *zap.Logger) (server.Options, error) {
	logger = logging.OrNop(logger)
	opts := server.Options{
		Logger:          logger,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		TailorTimeout:   max(cfg.TailorBudget(), cfg.Server.WriteTimeout),
	}

	if cfg.AuthEnabled() {
		jwtCfg, err := config.NewJWTConfig(cfg.Auth)
		if err != nil {
			return opts, err
		}
		opts.JWT = server.NewJWTService(jwtCfg)
	} else {
		logger.Warn("auth.jwt_secret is empty, POST routes are unauthenticated")
	}

	if cfg.RateLimit.Enabled {
		opts.Limiter = ratelimit.NewLimiter(ratelimit.FromSettings(cfg.RateLimit))
	}
	return opts, nil
}
