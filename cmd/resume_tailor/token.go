package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/server"
)

func newTokenCmd(g *globals) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			jwtCfg, err := config.NewJWTConfig(g.cfg.Auth)
			if err != nil {
				return err
			}
			token, err := server.NewJWTService(jwtCfg).GenerateToken(subject)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Token subject, e.g. the calling service (required)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
