package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/fetch"
	"github.com/jonathan/resume-tailor/internal/observability"
)

func newScrapeCmd(g *globals) *cobra.Command {
	var (
		url    string
		probe  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Extract a job posting from a URL",
		Long: "Run the extraction engines against a URL. With --probe every engine runs concurrently " +
			"and each result is shown, which helps when a site's selectors drift.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := fetch.ValidateURL(url); err != nil {
				return err
			}
			controller := newController(g.cfg, g.logger)
			out := cmd.OutOrStdout()

			if probe {
				results, err := controller.Probe(cmd.Context(), url)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, results)
				}
				observability.NewPrinter(out).PrintProbeResults(results)
				return nil
			}

			posting, err := controller.Extract(cmd.Context(), url)
			if err != nil {
				g.logger.Warn("extraction failed, showing placeholder posting", zap.Error(err))
			}
			if asJSON {
				return writeJSON(out, posting)
			}
			observability.NewPrinter(out).PrintJobPosting(posting)
			return nil
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "", "URL to extract (required)")
	cmd.Flags().BoolVar(&probe, "probe", false, "Run every engine and compare results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
