package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/optimization"
	"github.com/jonathan/resume-tailor/internal/validation"
)

func newRenderCmd(g *globals) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render optimized resume JSON into a LaTeX document",
		Long: "Render reads an optimized resume payload (the JSON the model returns), checks it against " +
			"the payload schema and the baseline profile, and writes the assembled LaTeX document.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := os.ReadFile(in)
			if err != nil {
				return errors.Wrapf(err, "read %s", in)
			}
			data, err := optimization.ParseResponse(string(raw))
			if err != nil {
				return err
			}

			profile, renderer, err := loadRenderer(g.cfg)
			if err != nil {
				return err
			}
			if err := optimization.CheckComplete(data, profile); err != nil {
				return err
			}

			doc, err := renderer.Render(data)
			if err != nil {
				return err
			}
			if err := writeFile(out, []byte(doc.Full)); err != nil {
				return err
			}

			p := observability.NewPrinter(cmd.OutOrStdout())
			p.PrintOptimization(data)
			p.PrintValidationIssues(validation.Validate(doc.Full))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "LaTeX written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "Path to optimized resume JSON (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Path to output .tex file (required)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
