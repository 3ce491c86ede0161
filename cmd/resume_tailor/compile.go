package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/validation"
)

func newCompileCmd(g *globals) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a LaTeX document to PDF",
		Long:  "Compile runs the typesetting toolchain twice in a scratch directory and publishes the PDF atomically.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := os.ReadFile(in)
			if err != nil {
				return errors.Wrapf(err, "read %s", in)
			}

			issues := validation.Validate(string(doc))
			artifact, err := newCompiler(g.cfg, g.logger).Compile(cmd.Context(), string(doc), out)
			if err != nil {
				reportFailure(cmd.ErrOrStderr(), err)
				return err
			}
			artifact.Issues = issues

			p := observability.NewPrinter(cmd.OutOrStdout())
			p.PrintValidationIssues(issues)
			p.PrintArtifact("", artifact, in)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "Path to LaTeX file (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "resume.pdf", "Path to output PDF")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
