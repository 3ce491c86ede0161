package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/validation"
)

func newValidateCmd(_ *globals) *cobra.Command {
	var (
		in     string
		out    string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the structural checks on a LaTeX document",
		Long: "Validate reports missing section markers, unbalanced braces or environments, leftover " +
			"placeholders and unescaped characters. Findings are advisory unless --strict is set.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			issues, err := validation.ValidateFile(in)
			if err != nil {
				return err
			}
			if issues == nil {
				issues = []types.ValidationIssue{}
			}

			if out != "" {
				content, err := json.MarshalIndent(issues, "", "  ")
				if err != nil {
					return errors.Wrap(err, "marshal issues")
				}
				if err := writeFile(out, content); err != nil {
					return err
				}
			}

			if len(issues) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Validation passed: no issues found")
				return nil
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintValidationIssues(issues)
			if strict {
				return errors.Newf("validation found %d issue(s)", len(issues))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "Path to LaTeX file (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Path to write issues JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any issue is found")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

// writeFile creates parent directories and writes content to path.
func writeFile(path string, content []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create directory %s", dir)
		}
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
