package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/compilation"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/pipeline"
)

type jobInputFlags struct {
	text string
	file string
	url  string
}

func (f *jobInputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.text, "job-text", "", "Job description text")
	cmd.Flags().StringVar(&f.file, "job-file", "", "Path to a file with the job description, - for stdin")
	cmd.Flags().StringVar(&f.url, "job-url", "", "URL of the job posting")
	cmd.MarkFlagsMutuallyExclusive("job-text", "job-file", "job-url")
	cmd.MarkFlagsOneRequired("job-text", "job-file", "job-url")
}

// request turns the flags into a pipeline request. stdin is read for
// --job-file -.
func (f *jobInputFlags) request(stdin io.Reader) (pipeline.Request, error) {
	switch {
	case f.url != "":
		return pipeline.Request{Input: f.url, InputType: pipeline.InputURL}, nil
	case f.text != "":
		return pipeline.Request{Input: f.text, InputType: pipeline.InputText}, nil
	case f.file == "-":
		content, err := io.ReadAll(stdin)
		if err != nil {
			return pipeline.Request{}, errors.Wrap(err, "read job description from stdin")
		}
		return pipeline.Request{Input: string(content), InputType: pipeline.InputText}, nil
	case f.file != "":
		content, err := os.ReadFile(f.file)
		if err != nil {
			return pipeline.Request{}, errors.Wrapf(err, "read job description file %s", f.file)
		}
		return pipeline.Request{Input: string(content), InputType: pipeline.InputText}, nil
	default:
		return pipeline.Request{}, errors.New("one of --job-text, --job-file or --job-url is required")
	}
}

func newTailorCmd(g *globals) *cobra.Command {
	var (
		input   jobInputFlags
		outDir  string
		asJSON  bool
		history bool
	)

	cmd := &cobra.Command{
		Use:   "tailor",
		Short: "Run the full pipeline for one job posting",
		Long: "Extract the job posting, optimize the baseline resume for it, render and validate the " +
			"LaTeX document and compile it to PDF.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := input.request(cmd.InOrStdin())
			if err != nil {
				return err
			}

			a, err := buildApp(cmd.Context(), g.cfg, g.logger, appOptions{artifactsDir: outDir, withHistory: history})
			if err != nil {
				return err
			}
			defer a.Close()

			a.pipeline.OnProgress = func(e pipeline.ProgressEvent) {
				g.logger.Info(e.Message, zap.String(logging.FieldStage, e.Stage))
			}

			res, err := a.pipeline.Tailor(cmd.Context(), req)
			if err != nil {
				reportFailure(cmd.ErrOrStderr(), err)
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, res)
			}
			p := observability.NewPrinter(out)
			p.PrintJobPosting(res.JobPosting)
			p.PrintOptimization(res.Optimized)
			p.PrintValidationIssues(res.Issues)
			p.PrintArtifact(res.RunID.String(), res.Artifact, res.SourcePath)
			return nil
		},
	}

	input.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Artifact directory (overrides artifacts.dir)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&history, "history", false, "Record the run in database.url")
	return cmd
}

// reportFailure prints the diagnostic excerpts of a compilation failure.
func reportFailure(w io.Writer, err error) {
	var compileErr *compilation.CompilationError
	if !errors.As(err, &compileErr) {
		return
	}
	if compileErr.LogExcerpt != "" {
		_, _ = fmt.Fprintf(w, "--- build log (tail) ---\n%s\n", compileErr.LogExcerpt)
	}
	if compileErr.SourceExcerpt != "" {
		_, _ = fmt.Fprintf(w, "--- source (head) ---\n%s\n", compileErr.SourceExcerpt)
	}
}
