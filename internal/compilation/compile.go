// Package compilation builds LaTeX documents into PDF artifacts.
package compilation

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// DefaultTimeout bounds a single typesetting pass.
	DefaultTimeout = 30 * time.Second
	// DefaultPasses resolves cross-references on the second pass.
	DefaultPasses = 2

	logExcerptLimit    = 1000
	sourceExcerptLimit = 500

	// NoLogPlaceholder replaces the log excerpt when no log was written.
	NoLogPlaceholder = "No log file available"

	jobName = "resume"
)

// Options configures a Compiler.
type Options struct {
	Binary        string
	Timeout       time.Duration
	Passes        int
	WorkRoot      string
	MaxConcurrent int
	Runner        Runner
}

// Compiler runs the typesetting toolchain. Every call to Compile works in its
// own arena, and at most MaxConcurrent toolchain runs proceed at once.
type Compiler struct {
	opts   Options
	sem    *semaphore.Weighted
	logger *zap.Logger
}

// New creates a Compiler, filling unset options with defaults.
func New(opts Options, logger *zap.Logger) *Compiler {
	if opts.Binary == "" {
		opts.Binary = "pdflatex"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Passes <= 0 {
		opts.Passes = DefaultPasses
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	return &Compiler{
		opts:   opts,
		sem:    semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		logger: logging.OrNop(logger),
	}
}

// Compile builds doc and publishes the resulting PDF at dest. dest is only
// ever replaced by a complete file; on failure it is left untouched.
func (c *Compiler) Compile(ctx context.Context, doc string, dest string) (*types.CompiledArtifact, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, &CompilationError{Message: "waiting for compiler slot", Cause: err}
	}
	defer c.sem.Release(1)

	arena, err := NewArena(c.opts.WorkRoot)
	if err != nil {
		return nil, &CompilationError{Message: "failed to allocate working directory", Cause: err}
	}
	defer arena.Close()

	texPath := arena.Path(jobName + ".tex")
	logPath := arena.Path(jobName + ".log")
	pdfPath := arena.Path(jobName + ".pdf")

	if err := os.WriteFile(texPath, []byte(doc), 0o644); err != nil {
		return nil, &CompilationError{Message: "failed to write document", Cause: err}
	}
	RemoveQuietly(arena.Path(jobName+".aux"), logPath, pdfPath)

	start := time.Now()
	var output string
	for pass := 1; pass <= c.opts.Passes; pass++ {
		output, err = c.runPass(ctx, arena, texPath, pass)
		if err != nil {
			msg := fmt.Sprintf("typesetting pass %d of %d failed", pass, c.opts.Passes)
			return nil, c.failure(msg, err, logPath, doc)
		}
	}

	info, err := os.Stat(pdfPath)
	if err != nil {
		return nil, c.failure("toolchain reported success but produced no artifact", err, logPath, doc)
	}

	if err := publish(pdfPath, dest); err != nil {
		return nil, &CompilationError{Message: "failed to publish artifact", Cause: err}
	}

	c.logger.Info("document compiled",
		zap.String("artifact", dest),
		zap.Int64("bytes", info.Size()),
		zap.Duration(logging.FieldDuration, time.Since(start)))

	return &types.CompiledArtifact{
		Path: dest,
		Size: info.Size(),
		Log:  readLog(logPath, output),
	}, nil
}

func (c *Compiler) runPass(ctx context.Context, arena *Arena, texPath string, pass int) (string, error) {
	passCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	c.logger.Debug("running typesetting pass", zap.Int("pass", pass), zap.String("dir", arena.Dir()))
	out, err := c.opts.Runner.Run(passCtx, arena.Dir(), c.opts.Binary,
		"-interaction=nonstopmode",
		"-output-directory", arena.Dir(),
		texPath,
	)
	if errors.Is(passCtx.Err(), context.DeadlineExceeded) {
		return out, errors.Wrapf(passCtx.Err(), "timed out after %s", c.opts.Timeout)
	}
	return out, err
}

func (c *Compiler) failure(message string, cause error, logPath, doc string) *CompilationError {
	logText, err := os.ReadFile(logPath)
	excerpt := NoLogPlaceholder
	if err == nil && len(logText) > 0 {
		excerpt = tail(string(logText), logExcerptLimit)
	}
	c.logger.Warn("compilation failed", zap.String("reason", message), zap.Error(cause))
	return &CompilationError{
		Message:       message,
		LogExcerpt:    excerpt,
		SourceExcerpt: head(doc, sourceExcerptLimit),
		Cause:         cause,
	}
}

// readLog prefers the log file over captured process output.
func readLog(logPath, output string) string {
	if b, err := os.ReadFile(logPath); err == nil {
		return string(b)
	}
	return output
}

// head returns at most n bytes from the start of s, cut on a rune boundary.
func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "")
}

// tail returns at most n bytes from the end of s. LaTeX reports the fatal
// error at the end of the log.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("...%s", strings.ToValidUTF8(s[len(s)-n:], ""))
}
