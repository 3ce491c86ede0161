package compilation

import (
	"context"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
)

// Runner executes one typesetting pass.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (string, error)
}

// ExecRunner runs the toolchain as a child process.
type ExecRunner struct{}

// Run executes name in dir and returns combined stdout and stderr.
func (ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) (string, error) {
	if _, err := exec.LookPath(name); err != nil {
		return "", errors.WithHint(
			errors.Wrapf(err, "%s not found in PATH", name),
			"install a LaTeX distribution such as TeX Live or MiKTeX",
		)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var out strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.String(), err
}
