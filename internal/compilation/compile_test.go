package compilation

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const doc = `\documentclass{article}
\begin{document}
Hello
\end{document}
`

// fakeRunner imitates pdflatex by writing files into the output directory.
type fakeRunner struct {
	mu       sync.Mutex
	calls    int
	dirs     []string
	writePDF bool
	log      string
	failOn   int
	block    bool

	active    atomic.Int32
	maxActive atomic.Int32
}

func (f *fakeRunner) Run(ctx context.Context, dir string, _ string, _ ...string) (string, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxActive.Load()
		if n <= m || f.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls++
	call := f.calls
	f.dirs = append(f.dirs, dir)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.log != "" {
		_ = os.WriteFile(filepath.Join(dir, "resume.log"), []byte(f.log), 0o644)
	}
	if f.failOn == call {
		return "! Undefined control sequence.", errors.New("exit status 1")
	}
	if f.writePDF {
		time.Sleep(5 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "resume.pdf"), []byte("%PDF-1.5 fake"), 0o644)
	}
	return "Output written on resume.pdf", nil
}

func newCompiler(t *testing.T, runner Runner, mutate func(*Options)) (*Compiler, string) {
	t.Helper()
	root := t.TempDir()
	opts := Options{WorkRoot: root, Runner: runner}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts, zaptest.NewLogger(t)), root
}

func TestCompile_Success(t *testing.T) {
	runner := &fakeRunner{writePDF: true, log: "This is pdfTeX"}
	c, root := newCompiler(t, runner, nil)
	dest := filepath.Join(t.TempDir(), "out", "resume.pdf")

	artifact, err := c.Compile(context.Background(), doc, dest)
	require.NoError(t, err)

	assert.Equal(t, 2, runner.calls)
	assert.Equal(t, runner.dirs[0], runner.dirs[1], "both passes share one arena")
	assert.Equal(t, dest, artifact.Path)
	assert.Equal(t, int64(len("%PDF-1.5 fake")), artifact.Size)
	assert.Equal(t, "This is pdfTeX", artifact.Log)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.5 fake", string(content))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "arena must be removed after compilation")
}

func TestCompile_MissingArtifactIsFatal(t *testing.T) {
	runner := &fakeRunner{writePDF: false}
	c, root := newCompiler(t, runner, nil)
	dest := filepath.Join(t.TempDir(), "resume.pdf")

	_, err := c.Compile(context.Background(), doc, dest)

	var ce *CompilationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 2, runner.calls)
	assert.Contains(t, ce.Message, "no artifact")
	assert.Equal(t, NoLogPlaceholder, ce.LogExcerpt)
	assert.Equal(t, doc, ce.SourceExcerpt)
	assert.NoFileExists(t, dest)

	entries, _ := os.ReadDir(root)
	assert.Empty(t, entries, "arena must be removed after failure")
}

func TestCompile_FailedPassStopsAndExcerptsLog(t *testing.T) {
	log := strings.Repeat("x", 3000) + "\n! Undefined control sequence.\nl.3 \\bad"
	runner := &fakeRunner{writePDF: true, failOn: 1, log: log}
	c, _ := newCompiler(t, runner, nil)
	longDoc := doc + strings.Repeat("%", 2000)

	_, err := c.Compile(context.Background(), longDoc, filepath.Join(t.TempDir(), "resume.pdf"))

	var ce *CompilationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, runner.calls)
	assert.Contains(t, ce.Message, "pass 1 of 2")
	assert.Contains(t, ce.LogExcerpt, "Undefined control sequence")
	assert.LessOrEqual(t, len(ce.LogExcerpt), logExcerptLimit+3)
	assert.Len(t, ce.SourceExcerpt, sourceExcerptLimit)
	assert.True(t, strings.HasPrefix(longDoc, ce.SourceExcerpt))
}

func TestCompile_Timeout(t *testing.T) {
	runner := &fakeRunner{block: true}
	c, _ := newCompiler(t, runner, func(o *Options) { o.Timeout = 50 * time.Millisecond })

	_, err := c.Compile(context.Background(), doc, filepath.Join(t.TempDir(), "resume.pdf"))

	var ce *CompilationError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, err.Error(), "timed out")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCompile_IsolatesConcurrentRequests(t *testing.T) {
	runner := &fakeRunner{writePDF: true}
	c, _ := newCompiler(t, runner, func(o *Options) { o.MaxConcurrent = 1 })
	out := t.TempDir()

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Compile(context.Background(), doc, filepath.Join(out, string(rune('a'+i))+".pdf"))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), runner.maxActive.Load())

	arenas := map[string]bool{}
	for _, d := range runner.dirs {
		arenas[d] = true
	}
	assert.Len(t, arenas, 4)
}

func TestCompile_CanceledWhileWaitingForSlot(t *testing.T) {
	c, _ := newCompiler(t, &fakeRunner{writePDF: true}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, c.sem.Acquire(context.Background(), 1))
	defer c.sem.Release(1)

	_, err := c.Compile(ctx, doc, filepath.Join(t.TempDir(), "resume.pdf"))
	var ce *CompilationError
	assert.ErrorAs(t, err, &ce)
}

func TestCompile_Pdflatex(t *testing.T) {
	if _, err := exec.LookPath("pdflatex"); err != nil {
		t.Skip("pdflatex not available, skipping compilation test")
	}
	c := New(Options{WorkRoot: t.TempDir()}, zaptest.NewLogger(t))
	dest := filepath.Join(t.TempDir(), "resume.pdf")

	artifact, err := c.Compile(context.Background(), doc, dest)
	require.NoError(t, err)
	assert.FileExists(t, artifact.Path)
	assert.Positive(t, artifact.Size)
}

func TestExcerpts(t *testing.T) {
	assert.Equal(t, "abc", head("abc", 10))
	assert.Equal(t, "ab", head("abc", 2))
	assert.Equal(t, "...bc", tail("abc", 2))
	// cutting inside a multi-byte rune drops the partial rune
	assert.Equal(t, "a", head("aé", 2))
}

func TestRemoveQuietly(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "resume.aux")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	RemoveQuietly(f, filepath.Join(dir, "missing.log"), "")
	assert.NoFileExists(t, f)
}
