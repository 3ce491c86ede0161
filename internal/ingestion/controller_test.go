package ingestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/resume-tailor/internal/fetch"
	"github.com/jonathan/resume-tailor/internal/types"
)

type fakeEngine struct {
	name   string
	fields *Fields
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Extract(ctx context.Context, _ string) (*Fields, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.fields, f.err
}

func TestController_FirstEngineWins(t *testing.T) {
	primary := &fakeEngine{name: "browser", fields: &Fields{Title: "Go Dev", Company: "Acme", Description: "Write Go", JobID: "42"}}
	secondary := &fakeEngine{name: "html", err: errors.New("unused")}
	c := NewController(zaptest.NewLogger(t), time.Second, primary, secondary)

	p, err := c.Extract(context.Background(), "https://x.test/job")
	require.NoError(t, err)
	assert.Equal(t, "Go Dev", p.Title)
	assert.Equal(t, "42", p.JobID)
	assert.Equal(t, "browser", p.Engine)
	assert.NotEmpty(t, p.Fingerprint)
	assert.Equal(t, int32(0), secondary.calls.Load())
}

func TestController_FallsBackOnError(t *testing.T) {
	primary := &fakeEngine{name: "browser", err: errors.New("chrome not found")}
	secondary := &fakeEngine{name: "html", fields: &Fields{Title: "Go Dev"}}
	c := NewController(zaptest.NewLogger(t), time.Second, primary, secondary)

	p, err := c.Extract(context.Background(), "https://x.test/job")
	require.NoError(t, err)
	assert.Equal(t, "html", p.Engine)
	assert.Equal(t, "Go Dev", p.Title)
	assert.Equal(t, types.CompanyNotFound, p.Company)
	assert.Equal(t, types.DescriptionNotFound, p.Description)
}

func TestController_EmptySuccessDoesNotFallBack(t *testing.T) {
	primary := &fakeEngine{name: "browser", fields: &Fields{}}
	secondary := &fakeEngine{name: "html", fields: &Fields{Title: "Other"}}
	c := NewController(zaptest.NewLogger(t), time.Second, primary, secondary)

	p, err := c.Extract(context.Background(), "https://x.test/job")
	require.NoError(t, err)
	assert.Equal(t, types.TitleNotFound, p.Title)
	assert.Equal(t, int32(0), secondary.calls.Load())
}

func TestController_AllEnginesFail(t *testing.T) {
	errBrowser := errors.New("browser crashed")
	errHTML := errors.New("connection refused")
	c := NewController(zaptest.NewLogger(t), time.Second,
		&fakeEngine{name: "browser", err: errBrowser},
		&fakeEngine{name: "html", err: errHTML},
	)

	p, err := c.Extract(context.Background(), "https://x.test/job")
	require.Error(t, err)
	require.NotNil(t, p)
	assert.Equal(t, types.TitleNotFound, p.Title)
	assert.Equal(t, types.CompanyNotFound, p.Company)
	assert.Equal(t, types.DescriptionNotFound, p.Description)
	assert.Equal(t, types.EngineNone, p.Engine)
	assert.Len(t, p.JobID, 9)

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Len(t, extErr.Attempts, 2)
	assert.ErrorIs(t, err, errBrowser)
	assert.ErrorIs(t, err, errHTML)
}

func TestController_PerEngineTimeout(t *testing.T) {
	slow := &fakeEngine{name: "browser", delay: time.Second}
	fast := &fakeEngine{name: "html", fields: &Fields{Title: "Fast"}}
	c := NewController(zaptest.NewLogger(t), 20*time.Millisecond, slow, fast)

	p, err := c.Extract(context.Background(), "https://x.test/job")
	require.NoError(t, err)
	assert.Equal(t, "Fast", p.Title)
}

func TestController_CanceledContext(t *testing.T) {
	engine := &fakeEngine{name: "html", fields: &Fields{Title: "x"}}
	c := NewController(zaptest.NewLogger(t), time.Second, engine)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, err := c.Extract(ctx, "https://x.test/job")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, types.EngineNone, p.Engine)
	assert.Equal(t, int32(0), engine.calls.Load())
}

func TestController_Probe(t *testing.T) {
	c := NewController(zaptest.NewLogger(t), time.Second,
		&fakeEngine{name: "browser", err: errors.New("no chrome")},
		&fakeEngine{name: "html", fields: &Fields{Title: "Go Dev"}},
	)
	assert.Equal(t, []string{"browser", "html"}, c.Engines())

	results, err := c.Probe(context.Background(), "https://x.test/job")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "browser", results[0].Engine)
	assert.Equal(t, "no chrome", results[0].Error)
	assert.Equal(t, "Go Dev", results[1].Fields.Title)
}

func TestHTMLEngine_AgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><h1>Data Engineer</h1>
			<div class="company-name">Widgets Ltd</div>
			<div class="job-description">Pipelines and SQL.</div></body></html>`))
	}))
	defer srv.Close()

	engine := &HTMLEngine{Options: &fetch.Options{Timeout: time.Second}}
	c := NewController(zaptest.NewLogger(t), time.Second, engine)

	p, err := c.Extract(context.Background(), srv.URL+"/job")
	require.NoError(t, err)
	assert.Equal(t, "Data Engineer", p.Title)
	assert.Equal(t, "Widgets Ltd", p.Company)
	assert.Equal(t, "Pipelines and SQL.", p.Description)
	assert.Equal(t, types.EngineHTML, p.Engine)

	p, err = c.Extract(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Equal(t, types.DescriptionNotFound, p.Description)
}

func TestDefaultEngines(t *testing.T) {
	engines := DefaultEngines(EngineOptions{UseBrowser: true})
	require.Len(t, engines, 2)
	assert.Equal(t, types.EngineBrowser, engines[0].Name())
	assert.Equal(t, types.EngineHTML, engines[1].Name())

	engines = DefaultEngines(EngineOptions{})
	require.Len(t, engines, 1)
	assert.Equal(t, types.EngineHTML, engines[0].Name())
}
