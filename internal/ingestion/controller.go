// Package ingestion turns a job posting URL or pasted text into a normalized
// JobPosting. URL extraction tries a chain of engines and never fails
// outright: when every engine errors, a posting with sentinel fields is
// returned alongside an *ExtractionError.
package ingestion

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/types"
)

// DefaultEngineTimeout bounds each engine attempt.
const DefaultEngineTimeout = 10 * time.Second

// Controller runs engines in order until one succeeds.
type Controller struct {
	engines []Engine
	timeout time.Duration
	logger  *zap.Logger
}

// NewController builds a controller over engines, tried in the given order.
func NewController(logger *zap.Logger, timeout time.Duration, engines ...Engine) *Controller {
	if timeout <= 0 {
		timeout = DefaultEngineTimeout
	}
	return &Controller{
		engines: engines,
		timeout: timeout,
		logger:  logging.OrNop(logger),
	}
}

// Engines returns the names of the configured engines in order.
func (c *Controller) Engines() []string {
	names := make([]string, len(c.engines))
	for i, e := range c.engines {
		names[i] = e.Name()
	}
	return names
}

// Extract returns the posting from the first engine that does not error.
// A success with empty fields is still a success; missing fields become
// sentinels. When every engine fails the returned posting carries sentinels
// and the error is an *ExtractionError. A canceled ctx stops the chain.
func (c *Controller) Extract(ctx context.Context, url string) (*types.JobPosting, error) {
	failure := &ExtractionError{URL: url}
	for _, engine := range c.engines {
		if err := ctx.Err(); err != nil {
			failure.Attempts = append(failure.Attempts, Attempt{Engine: engine.Name(), Err: err})
			break
		}

		start := time.Now()
		fields, err := c.attempt(ctx, engine, url)
		log := c.logger.With(
			zap.String(logging.FieldEngine, engine.Name()),
			zap.String(logging.FieldURL, url),
			zap.Duration(logging.FieldDuration, time.Since(start)),
		)
		if err != nil {
			log.Warn("extraction engine failed, falling back", zap.Error(err))
			failure.Attempts = append(failure.Attempts, Attempt{Engine: engine.Name(), Err: err})
			continue
		}

		posting := postingFromFields(fields, url, engine.Name())
		log.Info("extracted job posting",
			zap.String(logging.FieldJobID, posting.JobID),
			zap.Bool("has_description", posting.HasDescription()),
		)
		return posting, nil
	}

	c.logger.Error("all extraction engines failed", zap.String(logging.FieldURL, url), zap.Error(failure))
	return SentinelPosting(url), failure
}

func (c *Controller) attempt(ctx context.Context, engine Engine, url string) (*Fields, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return engine.Extract(ctx, url)
}

// ProbeResult is one engine's output from Probe.
type ProbeResult struct {
	Engine   string        `json:"engine"`
	Fields   *Fields       `json:"fields,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Probe runs every engine concurrently against url and reports each result.
// It is a diagnostic for comparing engines on a site; individual engine
// errors are reported in the results, not returned.
func (c *Controller) Probe(ctx context.Context, url string) ([]ProbeResult, error) {
	results := make([]ProbeResult, len(c.engines))
	g, gctx := errgroup.WithContext(ctx)
	for i, engine := range c.engines {
		g.Go(func() error {
			start := time.Now()
			fields, err := c.attempt(gctx, engine, url)
			r := ProbeResult{Engine: engine.Name(), Fields: fields, Duration: time.Since(start)}
			if err != nil {
				r.Error = err.Error()
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, ctx.Err()
}
