package ingestion

import (
	"context"
	"time"

	"github.com/jonathan/resume-tailor/internal/fetch"
	"github.com/jonathan/resume-tailor/internal/types"
)

// DefaultDescriptionLimit caps descriptions taken from a page's main body.
const DefaultDescriptionLimit = 2000

// Engine extracts posting fields from a URL. Engines are tried in order by
// the Controller.
type Engine interface {
	Name() string
	Extract(ctx context.Context, url string) (*Fields, error)
}

// HTMLEngine fetches raw HTML over plain HTTP. It is fast but cannot see
// content rendered by client-side scripts.
type HTMLEngine struct {
	Options          *fetch.Options
	DescriptionLimit int
}

// Name implements Engine.
func (e *HTMLEngine) Name() string { return types.EngineHTML }

// Extract implements Engine.
func (e *HTMLEngine) Extract(ctx context.Context, url string) (*Fields, error) {
	res, err := fetch.URL(ctx, url, e.Options)
	if err != nil {
		return nil, err
	}
	return ExtractFields(res.HTML, url, limitOrDefault(e.DescriptionLimit))
}

// BrowserEngine renders the page in headless Chrome before extraction.
type BrowserEngine struct {
	Options          fetch.BrowserOptions
	DescriptionLimit int
}

// Name implements Engine.
func (e *BrowserEngine) Name() string { return types.EngineBrowser }

// Extract implements Engine.
func (e *BrowserEngine) Extract(ctx context.Context, url string) (*Fields, error) {
	res, err := fetch.Render(ctx, url, e.Options)
	if err != nil {
		return nil, err
	}
	return ExtractFields(res.HTML, url, limitOrDefault(e.DescriptionLimit))
}

// EngineOptions configures DefaultEngines.
type EngineOptions struct {
	UseBrowser       bool
	UserAgent        string
	Timeout          time.Duration
	DescriptionLimit int
}

// DefaultEngines returns the browser engine (when enabled) followed by the
// plain HTML engine.
func DefaultEngines(opts EngineOptions) []Engine {
	var engines []Engine
	if opts.UseBrowser {
		engines = append(engines, &BrowserEngine{
			Options: fetch.BrowserOptions{
				Timeout:   opts.Timeout,
				UserAgent: opts.UserAgent,
				Settle:    500 * time.Millisecond,
			},
			DescriptionLimit: opts.DescriptionLimit,
		})
	}
	engines = append(engines, &HTMLEngine{
		Options: &fetch.Options{
			Timeout:   opts.Timeout,
			UserAgent: opts.UserAgent,
			Headers: map[string]string{
				"Accept":          "text/html,application/xhtml+xml",
				"Accept-Language": "en-US,en;q=0.9",
			},
		},
		DescriptionLimit: opts.DescriptionLimit,
	})
	return engines
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultDescriptionLimit
	}
	return limit
}
