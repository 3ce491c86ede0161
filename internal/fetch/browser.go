package fetch

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

// BrowserOptions configures headless rendering.
type BrowserOptions struct {
	Timeout   time.Duration
	UserAgent string
	// Settle is how long to wait after the body is ready for scripts to
	// finish rendering.
	Settle time.Duration
	// ExecPath selects a Chrome binary; empty lets chromedp find one.
	ExecPath string
}

// Render loads urlStr in headless Chrome and returns the rendered HTML.
func Render(ctx context.Context, urlStr string, opts BrowserOptions) (*Result, error) {
	if _, err := ValidateURL(urlStr); err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancel := context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	var html string
	actions := []chromedp.Action{
		emulation.SetUserAgentOverride(opts.UserAgent),
		chromedp.Navigate(urlStr),
		chromedp.WaitReady("body"),
	}
	if opts.Settle > 0 {
		actions = append(actions, chromedp.Sleep(opts.Settle))
	}
	actions = append(actions, chromedp.OuterHTML("html", &html))

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return nil, &Error{URL: urlStr, Message: "browser rendering failed", Cause: err}
	}
	return &Result{URL: urlStr, HTML: html, StatusCode: 200, ContentType: "text/html"}, nil
}
