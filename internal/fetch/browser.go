// Package fetch - browser.go provides headless browser rendering for listings
// that only fill in through JavaScript.
package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/news-digest/internal/logging"
)

// BrowserOptions configures a Chrome session.
type BrowserOptions struct {
	Timeout   time.Duration
	Headless  bool
	Settle    time.Duration // wait after load for scripts to render
	UserAgent string
	Logger    *slog.Logger
}

// DefaultBrowserOptions returns headless settings with a 60s budget.
func DefaultBrowserOptions() BrowserOptions {
	return BrowserOptions{
		Timeout:   60 * time.Second,
		Headless:  true,
		Settle:    3 * time.Second,
		UserAgent: DefaultUserAgent,
	}
}

// NewBrowserContext starts a Chrome allocator and browser tab bound to ctx.
// Requires Chrome/Chromium to be installed on the system.
func NewBrowserContext(ctx context.Context, opts BrowserOptions) (context.Context, context.CancelFunc) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 800),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	return browserCtx, func() {
		cancelBrowser()
		cancelAlloc()
	}
}

// Render loads url in a fresh browser and returns the rendered HTML.
func Render(ctx context.Context, url string, opts BrowserOptions) (string, error) {
	logger := logging.OrDiscard(opts.Logger)
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultBrowserOptions().Timeout
	}

	logger.Debug("starting browser", "url", url, "headless", opts.Headless)

	browserCtx, cancel := NewBrowserContext(ctx, opts)
	defer cancel()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, opts.Timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(opts.Settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Cookie banners are optional; a miss is not an error.
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible, chromedp.AtLeast(0)).Do(ctx)
			return nil
		}),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	logger.Debug("rendered page", "url", url, "bytes", len(html))
	return html, nil
}
