package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/jonathan/news-digest/internal/articles"
	"github.com/jonathan/news-digest/internal/fetch"
	"github.com/jonathan/news-digest/internal/logging"
)

const (
	titleSelector  = `textarea[placeholder='Title']`
	editorSelector = `div.ProseMirror`

	defaultPublishAttempts = 3
)

var successTexts = []string{"Published", "Your post is published", "View post", "Sent to everyone"}

// Post is one digest to publish.
type Post struct {
	Markdown    string
	EditorURL   string
	SessionFile string
	Publish     bool
}

// Result reports what happened in the editor.
type Result struct {
	Title     string
	Published bool
	URL       string
}

// SubstackPublisher drives the Substack editor with chromedp.
type SubstackPublisher struct {
	Browser fetch.BrowserOptions
	// Pause is the delay after each link dialog step.
	Pause    time.Duration
	Attempts int
	Logger   *slog.Logger
}

// NewSubstackPublisher returns a publisher with a visible browser window;
// Substack blocks most headless sessions.
func NewSubstackPublisher(headless bool, logger *slog.Logger) *SubstackPublisher {
	opts := fetch.DefaultBrowserOptions()
	opts.Headless = headless
	opts.Timeout = 5 * time.Minute
	return &SubstackPublisher{
		Browser:  opts,
		Pause:    200 * time.Millisecond,
		Attempts: defaultPublishAttempts,
		Logger:   logging.OrDiscard(logger),
	}
}

// Publish writes the post into the editor and either sends it or leaves
// it as an auto-saved draft.
func (p *SubstackPublisher) Publish(ctx context.Context, post Post) (Result, error) {
	logger := logging.OrDiscard(p.Logger)
	if post.EditorURL == "" {
		return Result{}, &PublishError{Step: "config", Message: "no Substack editor URL configured"}
	}
	state, err := LoadStorageState(post.SessionFile)
	if err != nil {
		return Result{}, err
	}

	title, body := ExtractTitleAndBody(post.Markdown)
	res := Result{Title: title}
	logger.Info("publishing", "title", title, "body_chars", len(body), "publish", post.Publish)

	browserCtx, cancel := fetch.NewBrowserContext(ctx, p.Browser)
	defer cancel()
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, p.Browser.Timeout)
	defer cancelTimeout()

	logger.Info("opening editor", "url", post.EditorURL)
	if err := chromedp.Run(browserCtx,
		network.Enable(),
		network.SetCookies(state.CookieParams()),
		chromedp.Navigate(post.EditorURL),
	); err != nil {
		return res, &PublishError{Step: "open", Message: "failed to open editor", Cause: err}
	}
	if err := p.waitVisible(browserCtx, titleSelector, 15*time.Second); err != nil {
		return res, &PublishError{Step: "open", Message: "editor did not load", Cause: err}
	}

	if err := chromedp.Run(browserCtx,
		chromedp.Click(titleSelector, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return input.InsertText(title).Do(ctx)
		}),
		chromedp.Click(editorSelector, chromedp.ByQuery),
	); err != nil {
		return res, &PublishError{Step: "title", Message: "failed to set title", Cause: err}
	}

	logger.Info("typing body")
	if err := chromedp.Run(browserCtx, p.typeBody(Plan(body))); err != nil {
		return res, &PublishError{Step: "body", Message: "failed to type body", Cause: err}
	}

	if err := p.insertSubscribeButton(browserCtx); err != nil {
		logger.Warn("could not insert subscribe button", "error", err)
	}

	if !post.Publish {
		logger.Info("draft mode, waiting for auto-save")
		_ = chromedp.Run(browserCtx, chromedp.Sleep(10*time.Second), chromedp.Location(&res.URL))
		logger.Info("draft saved", "url", res.URL)
		return res, nil
	}

	_ = chromedp.Run(browserCtx, chromedp.Sleep(5*time.Second))
	ok, err := p.publishWithRetry(browserCtx)
	_ = chromedp.Run(browserCtx, chromedp.Location(&res.URL))
	if err != nil {
		return res, &PublishError{Step: "send", Message: "publish failed", Cause: err}
	}
	if !ok {
		return res, &PublishError{Step: "send", Message: "publish did not confirm success after all retries"}
	}
	res.Published = true
	logger.Info("post published", "url", res.URL)
	return res, nil
}

func linkModifier() input.Modifier {
	if runtime.GOOS == "darwin" {
		return input.ModifierMeta
	}
	return input.ModifierCtrl
}

func (p *SubstackPublisher) typeBody(plan []Action) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		for _, a := range plan {
			var err error
			switch a.Kind {
			case ActionInsert:
				if a.Text != "" {
					err = input.InsertText(a.Text).Do(ctx)
				}
			case ActionType:
				err = chromedp.KeyEvent(a.Text).Do(ctx)
			case ActionEnter:
				err = chromedp.KeyEvent(kb.Enter).Do(ctx)
			case ActionLink:
				err = p.insertLink(ctx, a.Text, a.URL)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}
}

func (p *SubstackPublisher) insertLink(ctx context.Context, label, url string) error {
	return chromedp.Run(ctx,
		chromedp.KeyEvent("k", chromedp.KeyModifiers(linkModifier())),
		chromedp.Sleep(p.Pause),
		chromedp.ActionFunc(func(ctx context.Context) error { return input.InsertText(label).Do(ctx) }),
		chromedp.KeyEvent(kb.Tab),
		chromedp.Sleep(p.Pause),
		chromedp.ActionFunc(func(ctx context.Context) error { return input.InsertText(url).Do(ctx) }),
		chromedp.Sleep(p.Pause),
		chromedp.KeyEvent(kb.Enter),
		chromedp.Sleep(p.Pause),
		chromedp.KeyEvent(kb.ArrowRight),
	)
}

func (p *SubstackPublisher) insertSubscribeButton(ctx context.Context) error {
	_ = chromedp.Run(ctx, chromedp.Sleep(time.Second))
	if err := p.clickText(ctx, "button", "Button", 5*time.Second); err != nil {
		return err
	}
	if err := p.clickText(ctx, "*", "Subscribe w/ caption", 5*time.Second); err != nil {
		return err
	}
	p.Logger.Info("subscribe button inserted")
	return nil
}

func (p *SubstackPublisher) publishWithRetry(ctx context.Context) (bool, error) {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = defaultPublishAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			p.Logger.Info("reloading to sync draft", "attempt", attempt)
			_ = chromedp.Run(ctx, chromedp.Reload())
			_ = p.waitVisible(ctx, titleSelector, 20*time.Second)
			_ = chromedp.Run(ctx, chromedp.Sleep(3*time.Second))
		}

		p.dismissErrorDialog(ctx)
		_ = chromedp.Run(ctx, chromedp.Sleep(2*time.Second))

		if err := p.clickText(ctx, "*", "Continue", 10*time.Second); err != nil {
			p.Logger.Warn("could not click Continue", "attempt", attempt, "error", err)
			lastErr = err
			continue
		}
		_ = chromedp.Run(ctx, chromedp.Sleep(time.Second))
		p.dismissErrorDialog(ctx)

		if err := p.clickText(ctx, "*", "Send to everyone now", 10*time.Second); err != nil {
			p.Logger.Warn("could not click send", "attempt", attempt, "error", err)
			lastErr = err
			continue
		}
		_ = chromedp.Run(ctx, chromedp.Sleep(1500*time.Millisecond))

		if p.dismissErrorDialog(ctx) {
			p.Logger.Warn("post out of date after send, retrying", "attempt", attempt)
			lastErr = nil
			continue
		}
		if p.waitForSuccess(ctx, 60*time.Second) {
			return true, nil
		}
		p.Logger.Warn("publish confirmation not received", "attempt", attempt)
		lastErr = nil
	}
	return false, lastErr
}

func (p *SubstackPublisher) dismissErrorDialog(ctx context.Context) bool {
	for _, text := range []string{"Draft not saved", "Post out of date"} {
		if !p.textPresent(ctx, text) {
			continue
		}
		p.Logger.Warn("error dialog detected, dismissing", "dialog", text)
		if err := p.clickText(ctx, "button", "OK", 2*time.Second); err != nil {
			_ = p.clickText(ctx, "button", "Ok", 2*time.Second)
		}
		_ = chromedp.Run(ctx, chromedp.Sleep(1500*time.Millisecond))
		return true
	}
	return false
}

func (p *SubstackPublisher) waitForSuccess(ctx context.Context, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, text := range successTexts {
			if p.textPresent(ctx, text) {
				p.Logger.Info("publish confirmed", "text", text)
				return true
			}
		}
		var loc string
		if err := chromedp.Run(ctx, chromedp.Location(&loc)); err == nil && !strings.Contains(loc, "/publish/") {
			p.Logger.Info("publish confirmed via URL", "url", loc)
			return true
		}
		if err := chromedp.Run(ctx, chromedp.Sleep(500*time.Millisecond)); err != nil {
			return false
		}
	}
	return false
}

func textXPath(tag, text string) string {
	return fmt.Sprintf(`//%s[contains(normalize-space(.), %q)]`, tag, text)
}

func (p *SubstackPublisher) textPresent(ctx context.Context, text string) bool {
	var nodes []*cdp.Node
	err := chromedp.Run(ctx, chromedp.Nodes(textXPath("*", text), &nodes, chromedp.BySearch, chromedp.AtLeast(0)))
	return err == nil && len(nodes) > 0
}

// clickText clicks the innermost element of kind tag containing text.
func (p *SubstackPublisher) clickText(ctx context.Context, tag, text string, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	xpath := fmt.Sprintf(`(%s[not(descendant::*[contains(normalize-space(.), %q)])])[1]`, textXPath(tag, text), text)
	if tag != "*" {
		xpath = fmt.Sprintf(`(%s)[1]`, textXPath(tag, text))
	}
	return chromedp.Run(tctx, chromedp.Click(xpath, chromedp.BySearch, chromedp.NodeVisible))
}

func (p *SubstackPublisher) waitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return chromedp.Run(tctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// WriteFlag records that a digest was published.
func WriteFlag(path string, res Result, at time.Time) error {
	line := fmt.Sprintf("published %s %s\n", at.UTC().Format(time.RFC3339), res.URL)
	if err := articles.WriteFileAtomic(path, []byte(line)); err != nil {
		return &PublishError{Step: "flag", Message: "failed to write flag file", Cause: err}
	}
	return nil
}

// FlagExists reports whether the digest at path was already published.
func FlagExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
