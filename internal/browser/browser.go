// Package browser drives headless Chrome for pages that render client-side
// and for the interactive LinkedIn profile scrape.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/jonathan/job-tracker/internal/extract"
)

// DefaultTimeout bounds a whole session.
const DefaultTimeout = 2 * time.Minute

// Options configures the Chrome instance.
type Options struct {
	Headless    bool
	UserDataDir string // Chrome profile holding a logged-in LinkedIn session
	UserAgent   string
	Timeout     time.Duration
	RenderDelay time.Duration // wait after load for client-side rendering
	Verbose     bool
}

// DefaultOptions returns headless defaults.
func DefaultOptions() Options {
	return Options{
		Headless:    true,
		Timeout:     DefaultTimeout,
		RenderDelay: 3 * time.Second,
	}
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
	)
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	return allocOpts
}

// Session is one Chrome tab. It implements extract.Surface.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
	opts    Options
}

var _ extract.Surface = (*Session)(nil)

// NewSession starts Chrome and opens a tab. The session ends when ctx is
// done, the timeout passes or Close is called.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, opts.Timeout)

	s := &Session{
		ctx:     tabCtx,
		cancels: []context.CancelFunc{cancelTimeout, cancelTab, cancelAlloc},
		opts:    opts,
	}

	// An empty Run launches the browser.
	if err := chromedp.Run(tabCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	s.logf("[BROWSER] Started (headless=%v, profile=%q)", opts.Headless, opts.UserDataDir)
	return s, nil
}

// Close shuts the tab and the browser.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// run executes actions on the tab, aborting when either ctx or the session
// ends.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Navigate loads url and waits for the body plus RenderDelay.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logf("[BROWSER] Navigating to %s", url)
	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	}
	if s.opts.RenderDelay > 0 {
		actions = append(actions, chromedp.Sleep(s.opts.RenderDelay))
	}
	if err := s.run(ctx, actions...); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// HTML returns the current document and its URL.
func (s *Session) HTML(ctx context.Context) (string, string, error) {
	var html, location string
	if err := s.run(ctx, chromedp.Location(&location), chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", "", fmt.Errorf("failed to read page: %w", err)
	}
	return html, location, nil
}

// Snapshot implements extract.Surface.
func (s *Session) Snapshot(ctx context.Context) (*extract.Page, error) {
	html, location, err := s.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return extract.NewPageFromHTML(location, html)
}

// Activate implements extract.Surface by clicking in page script, which
// reaches elements chromedp.Click cannot address by index.
func (s *Session) Activate(ctx context.Context, selector string, index int) error {
	var clicked bool
	if err := s.run(ctx, chromedp.Evaluate(activateScript(selector, index), &clicked)); err != nil {
		return fmt.Errorf("failed to click %s[%d]: %w", selector, index, err)
	}
	if !clicked {
		return extract.ErrElementNotFound
	}
	return nil
}

// ScrollHeight implements extract.Surface.
func (s *Session) ScrollHeight(ctx context.Context, selector string) (int, error) {
	var height int
	if err := s.run(ctx, chromedp.Evaluate(scrollHeightScript(selector), &height)); err != nil {
		return 0, fmt.Errorf("failed to read scroll height of %s: %w", selector, err)
	}
	if height < 0 {
		return 0, extract.ErrElementNotFound
	}
	return height, nil
}

// ScrollTo implements extract.Surface.
func (s *Session) ScrollTo(ctx context.Context, selector string, y int) error {
	var ok bool
	if err := s.run(ctx, chromedp.Evaluate(scrollToScript(selector, y), &ok)); err != nil {
		return fmt.Errorf("failed to scroll %s: %w", selector, err)
	}
	if !ok {
		return extract.ErrElementNotFound
	}
	return nil
}

func (s *Session) logf(format string, args ...any) {
	if s.opts.Verbose {
		log.Printf(format, args...)
	}
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func activateScript(selector string, index int) string {
	return fmt.Sprintf(`(() => {
	const el = document.querySelectorAll(%s)[%d];
	if (!el) return false;
	el.click();
	return true;
})()`, jsString(selector), index)
}

func scrollHeightScript(selector string) string {
	return fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	return el ? el.scrollHeight : -1;
})()`, jsString(selector))
}

func scrollToScript(selector string, y int) string {
	return fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	if (!el) return false;
	el.scrollTop = %d;
	return true;
})()`, jsString(selector), y)
}
