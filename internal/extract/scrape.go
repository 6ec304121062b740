package extract

import (
	"context"
	"errors"
	"log"
	"time"
)

// Surface is a live, interactive page. Implementations re-read the DOM on
// every call, so a Snapshot taken after a wait may differ from the last.
type Surface interface {
	// Snapshot returns the current document.
	Snapshot(ctx context.Context) (*Page, error)
	// Activate clicks the index-th element matching selector.
	Activate(ctx context.Context, selector string, index int) error
	// ScrollHeight returns the scrollable height of the first element
	// matching selector, or ErrElementNotFound.
	ScrollHeight(ctx context.Context, selector string) (int, error)
	// ScrollTo sets the scroll offset of the first element matching selector.
	ScrollTo(ctx context.Context, selector string, y int) error
}

// Clock provides the time source and delays used between polls.
type Clock interface {
	Now() time.Time
	// Sleep waits for d or until ctx is done, returning ctx.Err() in the
	// latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Sleep blocks for d or until ctx is done.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ScrapeOptions bounds the modal scrape. The time and count limits apply
// independently; whichever is reached first ends the loop.
type ScrapeOptions struct {
	ModalTimeout  time.Duration // wall-clock limit for the modal to show connections
	PollInterval  time.Duration // delay between modal checks
	SettleDelay   time.Duration // delay after the modal appears, before reading it
	MaxPolls      int
	ScrollDelay   time.Duration // delay after each scroll step
	MaxScrolls    int
	ScrollTimeout time.Duration // wall-clock limit for the scroll loop
	Verbose       bool
}

// DefaultScrapeOptions returns the standard modal timings.
func DefaultScrapeOptions() ScrapeOptions {
	return ScrapeOptions{
		ModalTimeout:  5 * time.Second,
		PollInterval:  200 * time.Millisecond,
		SettleDelay:   500 * time.Millisecond,
		MaxPolls:      50,
		ScrollDelay:   300 * time.Millisecond,
		MaxScrolls:    20,
		ScrollTimeout: 15 * time.Second,
	}
}

// ScrapeStats describes how a scrape ended.
type ScrapeStats struct {
	ModalOpened  bool `json:"modal_opened"`
	Polls        int  `json:"polls"`
	ModalTimeout bool `json:"modal_timeout"`
	ScrollSteps  int  `json:"scroll_steps"`
	Stabilized   bool `json:"stabilized"`
}

// ScrapeResult is a profile plus the stats of the scrape that produced it.
type ScrapeResult struct {
	Profile *ProfileRecord `json:"profile"`
	Stats   ScrapeStats    `json:"stats"`
}

// Scraper drives a Surface to read a profile, optionally opening and
// scrolling the mutual connections modal.
type Scraper struct {
	surface Surface
	clock   Clock
	opts    ScrapeOptions
}

// NewScraper creates a scraper. A nil clock means SystemClock.
func NewScraper(surface Surface, clock Clock, opts ScrapeOptions) *Scraper {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scraper{surface: surface, clock: clock, opts: opts}
}

// ExtractProfileData reads the profile. With openModal it also opens the
// mutual connections modal, waits for it, scrolls it to load every entry,
// re-reads the list and closes the modal. Timeouts and interaction failures
// after the first snapshot yield the best result gathered so far; only a
// failed first snapshot is an error.
func (s *Scraper) ExtractProfileData(ctx context.Context, openModal bool) (*ScrapeResult, error) {
	page, err := s.surface.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	result := &ScrapeResult{Profile: ExtractProfile(page)}
	if !openModal {
		return result, nil
	}

	selector, index, ok := mutualOpener(page)
	if !ok {
		s.logf("[scrape] no mutual connections control on %s", result.Profile.LinkedInURL)
		return result, nil
	}
	if err := s.surface.Activate(ctx, selector, index); err != nil {
		s.logf("[scrape] failed to open mutual connections: %v", err)
		return result, nil
	}
	result.Stats.ModalOpened = true

	if conns := s.waitForModal(ctx, &result.Stats); len(conns) > 0 {
		result.Profile.MutualConnections = conns
	}
	if ctx.Err() != nil {
		return result, nil
	}

	s.scrollModal(ctx, &result.Stats)

	if page, err := s.surface.Snapshot(ctx); err == nil {
		if conns := MutualConnections(page); len(conns) > 0 {
			result.Profile.MutualConnections = conns
		}
	}

	if err := s.surface.Activate(ctx, ModalDismissSelector, 0); err != nil && !errors.Is(err, ErrElementNotFound) {
		s.logf("[scrape] failed to close modal: %v", err)
	}

	s.logf("[scrape] %d mutual connections after %d polls and %d scroll steps",
		len(result.Profile.MutualConnections), result.Stats.Polls, result.Stats.ScrollSteps)
	return result, nil
}

// waitForModal polls until the modal shows connections, the timeout passes
// or the poll budget runs out.
func (s *Scraper) waitForModal(ctx context.Context, stats *ScrapeStats) []string {
	start := s.clock.Now()
	for stats.Polls < s.opts.MaxPolls {
		if s.clock.Now().Sub(start) >= s.opts.ModalTimeout {
			stats.ModalTimeout = true
			break
		}
		stats.Polls++

		page, err := s.surface.Snapshot(ctx)
		if err == nil && page.Has(ModalSelector) {
			if s.clock.Sleep(ctx, s.opts.SettleDelay) != nil {
				return nil
			}
			if page, err = s.surface.Snapshot(ctx); err == nil {
				if conns := MutualConnections(page); len(conns) > 0 {
					return conns
				}
			}
		}

		if s.clock.Sleep(ctx, s.opts.PollInterval) != nil {
			return nil
		}
	}

	page, err := s.surface.Snapshot(ctx)
	if err != nil {
		return nil
	}
	return MutualConnections(page)
}

// scrollModal scrolls the modal content to its bottom until its height stops
// growing.
func (s *Scraper) scrollModal(ctx context.Context, stats *ScrapeStats) {
	deadline := s.clock.Now().Add(s.opts.ScrollTimeout)
	previous := 0
	for stats.ScrollSteps < s.opts.MaxScrolls && s.clock.Now().Before(deadline) {
		height, err := s.surface.ScrollHeight(ctx, ModalContentSelector)
		if err != nil {
			return
		}
		if height == previous {
			stats.Stabilized = true
			return
		}
		previous = height

		if err := s.surface.ScrollTo(ctx, ModalContentSelector, height); err != nil {
			return
		}
		stats.ScrollSteps++

		if s.clock.Sleep(ctx, s.opts.ScrollDelay) != nil {
			return
		}
	}
}

func (s *Scraper) logf(format string, args ...any) {
	if s.opts.Verbose {
		log.Printf(format, args...)
	}
}
