package extract

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.now = c.now.Add(d)
	return nil
}

// fakeSurface renders a profile page whose modal opens on activation and
// reveals more names with every scroll step.
type fakeSurface struct {
	base        string
	modalOpens  bool
	modalNames  []string
	initial     int // names visible before any scrolling
	heights     []int
	onActivate  func()
	opened      bool
	heightCalls int
	scrolls     int
	activations []string
	snapshots   int
}

func (s *fakeSurface) Snapshot(_ context.Context) (*Page, error) {
	s.snapshots++
	var b strings.Builder
	b.WriteString(`<html><head><link rel="canonical" href="https://www.linkedin.com/in/jane-doe/"></head><body>`)
	b.WriteString(`<h1 class="text-heading-xlarge">Jane Doe</h1>`)
	b.WriteString(s.base)
	if s.opened && s.modalOpens {
		visible := min(s.initial+s.scrolls, len(s.modalNames))
		b.WriteString(`<div class="artdeco-modal"><div class="artdeco-modal__content">`)
		for _, name := range s.modalNames[:visible] {
			b.WriteString(modalCard(name))
		}
		b.WriteString(`</div><button class="artdeco-modal__dismiss">Dismiss</button></div>`)
	}
	b.WriteString(`</body></html>`)
	return NewPageFromHTML("https://www.linkedin.com/in/jane-doe/", b.String())
}

func (s *fakeSurface) Activate(_ context.Context, selector string, index int) error {
	s.activations = append(s.activations, fmt.Sprintf("%s#%d", selector, index))
	if s.onActivate != nil {
		s.onActivate()
	}
	switch selector {
	case ModalDismissSelector:
		if !s.opened || !s.modalOpens {
			return ErrElementNotFound
		}
		s.opened = false
	default:
		s.opened = true
	}
	return nil
}

func (s *fakeSurface) ScrollHeight(_ context.Context, selector string) (int, error) {
	if selector != ModalContentSelector || !s.opened || !s.modalOpens {
		return 0, ErrElementNotFound
	}
	h := s.heights[min(s.heightCalls, len(s.heights)-1)]
	s.heightCalls++
	return h, nil
}

func (s *fakeSurface) ScrollTo(_ context.Context, _ string, _ int) error {
	s.scrolls++
	return nil
}

const mutualLink = `<a href="/search/results/people/?facetNetwork=F">Search</a>` +
	`<a href="/search/results/people/?facetNetwork=S&amp;facetConnectionOf=x">Bob Lee and 11 other mutual connections</a>`

func TestScraper_VisibleOnly(t *testing.T) {
	surface := &fakeSurface{base: mutualLink + sharedCard("Bob Lee")}
	scraper := NewScraper(surface, &fakeClock{}, DefaultScrapeOptions())

	result, err := scraper.ExtractProfileData(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe/", result.Profile.LinkedInURL)
	assert.Equal(t, "Jane Doe", result.Profile.Name)
	assert.Equal(t, []string{"Bob Lee"}, result.Profile.MutualConnections)
	assert.Empty(t, surface.activations)
	assert.Equal(t, 1, surface.snapshots)
	assert.Equal(t, ScrapeStats{}, result.Stats)
}

func TestScraper_ExhaustiveScrollStopsWhenHeightStabilizes(t *testing.T) {
	surface := &fakeSurface{
		base:       mutualLink + sharedCard("Bob Lee"),
		modalOpens: true,
		modalNames: []string{"Amy Chen", "Bob Lee", "Raj Patel", "Li Wei", "Ann Park"},
		initial:    2,
		heights:    []int{100, 200, 300, 300},
	}
	scraper := NewScraper(surface, &fakeClock{}, DefaultScrapeOptions())

	result, err := scraper.ExtractProfileData(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, []string{"Amy Chen", "Bob Lee", "Raj Patel", "Li Wei", "Ann Park"}, result.Profile.MutualConnections)
	assert.Equal(t, ScrapeStats{ModalOpened: true, Polls: 1, ScrollSteps: 3, Stabilized: true}, result.Stats)
	assert.Equal(t, []string{mutualLinkSelector + "#1", ModalDismissSelector + "#0"}, surface.activations)
	assert.False(t, surface.opened, "modal should be closed")
}

func TestScraper_ScrollStepLimit(t *testing.T) {
	heights := make([]int, 100)
	for i := range heights {
		heights[i] = (i + 1) * 100
	}
	surface := &fakeSurface{
		base:       mutualLink,
		modalOpens: true,
		modalNames: []string{"Amy Chen"},
		initial:    1,
		heights:    heights,
	}
	scraper := NewScraper(surface, &fakeClock{}, DefaultScrapeOptions())

	result, err := scraper.ExtractProfileData(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 20, result.Stats.ScrollSteps)
	assert.False(t, result.Stats.Stabilized)
}

func TestScraper_ScrollTimeout(t *testing.T) {
	heights := make([]int, 100)
	for i := range heights {
		heights[i] = (i + 1) * 100
	}
	surface := &fakeSurface{
		base:       mutualLink,
		modalOpens: true,
		modalNames: []string{"Amy Chen"},
		initial:    1,
		heights:    heights,
	}
	opts := DefaultScrapeOptions()
	opts.ScrollTimeout = time.Second
	scraper := NewScraper(surface, &fakeClock{}, opts)

	result, err := scraper.ExtractProfileData(context.Background(), true)
	require.NoError(t, err)
	// steps at 0, 300, 600 and 900ms; the deadline has passed at 1200ms
	assert.Equal(t, 4, result.Stats.ScrollSteps)
}

func TestScraper_ModalTimeoutReturnsPartialData(t *testing.T) {
	surface := &fakeSurface{
		base:       mutualLink + sharedCard("Bob Lee"),
		modalOpens: false,
	}
	clock := &fakeClock{}
	scraper := NewScraper(surface, clock, DefaultScrapeOptions())

	result, err := scraper.ExtractProfileData(context.Background(), true)
	require.NoError(t, err)

	assert.True(t, result.Stats.ModalOpened)
	assert.True(t, result.Stats.ModalTimeout)
	assert.Equal(t, 25, result.Stats.Polls, "5s at one poll per 200ms")
	assert.Equal(t, 0, result.Stats.ScrollSteps)
	assert.Equal(t, []string{"Bob Lee"}, result.Profile.MutualConnections)
	assert.Equal(t, 5*time.Second, clock.now.Sub(time.Time{}))
}

func TestScraper_PollLimit(t *testing.T) {
	surface := &fakeSurface{base: mutualLink, modalOpens: false}
	opts := DefaultScrapeOptions()
	opts.MaxPolls = 3
	opts.ModalTimeout = time.Hour
	scraper := NewScraper(surface, &fakeClock{}, opts)

	result, err := scraper.ExtractProfileData(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Stats.Polls)
	assert.False(t, result.Stats.ModalTimeout)
}

func TestScraper_NoOpener(t *testing.T) {
	surface := &fakeSurface{base: sharedCard("Bob Lee")}
	scraper := NewScraper(surface, &fakeClock{}, DefaultScrapeOptions())

	result, err := scraper.ExtractProfileData(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, result.Stats.ModalOpened)
	assert.Empty(t, surface.activations)
	assert.Equal(t, []string{"Bob Lee"}, result.Profile.MutualConnections)
}

func TestScraper_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	surface := &fakeSurface{
		base:       mutualLink + sharedCard("Bob Lee"),
		modalOpens: true,
		modalNames: []string{"Amy Chen"},
		initial:    1,
		heights:    []int{100, 200},
		onActivate: cancel,
	}
	scraper := NewScraper(surface, &fakeClock{}, DefaultScrapeOptions())

	result, err := scraper.ExtractProfileData(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Stats.ScrollSteps)
	assert.Equal(t, []string{"Bob Lee"}, result.Profile.MutualConnections)
}

func TestSystemClock_SleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := SystemClock{}.Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}
