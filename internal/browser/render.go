package browser

import (
	"context"
	"fmt"
	"log"
)

// Render loads url in a fresh headless browser and returns the rendered
// HTML and final URL. Requires Chrome or Chromium to be installed.
func Render(ctx context.Context, url string, opts Options) (string, string, error) {
	if opts.Verbose {
		log.Printf("[BROWSER] Rendering %s", url)
	}

	session, err := NewSession(ctx, opts)
	if err != nil {
		return "", "", err
	}
	defer session.Close()

	if err := session.Navigate(ctx, url); err != nil {
		return "", "", err
	}
	// Cookie banners cover content on some job boards; a miss is fine.
	_ = session.Activate(ctx, `button[id*="accept"], button[class*="accept"]`, 0)

	html, location, err := session.HTML(ctx)
	if err != nil {
		return "", "", fmt.Errorf("browser rendering failed: %w", err)
	}
	if opts.Verbose {
		log.Printf("[BROWSER] Rendered HTML: %d bytes", len(html))
	}
	return html, location, nil
}
