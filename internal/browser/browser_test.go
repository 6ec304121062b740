package browser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScriptsQuoteSelectors(t *testing.T) {
	selector := `a[href*="facetNetwork"]`

	script := activateScript(selector, 2)
	assert.Contains(t, script, `document.querySelectorAll("a[href*=\"facetNetwork\"]")[2]`)
	assert.Contains(t, script, "el.click()")

	assert.Contains(t, scrollHeightScript(".artdeco-modal__content"), `document.querySelector(".artdeco-modal__content")`)
	assert.Contains(t, scrollToScript(".artdeco-modal__content", 840), "el.scrollTop = 840")
}

func TestJSString(t *testing.T) {
	assert.Equal(t, `"it's \"quoted\""`, jsString(`it's "quoted"`))
	assert.Equal(t, `"\u003c/script\u003e"`, jsString(`</script>`))
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.True(t, opts.Headless)
	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.Equal(t, 3*time.Second, opts.RenderDelay)
}

func TestAllocatorOptions(t *testing.T) {
	base := len(allocatorOptions(Options{Headless: true}))
	assert.Equal(t, base+2, len(allocatorOptions(Options{Headless: true, UserDataDir: "/tmp/profile", UserAgent: "ua"})))
}
