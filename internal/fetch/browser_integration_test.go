//go:build integration
// +build integration

package fetch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_RealBrowser(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	opts := DefaultBrowserOptions()
	opts.Settle = 500 * time.Millisecond

	html, err := Render(context.Background(), "https://example.com", opts)
	if err != nil {
		t.Skipf("Skipping integration test: browser unavailable: %v", err)
	}
	require.NotEmpty(t, html)
	assert.Contains(t, html, "Example Domain")
}
