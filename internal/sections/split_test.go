package sections

import (
	"bytes"
	"testing"

	"github.com/jonathan/news-digest/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestSplit_TopStoriesFirst(t *testing.T) {
	top, rest := Split("### Top stories\n- A\n\n### Culture\n- B", nil)
	assert.Equal(t, "### Top stories\n- A", top)
	assert.Equal(t, "### Culture\n- B", rest)
}

func TestSplit_MultipleRemainingSections(t *testing.T) {
	md := "### Top stories\n- A\n- B\n\n### Education\n- C\n\n\n### Culture\n- D\n"
	top, rest := Split(md, nil)
	assert.Equal(t, "### Top stories\n- A\n- B", top)
	assert.Equal(t, "### Education\n- C\n### Culture\n- D", rest)
}

func TestSplit_LocalizedMarkers(t *testing.T) {
	for _, marker := range TopStoriesMarkers {
		t.Run(marker, func(t *testing.T) {
			top, rest := Split(marker+"\n- x\n### Other\n- y", nil)
			assert.Equal(t, marker+"\n- x", top)
			assert.Equal(t, "### Other\n- y", rest)
		})
	}
}

func TestSplit_NoTopStories(t *testing.T) {
	var buf bytes.Buffer
	md := "### Culture\n- B\n### Top stories\n- A"

	top, rest := Split(md, logging.New("warn", &buf))

	assert.Empty(t, top)
	assert.Equal(t, md, rest)
	assert.Contains(t, buf.String(), "no top stories")
}

func TestSplit_NoHeaders(t *testing.T) {
	top, rest := Split("just text", nil)
	assert.Empty(t, top)
	assert.Equal(t, "just text", rest)
}

func TestSplit_OnlyTopStories(t *testing.T) {
	top, rest := Split("### Top stories\n- A\n", nil)
	assert.Equal(t, "### Top stories\n- A", top)
	assert.Empty(t, rest)
}

func TestStripSummaryMarker(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"own line", "SUMMARY:\n### Culture\n- a", "### Culture\n- a"},
		{"indented line", "  SUMMARY:  \n- a", "- a"},
		{"inline", "SUMMARY: ### Culture", "### Culture"},
		{"absent", "### Culture\n- a", "### Culture\n- a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripSummaryMarker(tt.in))
		})
	}
}
