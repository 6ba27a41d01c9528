package cover

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopStories(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want string
	}{
		{
			name: "bullet block",
			md:   "Heading line\n\n### Top stories\n- First story\n- Second story\n\n### Crime & Justice\n- Other",
			want: "- First story\n- Second story",
		},
		{
			name: "bullet dot",
			md:   "Heading\n\n• One\n• Two",
			want: "• One\n• Two",
		},
		{
			name: "second paragraph",
			md:   "Heading\n\nTop of the news today\n\nMore",
			want: "Top of the news today",
		},
		{name: "single paragraph", md: "Only heading", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TopStories(tt.md))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	day := time.Date(2025, 6, 28, 0, 0, 0, 0, time.UTC)
	top := "- A\n- B\n- C\n- D\n- E"

	p := BuildPrompt(day, top, "A", false)

	assert.Contains(t, p, "Saturday, 28 June 2025")
	assert.Contains(t, p, "Lead subject: A. ")
	assert.Contains(t, p, "A; B; C; D.")
	assert.NotContains(t, p, "E.")
	assert.Contains(t, p, "Avoid faces")
	assert.Contains(t, p, StyleSeed)

	assert.Contains(t, BuildPrompt(day, "", "", true), fallbackThemes)
}

type fakeImages struct {
	prompt string
	model  string
	size   string
	err    error
}

func (f *fakeImages) GenerateImage(_ context.Context, prompt, model, size string) ([]byte, error) {
	f.prompt, f.model, f.size = prompt, model, size
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png"), nil
}

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "txt")
	gen := &fakeImages{}
	md := "Heading\n\n### Top stories\n- Wildfire near Limassol\n- Budget vote"

	path := Generate(context.Background(), gen, time.Now(), md, dir, DefaultOptions(), nil)

	require.Equal(t, filepath.Join(dir, FileName), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, DefaultModel, gen.model)
	assert.Equal(t, DefaultSize, gen.size)
	assert.Contains(t, gen.prompt, "Lead subject: Wildfire near Limassol.")
}

func TestGenerate_FailureIsNonFatal(t *testing.T) {
	dir := t.TempDir()
	path := Generate(context.Background(), &fakeImages{err: errors.New("quota")}, time.Now(), "- story", dir, Options{}, nil)

	assert.Empty(t, path)
	_, err := os.Stat(filepath.Join(dir, FileName))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerate_NoTopStories(t *testing.T) {
	gen := &fakeImages{}
	assert.Empty(t, Generate(context.Background(), gen, time.Now(), "just one line", t.TempDir(), Options{}, nil))
	assert.Empty(t, gen.prompt)
}
