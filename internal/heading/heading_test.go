package heading

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nicosia(t *testing.T) Generator {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Nicosia")
	require.NoError(t, err)
	return Generator{Location: loc, CutoffHour: DefaultCutoffHour}
}

func TestGenerate_English(t *testing.T) {
	g := nicosia(t)
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	later := time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)

	got := g.Generate(day, "en", later)

	want := "## 📰 News Summary for Monday, 02 June 2025\n\n" +
		"This is a summary of yesterday's [8pm RIK news broadcast](https://tv.rik.cy/show/eideseis-ton-8/). " +
		"Where available, links to related English-language articles from the Cyprus Mail " +
		"and In-Cyprus are provided for further reading. Please note that this summary was " +
		"generated with the assistance of AI and may contain inaccuracies."
	assert.Equal(t, want, got)
}

func TestGenerate_EveningReference(t *testing.T) {
	g := nicosia(t)
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"same evening", time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC), "this evening's"},
		// 22:30 UTC on June 2 is 01:30 on June 3 in Nicosia.
		{"after midnight before cutoff", time.Date(2025, 6, 2, 22, 30, 0, 0, time.UTC), "this evening's"},
		// 23:30 UTC on June 2 is 02:30 on June 3 in Nicosia.
		{"after cutoff", time.Date(2025, 6, 2, 23, 30, 0, 0, time.UTC), "yesterday's"},
		{"days later", time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), "yesterday's"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, g.Generate(day, "en", tt.now), "This is a summary of "+tt.want+" ")
		})
	}
}

func TestGenerate_Greek(t *testing.T) {
	g := nicosia(t)
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	got := g.Generate(day, "el", time.Date(2025, 6, 2, 19, 0, 0, 0, time.UTC))

	assert.True(t, strings.HasPrefix(got, "## 📰 Περίληψη Ειδήσεων για Δευτέρα, 2 Ιουνίου 2025\n\n"))
	assert.Contains(t, got, "Αυτή είναι μια περίληψη το απογευματινό [δελτίο")

	got = g.Generate(day, "el", time.Date(2025, 6, 4, 19, 0, 0, 0, time.UTC))
	assert.Contains(t, got, "το χθεσινό")
}

func TestGenerate_OtherLanguages(t *testing.T) {
	g := nicosia(t)
	day := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC) // Sunday
	now := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)

	assert.Contains(t, g.Generate(day, "ru", now), "Сводка новостей за воскресенье, 9 марта 2025")
	assert.Contains(t, g.Generate(day, "uk", now), "Зведення новин за неділя, 9 березня 2025")
	assert.Contains(t, g.Generate(day, "he", now), "יום ראשון, 9 במרץ 2025")
	assert.Contains(t, g.Generate(day, "xx", now), "News Summary for Sunday, 09 March 2025")
}

func TestStrip(t *testing.T) {
	assert.Equal(t, "body", Strip("HEAD\n\nbody", "HEAD"))
	assert.Equal(t, "other\n\nbody", Strip("other\n\nbody", "HEAD"))
}

func TestStripFor(t *testing.T) {
	g := nicosia(t)
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	evening := g.Generate(day, "en", time.Date(2025, 6, 2, 19, 0, 0, 0, time.UTC))
	later := g.Generate(day, "en", time.Date(2025, 6, 5, 19, 0, 0, 0, time.UTC))
	require.NotEqual(t, evening, later)

	assert.Equal(t, "body", StripFor(evening+"\n\nbody", day, "en"))
	assert.Equal(t, "body", StripFor(later+"\n\nbody", day, "en"))
	assert.Equal(t, "body", StripFor("body", day, "en"))
}
