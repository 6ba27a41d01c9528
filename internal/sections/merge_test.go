package sections

import (
	"bytes"
	"testing"

	"github.com/jonathan/news-digest/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	text := "preamble\n- orphan\n### Culture\n-  a \n• b\nnot a bullet\n### Education\n- c\n### Culture\n- d"
	got := Parse(text)

	require.Len(t, got, 2)
	assert.Equal(t, "Culture", got[0].Name)
	assert.Equal(t, []string{"-  a", "• b", "- d"}, got[0].Bullets)
	assert.Equal(t, "Education", got[1].Name)
	assert.Equal(t, []string{"- c"}, got[1].Bullets)
}

func TestMerge_DedupesExactBullets(t *testing.T) {
	a := "### Culture\n- foo"
	assert.Equal(t, "### Culture\n- foo\n\n", Merge([]string{a, a}, nil))
}

func TestMerge_CanonicalOrder(t *testing.T) {
	partials := []string{
		"### Culture\n- festival",
		"### Top stories\n- budget passed\n### Education\n- exams",
		"### Culture\n- concert",
	}

	want := "### Top stories\n- budget passed\n\n" +
		"### Education\n- exams\n\n" +
		"### Culture\n- festival\n- concert\n\n"
	assert.Equal(t, want, Merge(partials, nil))
}

func TestMerge_UnknownSectionsAppendedAndLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New("info", &buf)

	partials := []string{
		"### Sports\n- derby",
		"### Weather\n- rain\n### Culture\n- play",
		"### Sports\n- derby\n- final",
	}
	got := Merge(partials, logger)

	want := "### Culture\n- play\n\n" +
		"### Sports\n- derby\n- final\n\n" +
		"### Weather\n- rain\n\n"
	assert.Equal(t, want, got)
	assert.Contains(t, buf.String(), "unexpected section")
	assert.Contains(t, buf.String(), "Sports")
	assert.Contains(t, buf.String(), "Weather")
}

func TestMerge_DropsEmptySections(t *testing.T) {
	got := Merge([]string{"### Culture\nno bullets here\n### Education\n- exams"}, nil)
	assert.Equal(t, "### Education\n- exams\n\n", got)
}

func TestMerge_Idempotent(t *testing.T) {
	partials := []string{
		"### Crime & Justice\n- arrest\n### Top stories\n- storm",
		"### Top stories\n- storm\n- strike\n### Other\n- misc",
	}
	once := Merge(partials, nil)
	twice := Merge([]string{once}, nil)
	assert.Equal(t, once, twice)
}

func TestMerge_Empty(t *testing.T) {
	assert.Equal(t, "", Merge(nil, nil))
	assert.Equal(t, "", Merge([]string{"", "   "}, nil))
}

func TestValidate(t *testing.T) {
	before := "### Culture\n- a\n- b\n- c\n- d\n### Education\n- e"

	tests := []struct {
		name  string
		after string
		count int
	}{
		{"unchanged", before, 0},
		{"one bullet merged", "### Culture\n- a\n- b\n- c\n### Education\n- e", 0},
		{"section lost", "### Culture\n- a\n- b\n- c\n- d", 1},
		{"bullets halved", "### Culture\n- a\n### Education\n- e", 1},
		{"no sections", "plain prose", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Validate(before, tt.after), tt.count)
		})
	}
}
