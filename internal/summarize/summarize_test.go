package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/news-digest/internal/llm"
	"github.com/jonathan/news-digest/internal/llm/llmtest"
	"github.com/jonathan/news-digest/internal/prompts"
	"github.com/jonathan/news-digest/internal/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrompts() prompts.Set {
	return prompts.Set{
		User:                "user prompt",
		FirstChunkSystem:    "first",
		FollowupChunkSystem: "follow:{{.PreviousSummary}}",
		HeadlineSystem:      "headlines",
		Deduplication:       "dedupe",
		Link:                "link {{.TagExamples}}",
	}
}

type sleepRecorder struct {
	calls []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.calls = append(r.calls, d)
	return nil
}

func newTestSummarizer(client llm.Client, maxTokens int, rec *sleepRecorder) *Summarizer {
	opts := DefaultOptions()
	opts.MaxChunkTokens = maxTokens
	opts.Sleeper = rec.sleep
	return New(client, testPrompts(), tokens.Words, opts, nil)
}

func TestSummarize_SingleChunk(t *testing.T) {
	client := llmtest.New(
		"### Top stories\n- storm hits",
		"### Culture\n- festival opens",
	)
	rec := &sleepRecorder{}

	merged, usage, err := newTestSummarizer(client, 100, rec).Summarize(context.Background(), "one short paragraph")
	require.NoError(t, err)

	assert.Equal(t, "### Top stories\n- storm hits\n\n### Culture\n- festival opens\n\n", merged)
	assert.Equal(t, 2, client.Calls())
	assert.Equal(t, int64(30), usage.Total())
	assert.Empty(t, rec.calls)

	headline := client.Requests[0]
	require.Len(t, headline.Messages, 3)
	assert.Equal(t, llm.System("headlines"), headline.Messages[0])
	assert.Equal(t, llm.User("user prompt"), headline.Messages[1])
	assert.Equal(t, llm.User("one short paragraph"), headline.Messages[2])
	assert.Equal(t, 0.0, headline.Temperature)

	first := client.Requests[1]
	assert.Equal(t, llm.System("first"), first.Messages[0])
	assert.Equal(t, llm.User("one short paragraph"), first.Messages[2])
}

func TestSummarize_MultipleChunksCarryContext(t *testing.T) {
	client := &llmtest.FakeClient{
		UsagePerCall: llm.Usage{PromptTokens: 7, CompletionTokens: 3},
		Respond: func(req llm.ChatRequest) (string, error) {
			system := req.Messages[0].Content
			payload := req.Messages[2].Content
			switch {
			case system == "headlines":
				return "### Top stories\n- lead", nil
			case strings.HasSuffix(payload, "g h i"):
				return "### Education\n- third", nil
			case strings.HasSuffix(payload, "d e f"):
				return "### Culture\n- second", nil
			default:
				return "### Culture\n- first", nil
			}
		},
	}
	rec := &sleepRecorder{}

	merged, usage, err := newTestSummarizer(client, 4, rec).Summarize(context.Background(), "a b c\n\nd e f\n\ng h i")
	require.NoError(t, err)

	require.Equal(t, 4, client.Calls())
	assert.Equal(t, int64(40), usage.Total())
	assert.Equal(t, []time.Duration{DefaultChunkSleep, DefaultChunkSleep}, rec.calls)

	second := client.Requests[2]
	assert.Equal(t, "follow:### Culture\n- first", second.Messages[0].Content)
	assert.Equal(t, "a b c d e f", second.Messages[2].Content)

	third := client.Requests[3]
	assert.Equal(t, "follow:### Culture\n- first### Culture\n- second", third.Messages[0].Content)
	assert.Equal(t, "d e f g h i", third.Messages[2].Content)

	want := "### Top stories\n- lead\n\n" +
		"### Education\n- third\n\n" +
		"### Culture\n- first\n- second\n\n"
	assert.Equal(t, want, merged)
}

func TestSummarize_HeadlinesAreCapped(t *testing.T) {
	var bullets []string
	for i := 0; i < 15; i++ {
		bullets = append(bullets, fmt.Sprintf("- story %d", i))
	}
	client := llmtest.New("### Top stories\n"+strings.Join(bullets, "\n"), "### Culture\n- x")

	merged, _, err := newTestSummarizer(client, 100, &sleepRecorder{}).Summarize(context.Background(), "text")
	require.NoError(t, err)

	assert.Contains(t, merged, "- story 9\n")
	assert.NotContains(t, merged, "- story 10")
}

func TestSummarize_EmptyTranscript(t *testing.T) {
	client := llmtest.New()

	_, _, err := newTestSummarizer(client, 100, &sleepRecorder{}).Summarize(context.Background(), "  \n\n ")

	var se *SummaryError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "chunk", se.Step)
	assert.Zero(t, client.Calls())
}

func TestSummarize_PropagatesModelError(t *testing.T) {
	boom := errors.New("rate limited")
	client := &llmtest.FakeClient{
		Respond: func(req llm.ChatRequest) (string, error) {
			if strings.HasPrefix(req.Messages[0].Content, "follow:") {
				return "", boom
			}
			return "### Culture\n- ok", nil
		},
	}

	_, _, err := newTestSummarizer(client, 4, &sleepRecorder{}).Summarize(context.Background(), "a b c\n\nd e f")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, client.Calls())
}

func TestSummarize_SleepHonoursCancellation(t *testing.T) {
	client := llmtest.New("### Top stories\n- a", "### Culture\n- b", "### Culture\n- c")
	opts := DefaultOptions()
	opts.MaxChunkTokens = 4
	opts.ChunkSleep = time.Hour
	s := New(client, testPrompts(), tokens.Words, opts, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := s.Summarize(ctx, "a b c\n\nd e f")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, client.Calls())
}

func TestLimitHeadlines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{
			name: "under cap",
			in:   "### Top stories\n- a\n- b",
			max:  10,
			want: "### Top stories\n- a\n- b",
		},
		{
			name: "over cap",
			in:   "### Top stories\n- a\n- b\n- c",
			max:  2,
			want: "### Top stories\n- a\n- b",
		},
		{
			name: "mixed bullet styles count together",
			in:   "### Top stories\n• a\n- b\n• c",
			max:  2,
			want: "### Top stories\n• a\n- b",
		},
		{
			name: "trims surrounding whitespace",
			in:   "\n\n### Top stories\n- a\n\n",
			max:  10,
			want: "### Top stories\n- a",
		},
		{
			name: "zero cap uses default",
			in:   "- 1\n- 2\n- 3\n- 4\n- 5\n- 6\n- 7\n- 8\n- 9\n- 10\n- 11",
			max:  0,
			want: "- 1\n- 2\n- 3\n- 4\n- 5\n- 6\n- 7\n- 8\n- 9\n- 10",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LimitHeadlines(tt.in, tt.max))
		})
	}
}

func TestCleanup(t *testing.T) {
	client := llmtest.New("```markdown\n### Culture\n- merged\n```")

	out, usage, err := Cleanup(context.Background(), client, llm.TierStandard, "dedupe", "### Culture\n- a\n- a again", nil)
	require.NoError(t, err)

	assert.Equal(t, "### Culture\n- merged", out)
	assert.Equal(t, int64(15), usage.Total())

	req := client.Requests[0]
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.RoleUser, req.Messages[0].Role)
	assert.Equal(t, "dedupe\n\nSUMMARY:\n### Culture\n- a\n- a again\n", req.Messages[0].Content)
	assert.Equal(t, 0.2, req.Temperature)
}

func TestCleanup_Error(t *testing.T) {
	client := llmtest.New()

	_, _, err := Cleanup(context.Background(), client, llm.TierStandard, "dedupe", "x", nil)

	var se *SummaryError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "cleanup", se.Step)
}
