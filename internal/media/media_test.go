package media

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

func TestVideoURLs(t *testing.T) {
	day := time.Date(2025, 6, 28, 0, 0, 0, 0, time.UTC)

	got := VideoURLs("", nil, day)

	assert.Equal(t, []string{
		"http://v6.cloudskep.com/rikvod/idisisstisokto/8news280625.mp4?attachment=true",
		"http://v6.cloudskep.com/rikvod/idisisstisokto/8news28062502.mp4?attachment=true",
		"http://v6.cloudskep.com/rikvod/idisisstisokto/8news_280625.mp4?attachment=true",
	}, got)
}

func TestFetchVideo_FallsBack(t *testing.T) {
	var tried []string
	p := NewProcessor(nil)
	p.Download = func(_ context.Context, url, _ string) (int64, error) {
		tried = append(tried, url)
		if url == "b" {
			return 10, nil
		}
		return 0, errors.New("404")
	}

	require.NoError(t, p.FetchVideo(context.Background(), []string{"a", "b", "c"}, "dest"))
	assert.Equal(t, []string{"a", "b"}, tried)
}

func TestFetchVideo_AllFail(t *testing.T) {
	p := NewProcessor(nil)
	p.Download = func(context.Context, string, string) (int64, error) {
		return 0, errors.New("404")
	}

	err := p.FetchVideo(context.Background(), []string{"a", "b"}, "dest")
	var me *MediaError
	require.ErrorAs(t, err, &me)
	assert.ErrorContains(t, err, "404")
}

type recordingRunner struct {
	calls [][]string
	err   error
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.err
}

func TestExtractAudio(t *testing.T) {
	runner := &recordingRunner{}
	p := NewProcessor(nil)
	p.Runner = runner

	dir := t.TempDir()
	prefix := filepath.Join(dir, SegmentPrefix)
	assert.False(t, SegmentsComplete(dir))

	require.NoError(t, p.ExtractAudio(context.Background(), "v.mp4", "a.mp3", prefix))

	require.Len(t, runner.calls, 2)
	assert.Equal(t, "ffmpeg", runner.calls[0][0])
	assert.Equal(t, "a.mp3", runner.calls[0][len(runner.calls[0])-1])
	assert.Contains(t, runner.calls[1], "00:03:00")
	assert.Equal(t, prefix+"%03d.mp3", runner.calls[1][len(runner.calls[1])-1])
	assert.True(t, SegmentsComplete(dir))
}

// failOnCall fails the nth ffmpeg invocation (1-based).
type failOnCall struct {
	n     int
	calls int
}

func (r *failOnCall) Run(context.Context, string, ...string) error {
	r.calls++
	if r.calls == r.n {
		return errors.New("signal: killed")
	}
	return nil
}

func TestExtractAudio_InterruptedSplitIsNotComplete(t *testing.T) {
	dir := t.TempDir()
	// the full track and a first segment are already on disk
	require.NoError(t, os.WriteFile(filepath.Join(dir, AudioFile), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, SegmentPrefix+"000.mp3"), []byte("x"), 0644))

	p := NewProcessor(nil)
	p.Runner = &failOnCall{n: 2}

	err := p.ExtractAudio(context.Background(), "v.mp4", filepath.Join(dir, AudioFile), filepath.Join(dir, SegmentPrefix))
	assert.ErrorContains(t, err, "audio segmentation failed")
	assert.False(t, SegmentsComplete(dir))
}

func TestExtractAudio_Failure(t *testing.T) {
	p := NewProcessor(nil)
	p.Runner = &recordingRunner{err: errors.New("exit status 1")}

	err := p.ExtractAudio(context.Background(), "v.mp4", "a.mp3", "split_audio")
	assert.ErrorContains(t, err, "audio extraction failed")
}

func TestSegments(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"split_audio000.mp3", "split_audio001.mp3", "split_audio003.mp3", "audio.mp3"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	got := Segments(dir)
	assert.Equal(t, []string{
		filepath.Join(dir, "split_audio000.mp3"),
		filepath.Join(dir, "split_audio001.mp3"),
	}, got)
	assert.Empty(t, Segments(t.TempDir()))
}
