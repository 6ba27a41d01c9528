// Package media downloads the broadcast video and cuts its audio into
// segments small enough for speech-to-text.
package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/news-digest/internal/fetch"
	"github.com/jonathan/news-digest/internal/logging"
)

const (
	// DefaultVideoBaseURL is where the broadcaster publishes the 8pm news.
	DefaultVideoBaseURL = "http://v6.cloudskep.com/rikvod/idisisstisokto/"
	// SegmentPrefix names the numbered audio segments, e.g. split_audio000.mp3.
	SegmentPrefix = "split_audio"
	// DefaultSegmentLength is the duration of each audio segment.
	DefaultSegmentLength = "00:03:00"

	VideoFile = "video.mp4"
	AudioFile = "audio.mp3"
	// SegmentsDoneFile is written once every segment is on disk.
	SegmentsDoneFile = "segments.done"

	datePlaceholder = "{date}"
)

// DefaultVideoTemplates are tried in order; the broadcaster is inconsistent
// about file names.
var DefaultVideoTemplates = []string{
	"8news{date}.mp4",
	"8news{date}02.mp4",
	"8news_{date}.mp4",
}

// MediaError represents a failed download or conversion
type MediaError struct {
	Message string
	Cause   error
}

func (e *MediaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("media error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("media error: %s", e.Message)
}

func (e *MediaError) Unwrap() error {
	return e.Cause
}

// VideoURLs expands the templates for day into download URLs.
func VideoURLs(baseURL string, templates []string, day time.Time) []string {
	if baseURL == "" {
		baseURL = DefaultVideoBaseURL
	}
	if len(templates) == 0 {
		templates = DefaultVideoTemplates
	}
	stamp := day.Format("020106")

	urls := make([]string, 0, len(templates))
	for _, tpl := range templates {
		name := strings.ReplaceAll(tpl, datePlaceholder, stamp)
		urls = append(urls, strings.TrimRight(baseURL, "/")+"/"+name+"?attachment=true")
	}
	return urls
}

// Runner executes an external command.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec and reports their output on failure.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		tail := string(out)
		if len(tail) > 2000 {
			tail = tail[len(tail)-2000:]
		}
		return fmt.Errorf("%s failed: %w\n%s", name, err, tail)
	}
	return nil
}

// Processor downloads and converts media for one day.
type Processor struct {
	Download      func(ctx context.Context, url, dest string) (int64, error)
	Runner        Runner
	SegmentLength string
	Logger        *slog.Logger
}

// NewProcessor returns a Processor using HTTP downloads and the ffmpeg binary.
func NewProcessor(logger *slog.Logger) *Processor {
	return &Processor{
		Download: func(ctx context.Context, url, dest string) (int64, error) {
			return fetch.Download(ctx, url, dest, nil)
		},
		Runner:        ExecRunner{},
		SegmentLength: DefaultSegmentLength,
		Logger:        logging.OrDiscard(logger),
	}
}

// FetchVideo downloads the first URL that succeeds into dest.
func (p *Processor) FetchVideo(ctx context.Context, urls []string, dest string) error {
	var lastErr error
	for _, u := range urls {
		p.Logger.Info("downloading video", "url", u, "dest", dest)
		n, err := p.Download(ctx, u, dest)
		if err == nil {
			p.Logger.Info("video downloaded", "bytes", n)
			return nil
		}
		p.Logger.Warn("video download failed", "url", u, "error", err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return &MediaError{Message: "no video URL could be downloaded", Cause: lastErr}
}

// ExtractAudio writes the full audio track to audio and the numbered
// segments next to it using segmentPrefix, then marks the split complete.
func (p *Processor) ExtractAudio(ctx context.Context, video, audio, segmentPrefix string) error {
	length := p.SegmentLength
	if length == "" {
		length = DefaultSegmentLength
	}

	p.Logger.Info("extracting audio", "video", video, "audio", audio)
	if err := p.Runner.Run(ctx, "ffmpeg", "-y", "-i", video, "-vn",
		"-codec:a", "libmp3lame", "-qscale:a", "4",
		audio,
	); err != nil {
		return &MediaError{Message: "audio extraction failed", Cause: err}
	}

	p.Logger.Info("splitting audio", "segment", length)
	if err := p.Runner.Run(ctx, "ffmpeg", "-y", "-i", video, "-vn",
		"-segment_time", length, "-f", "segment",
		"-reset_timestamps", "1", "-codec:a", "libmp3lame", "-qscale:a", "4",
		segmentPrefix+"%03d.mp3",
	); err != nil {
		return &MediaError{Message: "audio segmentation failed", Cause: err}
	}

	done := filepath.Join(filepath.Dir(segmentPrefix), SegmentsDoneFile)
	if err := os.WriteFile(done, []byte(length+"\n"), 0644); err != nil {
		return &MediaError{Message: "failed to mark segmentation complete", Cause: err}
	}
	return nil
}

// SegmentsComplete reports whether dir holds a finished split. Segments left
// by an interrupted run do not count.
func SegmentsComplete(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, SegmentsDoneFile))
	return err == nil
}

// Segments lists the consecutive segment files in dir, starting at 000 and
// stopping at the first gap.
func Segments(dir string) []string {
	var out []string
	for i := 0; ; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%s%03d.mp3", SegmentPrefix, i))
		if _, err := os.Stat(path); err != nil {
			break
		}
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
