// Package cover generates the daily cover illustration from the digest's
// top stories.
package cover

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jonathan/news-digest/internal/logging"
)

const (
	FileName     = "cover.png"
	DefaultModel = "gpt-image-1"
	DefaultSize  = "1536x1024"

	StyleSeed = "Clean flat-vector editorial collage, minimalist geometric shapes, muted teal/amber palette, " +
		"soft paper grain, gentle halftone, thick outlines, NO photorealism, NO text, high contrast, " +
		"modern newspaper illustration, consistent visual language across days."

	fallbackThemes = "Cyprus daily news topics"
	maxThemes      = 4
)

var bulletBlockRe = regexp.MustCompile(`(?:^|\n)(?:- |\* |• ).+(?:\n(?:- |\* |• ).+)*`)

// ImageGenerator produces encoded image bytes. *llm.OpenAIClient satisfies it.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, model, size string) ([]byte, error)
}

// Options tunes the generated prompt and image.
type Options struct {
	Model       string
	Size        string
	AllowFaces  bool
	LeadSubject string
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{Model: DefaultModel, Size: DefaultSize, AllowFaces: true}
}

// TopStories returns the first bullet block of the digest, or the second
// paragraph when there are no bullets.
func TopStories(markdown string) string {
	if m := bulletBlockRe.FindString(markdown); m != "" {
		return strings.TrimSpace(m)
	}

	var parts []string
	for _, p := range strings.Split(markdown, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) >= 2 {
		return parts[1]
	}
	return ""
}

func themeLines(block string) []string {
	var out []string
	for _, ln := range strings.Split(block, "\n") {
		ln = strings.TrimSpace(strings.Trim(ln, "-•* "))
		if ln != "" {
			out = append(out, ln)
		}
	}
	return out
}

// LeadSubject is the first line of the top stories block.
func LeadSubject(block string) string {
	lines := themeLines(block)
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

// BuildPrompt assembles the image prompt.
func BuildPrompt(day time.Time, topStories, leadSubject string, allowFaces bool) string {
	themes := themeLines(topStories)
	if len(themes) > maxThemes {
		themes = themes[:maxThemes]
	}
	themeText := fallbackThemes
	if len(themes) > 0 {
		themeText = strings.Join(themes, "; ")
	}

	faces := "Avoid faces; use silhouettes, hands, emblems, buildings, or symbolic objects instead. "
	if allowFaces {
		faces = "If depicting people, use stylized caricature (exaggerated but respectful), avoid likeness-level realism. "
	}

	subject := ""
	if leadSubject != "" {
		subject = fmt.Sprintf("Lead subject: %s. ", leadSubject)
	}

	return fmt.Sprintf(
		"Create a non-photorealistic, flat-vector editorial illustration for a Cyprus news digest dated %s. "+
			"%sFocus on 1-3 symbolic elements matching: %s. "+
			"%s"+
			"Center composition, simple geometric forms, limited palette, subtle gradients. "+
			"Aspect ratio 1200:628. %s",
		day.Format("Monday, 02 January 2006"), subject, themeText, faces, StyleSeed,
	)
}

// Generate writes cover.png into dir and returns its path. Failures are
// logged and reported as an empty path; the digest is usable without a cover.
func Generate(ctx context.Context, gen ImageGenerator, day time.Time, markdown, dir string, opts Options, logger *slog.Logger) string {
	logger = logging.OrDiscard(logger)
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Size == "" {
		opts.Size = DefaultSize
	}

	top := TopStories(markdown)
	if top == "" {
		logger.Warn("could not extract top stories, skipping cover")
		return ""
	}
	lead := opts.LeadSubject
	if lead == "" {
		lead = LeadSubject(top)
	}

	prompt := BuildPrompt(day, top, lead, opts.AllowFaces)
	logger.Debug("generating cover", "prompt", prompt)

	img, err := gen.GenerateImage(ctx, prompt, opts.Model, opts.Size)
	if err != nil {
		logger.Warn("image generation failed", "error", err)
		return ""
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Warn("could not create cover directory", "dir", dir, "error", err)
		return ""
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, img, 0644); err != nil {
		logger.Warn("could not write cover", "path", path, "error", err)
		return ""
	}
	logger.Info("cover generated", "path", path)
	return path
}
