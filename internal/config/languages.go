package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonathan/news-digest/internal/schemas"
	"github.com/jonathan/news-digest/internal/types"
)

// Summary sources
const (
	SourceTranscript    = "transcript"
	SourceNative        = "summarize_native"
	translateFromPrefix = "translate_from:"
)

// Language configures one digest language.
type Language struct {
	Enabled                     bool                  `json:"enabled"`
	SummarySource               string                `json:"summary_source" validate:"required"`
	SummaryFilename             string                `json:"summary_filename" validate:"required"`
	SummaryWithoutLinksFilename string                `json:"summary_without_links_filename" validate:"required"`
	FlagFilename                string                `json:"flag_filename" validate:"required"`
	SubstackURL                 string                `json:"substack_url" validate:"omitempty,url"`
	SubstackSessionFile         string                `json:"substack_session_file"`
	ArticleSources              []types.ArticleSource `json:"article_sources,omitempty" validate:"dive"`
}

// IsTranscript reports whether the language is summarized from the transcript.
func (l *Language) IsTranscript() bool { return l.SummarySource == SourceTranscript }

// IsNative reports whether the language summarizes the transcript in its own language.
func (l *Language) IsNative() bool { return l.SummarySource == SourceNative }

// IsTranslation reports whether the language is translated from another one.
func (l *Language) IsTranslation() bool {
	return strings.HasPrefix(l.SummarySource, translateFromPrefix)
}

// SourceLanguage parses "translate_from:en" to "en"; other sources yield "".
func (l *Language) SourceLanguage() string {
	src, ok := strings.CutPrefix(l.SummarySource, translateFromPrefix)
	if !ok {
		return ""
	}
	return src
}

// Languages maps a language code to its configuration.
type Languages map[string]*Language

// LoadLanguages reads, schema-checks and validates a languages file.
func LoadLanguages(path string) (Languages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read languages file %s: %w", path, err)
	}
	return ParseLanguages(data)
}

// ParseLanguages validates raw languages JSON.
func ParseLanguages(data []byte) (Languages, error) {
	if err := schemas.Validate(schemas.Languages, data); err != nil {
		return nil, &ValidationError{Field: "languages", Message: "schema check failed", Cause: err}
	}

	var langs Languages
	if err := json.Unmarshal(data, &langs); err != nil {
		return nil, fmt.Errorf("failed to parse languages JSON: %w", err)
	}
	if err := langs.Validate(); err != nil {
		return nil, err
	}
	return langs, nil
}

// Validate applies struct tags and cross-language checks.
func (ls Languages) Validate() error {
	for _, code := range ls.codes() {
		lc := ls[code]
		if err := validate.Struct(lc); err != nil {
			return &ValidationError{Field: code, Message: "invalid language", Cause: err}
		}
		if !lc.Enabled || !lc.IsTranslation() {
			continue
		}
		src := lc.SourceLanguage()
		if src == code {
			return &ValidationError{Field: code, Message: "cannot translate from itself"}
		}
		source, ok := ls[src]
		if !ok || !source.Enabled {
			return &ValidationError{Field: code, Message: fmt.Sprintf("translation source %q is not an enabled language", src)}
		}
		if source.IsTranslation() {
			return &ValidationError{Field: code, Message: fmt.Sprintf("translation source %q is itself a translation", src)}
		}
	}
	return nil
}

func (ls Languages) codes() []string {
	out := make([]string, 0, len(ls))
	for code := range ls {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func (ls Languages) filter(keep func(*Language) bool) []string {
	var out []string
	for _, code := range ls.codes() {
		if lc := ls[code]; lc.Enabled && keep(lc) {
			out = append(out, code)
		}
	}
	return out
}

// Enabled lists enabled language codes, sorted.
func (ls Languages) Enabled() []string {
	return ls.filter(func(*Language) bool { return true })
}

// TranscriptLanguages lists enabled languages summarized from the transcript.
func (ls Languages) TranscriptLanguages() []string {
	return ls.filter((*Language).IsTranscript)
}

// NativeSummaryLanguages lists enabled languages with summary_source summarize_native.
func (ls Languages) NativeSummaryLanguages() []string {
	return ls.filter((*Language).IsNative)
}

// TranslationLanguages lists enabled languages derived by translation.
func (ls Languages) TranslationLanguages() []string {
	return ls.filter((*Language).IsTranslation)
}

// Ordered lists enabled languages so translation sources come first.
func (ls Languages) Ordered() []string {
	out := ls.TranscriptLanguages()
	out = append(out, ls.NativeSummaryLanguages()...)
	return append(out, ls.TranslationLanguages()...)
}

// Restrict keeps only the listed codes; an empty list keeps everything.
// Sources of kept translations stay loaded but are disabled so they are not
// processed on their own.
func (ls Languages) Restrict(codes []string) (Languages, error) {
	if len(codes) == 0 {
		return ls, nil
	}
	out := Languages{}
	for _, code := range codes {
		lc, ok := ls[code]
		if !ok {
			return nil, fmt.Errorf("unknown language %q", code)
		}
		copied := *lc
		out[code] = &copied
	}
	for _, code := range codes {
		if src := out[code].SourceLanguage(); src != "" {
			if _, ok := out[src]; !ok {
				if lc, ok := ls[src]; ok {
					copied := *lc
					copied.Enabled = false
					out[src] = &copied
				}
			}
		}
	}
	return out, nil
}

// ResolvePaths makes relative article files absolute under dataRoot and
// relative session files absolute under baseDir.
func (ls Languages) ResolvePaths(dataRoot, baseDir string) {
	for _, lc := range ls {
		for i := range lc.ArticleSources {
			if f := lc.ArticleSources[i].File; f != "" && !filepath.IsAbs(f) {
				lc.ArticleSources[i].File = filepath.Join(dataRoot, f)
			}
		}
		if f := lc.SubstackSessionFile; f != "" && !filepath.IsAbs(f) {
			lc.SubstackSessionFile = filepath.Join(baseDir, f)
		}
	}
}

// AllSources returns every enabled language's article sources, deduplicated
// by file.
func (ls Languages) AllSources() []types.ArticleSource {
	seen := map[string]bool{}
	var out []types.ArticleSource
	for _, code := range ls.Enabled() {
		for _, src := range ls[code].ArticleSources {
			if seen[src.File] {
				continue
			}
			seen[src.File] = true
			out = append(out, src)
		}
	}
	return out
}
