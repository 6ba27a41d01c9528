package prompts

import (
	"fmt"
	"time"
)

// Placeholder names used inside digest prompts.
const (
	KeyDate            = "Date"
	KeyPreviousSummary = "PreviousSummary"
	KeyTagExamples     = "TagExamples"
)

const (
	translateFile     = "translate.json"
	translateFallback = "default"
	defaultDigestLang = "en"
)

// Set is the group of prompts one digest run needs. FollowupChunkSystem still
// carries the {{.PreviousSummary}} placeholder and Link the {{.TagExamples}}
// placeholder; the summarizer and linker fill them per call.
type Set struct {
	User                string
	FirstChunkSystem    string
	FollowupChunkSystem string
	HeadlineSystem      string
	Deduplication       string
	Link                string
}

// DigestFile returns the embedded prompt file used for lang, falling back to English.
func DigestFile(lang string) string {
	name := fmt.Sprintf("digest_%s.json", lang)
	if Exists(name) {
		return name
	}
	return fmt.Sprintf("digest_%s.json", defaultDigestLang)
}

// LoadSet loads the digest prompts for lang with the user prompt dated for day.
func LoadSet(lang string, day time.Time) (Set, error) {
	file := DigestFile(lang)

	keys := []string{"user", "first_chunk_system", "followup_chunk_system", "headline_system", "deduplication", "link"}
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		v, err := Get(file, key)
		if err != nil {
			return Set{}, err
		}
		values[key] = v
	}

	return Set{
		User:                Format(values["user"], map[string]string{KeyDate: day.Format("Monday, 02 January 2006")}),
		FirstChunkSystem:    values["first_chunk_system"],
		FollowupChunkSystem: values["followup_chunk_system"],
		HeadlineSystem:      values["headline_system"],
		Deduplication:       values["deduplication"],
		Link:                values["link"],
	}, nil
}

// TranslatePrompt returns the translation system prompt for lang, or the
// generic one when no language-specific prompt exists.
func TranslatePrompt(lang string) (string, error) {
	if p, err := Get(translateFile, lang); err == nil {
		return p, nil
	}
	return Get(translateFile, translateFallback)
}
