// Package manifest tracks the processing stage of each (day, language)
// pair. Artifacts on disk stay authoritative: the stored stage is
// reconciled against them whenever it is read.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/jonathan/news-digest/internal/articles"
)

// FileName is the manifest's name inside the day folder.
const FileName = "manifest.json"

// Stage is the next thing a (day, language) pair needs.
type Stage string

const (
	NeedsTranscript   Stage = "NEEDS_TRANSCRIPT"
	NeedsSummary      Stage = "NEEDS_SUMMARY"
	NeedsLinkedOutput Stage = "NEEDS_LINKED_OUTPUT"
	NeedsCover        Stage = "NEEDS_COVER"
	NeedsPublish      Stage = "NEEDS_PUBLISH"
	Done              Stage = "DONE"
)

var order = []Stage{NeedsTranscript, NeedsSummary, NeedsLinkedOutput, NeedsCover, NeedsPublish, Done}

func (s Stage) rank() int {
	for i, o := range order {
		if o == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool { return s.rank() >= 0 }

// Next returns the stage after s. NEEDS_COVER is skipped when withCover is false.
func (s Stage) Next(withCover bool) Stage {
	r := s.rank()
	if r < 0 || s == Done {
		return Done
	}
	next := order[r+1]
	if next == NeedsCover && !withCover {
		next = NeedsPublish
	}
	return next
}

// Artifacts are the files that evidence each stage's completion.
type Artifacts struct {
	Input               string // transcript, or the source language's summary for translations
	SummaryWithoutLinks string
	Summary             string
	Cover               string // empty when the language has no cover
	Flag                string
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Derive computes the stage from the files on disk. recorded is consulted
// only to know whether a cover was already attempted, since a failed cover
// leaves no file.
func Derive(a Artifacts, recorded Stage) Stage {
	switch {
	case exists(a.Flag):
		return Done
	case exists(a.Summary):
		if a.Cover != "" && !exists(a.Cover) && recorded.rank() <= NeedsCover.rank() {
			return NeedsCover
		}
		return NeedsPublish
	case exists(a.SummaryWithoutLinks):
		return NeedsLinkedOutput
	case exists(a.Input):
		return NeedsSummary
	default:
		return NeedsTranscript
	}
}

// Record is the stored state of one language.
type Record struct {
	Stage     Stage     `json:"stage"`
	UpdatedAt time.Time `json:"updated_at"`
	Error     string    `json:"error,omitempty"`
}

// Manifest is the per-day record, keyed by language code.
type Manifest struct {
	Day       string             `json:"day"`
	Languages map[string]*Record `json:"languages"`

	path string
	now  func() time.Time
}

// Load reads the manifest at path; a missing or unreadable file starts empty.
func Load(path, day string) *Manifest {
	m := &Manifest{Day: day, Languages: map[string]*Record{}, path: path, now: time.Now}

	data, err := os.ReadFile(path)
	if err != nil {
		return m
	}
	var stored Manifest
	if err := json.Unmarshal(data, &stored); err != nil {
		return m
	}
	for lang, rec := range stored.Languages {
		if rec != nil && rec.Stage.Valid() {
			m.Languages[lang] = rec
		}
	}
	return m
}

// Stage returns the stored stage for lang, or NEEDS_TRANSCRIPT.
func (m *Manifest) Stage(lang string) Stage {
	if rec, ok := m.Languages[lang]; ok {
		return rec.Stage
	}
	return NeedsTranscript
}

// Reconcile derives lang's stage from disk, stores it and returns it.
func (m *Manifest) Reconcile(lang string, a Artifacts) Stage {
	stage := Derive(a, m.Stage(lang))
	if rec, ok := m.Languages[lang]; !ok || rec.Stage != stage {
		m.Set(lang, stage, "")
	}
	return stage
}

// Set records stage for lang and clears or stores the error text.
func (m *Manifest) Set(lang string, stage Stage, errText string) {
	m.Languages[lang] = &Record{Stage: stage, UpdatedAt: m.now().UTC(), Error: errText}
}

// Fail keeps lang's stage and stores err.
func (m *Manifest) Fail(lang string, err error) {
	m.Set(lang, m.Stage(lang), err.Error())
}

// Langs lists the recorded languages in sorted order.
func (m *Manifest) Langs() []string {
	out := make([]string, 0, len(m.Languages))
	for lang := range m.Languages {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Save writes the manifest atomically.
func (m *Manifest) Save() error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := articles.WriteFileAtomic(m.path, data); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
