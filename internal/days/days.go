// Package days resolves broadcast days and the per-day folder layout.
package days

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "time/tzdata"
)

// Format is the canonical day spelling used in folder names and CLI arguments.
const Format = "2006-01-02"

// DefaultTimezone is the broadcaster's timezone.
const DefaultTimezone = "Asia/Nicosia"

// Parse reads a YYYY-MM-DD day as a civil date (midnight UTC).
func Parse(value string) (time.Time, error) {
	day, err := time.Parse(Format, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD (e.g. 2025-06-01): %w", value, err)
	}
	return day, nil
}

// Civil returns the calendar date of t, as read in t's own location, at midnight UTC.
func Civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Default returns yesterday's date as seen in loc at now. Hours before
// cutoffHour still count as the previous calendar day, so a run that slips
// past midnight picks the same day it would have picked before midnight.
func Default(now time.Time, loc *time.Location, cutoffHour int) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	today := Civil(now.In(loc))
	if now.In(loc).Hour() < cutoffHour {
		today = today.AddDate(0, 0, -1)
	}
	return today.AddDate(0, 0, -1)
}

// LoadLocation loads a timezone by name, defaulting to DefaultTimezone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	return time.LoadLocation(name)
}

// Layout maps a day onto <root>/<YYYY-MM-DD>/{media,txt}.
type Layout struct {
	Root string
}

// DayDir is the folder holding everything produced for day.
func (l Layout) DayDir(day time.Time) string {
	return filepath.Join(l.Root, day.Format(Format))
}

// MediaDir holds the downloaded video, audio and segments.
func (l Layout) MediaDir(day time.Time) string {
	return filepath.Join(l.DayDir(day), "media")
}

// TextDir holds transcripts, summaries and the cover.
func (l Layout) TextDir(day time.Time) string {
	return filepath.Join(l.DayDir(day), "txt")
}

// TextFile returns the path of name inside TextDir.
func (l Layout) TextFile(day time.Time, name string) string {
	return filepath.Join(l.TextDir(day), name)
}

// MediaFile returns the path of name inside MediaDir.
func (l Layout) MediaFile(day time.Time, name string) string {
	return filepath.Join(l.MediaDir(day), name)
}

// MakeFolders creates the day, media and text folders.
func (l Layout) MakeFolders(day time.Time) error {
	for _, dir := range []string{l.DayDir(day), l.MediaDir(day), l.TextDir(day)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
