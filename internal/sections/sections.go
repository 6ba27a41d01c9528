// Package sections parses, merges and splits the "### Section" / bullet markdown
// the summarizer produces.
package sections

import (
	"strings"
)

const headerPrefix = "### "

// Section is a named bullet list.
type Section struct {
	Name    string
	Bullets []string
}

// CanonicalOrder is the preferred order of sections in a digest.
var CanonicalOrder = []string{
	"Top stories",
	"Public Health & Safety",
	"Energy & Infrastructure",
	"Crime & Justice",
	"Government & Politics",
	"Cyprus Problem",
	"Foreign Affairs",
	"Education",
	"Culture",
}

// IsBullet reports whether line is a "- " or "• " bullet.
func IsBullet(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "• ")
}

// Parse reads markdown into sections in first-seen order. Bullets are trimmed.
// Lines before the first header are dropped; a repeated header continues the
// earlier section.
func Parse(text string) []Section {
	var out []Section
	index := map[string]int{}
	current := -1

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		switch {
		case strings.HasPrefix(line, headerPrefix):
			name := strings.TrimSpace(strings.TrimPrefix(line, headerPrefix))
			idx, ok := index[name]
			if !ok {
				idx = len(out)
				index[name] = idx
				out = append(out, Section{Name: name})
			}
			current = idx
		case IsBullet(line):
			if current >= 0 {
				out[current].Bullets = append(out[current].Bullets, strings.TrimSpace(line))
			}
		}
	}
	return out
}

// Render writes sections as "### name\n<bullets>\n\n" blocks, skipping empty ones.
func Render(secs []Section) string {
	var sb strings.Builder
	for _, s := range secs {
		if len(s.Bullets) == 0 {
			continue
		}
		sb.WriteString(headerPrefix)
		sb.WriteString(s.Name)
		sb.WriteString("\n")
		sb.WriteString(strings.Join(s.Bullets, "\n"))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// BulletCount returns the total number of bullets across sections.
func BulletCount(secs []Section) int {
	n := 0
	for _, s := range secs {
		n += len(s.Bullets)
	}
	return n
}

func dedupe(lines []string) []string {
	seen := make(map[string]bool, len(lines))
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
