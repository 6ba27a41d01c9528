// Package linking attaches source-tagged article links to digest bullets.
package linking

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/news-digest/internal/types"
)

// DefaultSources are used for tag examples when a language lists no sources.
var DefaultSources = []types.ArticleSource{
	{Name: "Cyprus Mail", Tag: "CM"},
	{Name: "In-Cyprus", Tag: "IC"},
}

func orDefault(sources []types.ArticleSource) []types.ArticleSource {
	if len(sources) == 0 {
		return DefaultSources
	}
	return sources
}

func uniqueTags(sources []types.ArticleSource) []types.ArticleSource {
	seen := map[string]bool{}
	var out []types.ArticleSource
	for _, s := range sources {
		if seen[s.Tag] {
			continue
		}
		seen[s.Tag] = true
		out = append(out, s)
	}
	return out
}

// BuildTagExamples renders one "- [(TAG)](url) for NAME" line per unique tag.
// The first source carrying a tag names it.
func BuildTagExamples(sources []types.ArticleSource) string {
	var lines []string
	for _, s := range uniqueTags(orDefault(sources)) {
		lines = append(lines, fmt.Sprintf("- [(%s)](url) for %s", s.Tag, s.Name))
	}
	return strings.Join(lines, "\n")
}

// TagList renders the unique tags as "(A) or (B)".
func TagList(sources []types.ArticleSource) string {
	var tags []string
	for _, s := range uniqueTags(orDefault(sources)) {
		tags = append(tags, "("+s.Tag+")")
	}
	return strings.Join(tags, " or ")
}

// SystemMessage is the editor instruction sent with every link request.
func SystemMessage(sources []types.ArticleSource) string {
	return fmt.Sprintf("You are a careful editor helping link summaries to matching newspaper articles. Do not alter text except to add a %s link.", TagList(sources))
}

var (
	tagLinkRe = regexp.MustCompile(`[ \t]*\[\([^\]\n]*\)\]\([^)\n]*\)`)
	linkRe    = regexp.MustCompile(`\[([^\]\n]+)\]\([^)\n]*\)`)
)

// Unlink removes source tag links such as " [(CM)](url)" and reduces any
// other markdown link to its label.
func Unlink(md string) string {
	md = tagLinkRe.ReplaceAllString(md, "")
	return linkRe.ReplaceAllString(md, "$1")
}
