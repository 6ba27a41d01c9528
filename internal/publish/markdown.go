package publish

import (
	"regexp"
	"strings"
)

var (
	titlePrefixRe = regexp.MustCompile(`^#+\s*(?:📰)?\s*`)
	linkRe        = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)]+)\)`)
)

// ExtractTitleAndBody takes the first heading line as the title and
// everything after it as the body. Without a heading the whole text is body.
func ExtractTitleAndBody(markdown string) (string, string) {
	lines := strings.Split(strings.TrimSpace(markdown), "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			title := strings.TrimSpace(titlePrefixRe.ReplaceAllString(line, ""))
			body := strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
			return title, body
		}
	}
	return "", strings.TrimSpace(markdown)
}

// Run is a piece of a line: plain text, or a link when URL is set.
type Run struct {
	Text string
	URL  string
}

// SplitLinks breaks a line into plain text and markdown link runs.
func SplitLinks(line string) []Run {
	var runs []Run
	pos := 0
	for _, m := range linkRe.FindAllStringSubmatchIndex(line, -1) {
		if m[0] > pos {
			runs = append(runs, Run{Text: line[pos:m[0]]})
		}
		runs = append(runs, Run{Text: line[m[2]:m[3]], URL: line[m[4]:m[5]]})
		pos = m[1]
	}
	if pos < len(line) {
		runs = append(runs, Run{Text: line[pos:]})
	}
	return runs
}

// ActionKind is one kind of editor input.
type ActionKind int

const (
	// ActionInsert pastes text in one go.
	ActionInsert ActionKind = iota
	// ActionType types text key by key so editor shortcuts fire.
	ActionType
	// ActionLink opens the link dialog and fills label and URL.
	ActionLink
	// ActionEnter presses Enter.
	ActionEnter
)

// Action is a single step of typing the body into the editor.
type Action struct {
	Kind ActionKind
	Text string
	URL  string
}

// Plan converts a markdown body into editor actions. "- " bullets become
// "• ", heading lines are typed so the editor converts them, and each line
// and paragraph ends with Enter.
func Plan(body string) []Action {
	var out []Action
	for _, paragraph := range strings.Split(body, "\n\n") {
		for _, raw := range strings.Split(paragraph, "\n") {
			line := strings.TrimSpace(raw)
			if rest, ok := strings.CutPrefix(line, "- "); ok {
				out = append(out, Action{Kind: ActionInsert, Text: "• "})
				line = strings.TrimSpace(rest)
			}

			runs := SplitLinks(line)
			for i, r := range runs {
				switch {
				case r.URL != "":
					out = append(out, Action{Kind: ActionLink, Text: r.Text, URL: r.URL})
				case i == len(runs)-1 && strings.HasPrefix(r.Text, "#"):
					out = append(out, Action{Kind: ActionType, Text: r.Text})
				default:
					out = append(out, Action{Kind: ActionInsert, Text: r.Text})
				}
			}
			out = append(out, Action{Kind: ActionEnter})
		}
		out = append(out, Action{Kind: ActionEnter})
	}
	return out
}
