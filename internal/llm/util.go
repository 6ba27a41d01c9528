// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanMarkdownBlock removes a code fence wrapped around a whole response.
// Models sometimes wrap markdown in ```markdown ... ``` even when told not to.
func CleanMarkdownBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	// Skip potential language identifier on first line
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := text[:idx]
		if len(firstLine) < 20 && !strings.Contains(firstLine, " ") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// splitMessages separates system content from the conversational turns.
// Providers that take a dedicated system field use this.
func splitMessages(messages []Message) (system []string, turns []Message) {
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return system, turns
}
