// Package prompts holds the digest prompt templates. Each language has a
// digest_<lang>.json file and translations share translate.json; all of them
// are embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

var (
	mu     sync.Mutex
	parsed = map[string]map[string]string{}
)

// Get returns the trimmed prompt stored under key in filename
// (e.g. "digest_en.json").
func Get(filename, key string) (string, error) {
	entries, err := load(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := entries[key]
	if !ok {
		return "", &PromptError{File: filename, Key: key}
	}
	return prompt, nil
}

// MustGet is Get for prompts that must ship with the binary.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format fills {{.Key}} placeholders. Unknown placeholders are left as they are.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, 2*len(data))
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Exists reports whether an embedded prompt file is present.
func Exists(filename string) bool {
	_, err := promptFiles.ReadFile(filename)
	return err == nil
}

// Keys lists the prompt keys of filename in sorted order.
func Keys(filename string) ([]string, error) {
	entries, err := load(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Reset drops parsed files so the next lookup re-reads them.
func Reset() {
	mu.Lock()
	parsed = map[string]map[string]string{}
	mu.Unlock()
}

func load(filename string) (map[string]string, error) {
	mu.Lock()
	defer mu.Unlock()

	if entries, ok := parsed[filename]; ok {
		return entries, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, &PromptError{File: filename, Cause: err}
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &PromptError{File: filename, Cause: fmt.Errorf("invalid JSON: %w", err)}
	}

	entries := make(map[string]string, len(raw))
	for key, prompt := range raw {
		entries[key] = strings.TrimSpace(prompt)
	}
	parsed[filename] = entries
	return entries, nil
}
