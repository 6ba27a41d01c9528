package articles

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/news-digest/internal/logging"
	"github.com/jonathan/news-digest/internal/types"
)

// Load reads the article array at path. A missing file is an empty list, and
// so is a file that does not parse, with a warning. Relative URLs are resolved
// against baseURL when one is given.
func Load(path, baseURL string, logger *slog.Logger) ([]types.Article, error) {
	logger = logging.OrDiscard(logger)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Path: path, Message: "failed to read", Cause: err}
	}

	var list []types.Article
	if err := json.Unmarshal(data, &list); err != nil {
		logger.Warn("could not parse article file, treating as empty", "path", path, "error", err)
		return nil, nil
	}

	if baseURL != "" {
		for i := range list {
			list[i].URL = ResolveURL(baseURL, list[i].URL)
		}
	}
	return list, nil
}

// ResolveURL makes href absolute against base. Absolute or unparsable values
// are returned unchanged.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || base == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil || ref.IsAbs() {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

// KnownURLs indexes the URLs of list.
func KnownURLs(list []types.Article) map[string]bool {
	known := make(map[string]bool, len(list))
	for _, a := range list {
		known[a.URL] = true
	}
	return known
}

// Merge prepends the articles of fresh whose URL is not yet in existing, keeping
// fresh's order. It returns the merged list and how many articles were added.
func Merge(fresh, existing []types.Article) ([]types.Article, int) {
	known := KnownURLs(existing)

	added := make([]types.Article, 0, len(fresh))
	for _, a := range fresh {
		if a.URL == "" || known[a.URL] {
			continue
		}
		known[a.URL] = true
		added = append(added, a)
	}

	merged := make([]types.Article, 0, len(added)+len(existing))
	merged = append(merged, added...)
	merged = append(merged, existing...)
	return merged, len(added)
}

// Save writes list as an indented JSON array, replacing path atomically.
func Save(path string, list []types.Article) error {
	if list == nil {
		list = []types.Article{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		return &StoreError{Path: path, Message: "failed to encode", Cause: err}
	}

	if err := WriteFileAtomic(path, buf.Bytes()); err != nil {
		return &StoreError{Path: path, Message: "failed to write", Cause: err}
	}
	return nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// into place, creating parent directories as needed.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
