package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// TimingsFile is the JSONL log kept under the summaries root.
const TimingsFile = "timings.log"

// JSONLRecorder appends one JSON object per line.
type JSONLRecorder struct {
	path string
	mu   sync.Mutex
}

// NewJSONLRecorder returns a recorder appending to path.
func NewJSONLRecorder(path string) *JSONLRecorder {
	return &JSONLRecorder{path: path}
}

// Record implements Recorder.
func (r *JSONLRecorder) Record(_ context.Context, e Entry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode timing: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Close implements Recorder.
func (r *JSONLRecorder) Close() error { return nil }
