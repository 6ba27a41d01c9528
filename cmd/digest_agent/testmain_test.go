package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
)

// TestMain reads the repository's .env; go test runs from this package's
// folder, not the repo root where the binary is usually started.
func TestMain(m *testing.M) {
	_ = godotenv.Load(filepath.Join("..", "..", ".env"))
	os.Exit(m.Run())
}
