// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration that can be loaded from a JSON or
// YAML file. All fields are optional; missing values use defaults or CLI flags.
type Config struct {
	// Paths
	DataRoot      string `json:"data_root,omitempty" yaml:"data_root,omitempty"`           // Scraped article JSON files
	SummariesRoot string `json:"summaries_root,omitempty" yaml:"summaries_root,omitempty"` // Per-day folders and timings.log
	Languages     string `json:"languages,omitempty" yaml:"languages,omitempty"`           // Path to languages.json

	// LLM
	Provider string            `json:"provider,omitempty" yaml:"provider,omitempty" validate:"omitempty,oneof=openai gemini anthropic"`
	Models   map[string]string `json:"models,omitempty" yaml:"models,omitempty" validate:"omitempty,dive,keys,oneof=lite standard advanced,endkeys,required"`
	// APIKey is the chat provider key; the provider's env var is used when empty
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Summarization
	ChunkTokens  int `json:"chunk_tokens,omitempty" yaml:"chunk_tokens,omitempty" validate:"gte=0"`
	OverlapWords int `json:"overlap_words,omitempty" yaml:"overlap_words,omitempty" validate:"gte=0"`
	HeadlineCap  int `json:"headline_cap,omitempty" yaml:"headline_cap,omitempty" validate:"gte=0"`
	// ChunkSleep is a Go duration, e.g. "20s"
	ChunkSleep string `json:"chunk_sleep,omitempty" yaml:"chunk_sleep,omitempty"`

	// Days
	Timezone   string `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	CutoffHour *int   `json:"cutoff_hour,omitempty" yaml:"cutoff_hour,omitempty" validate:"omitempty,gte=0,lte=23"`

	// Media
	VideoBaseURL          string   `json:"video_base_url,omitempty" yaml:"video_base_url,omitempty" validate:"omitempty,url"`
	VideoTemplates        []string `json:"video_templates,omitempty" yaml:"video_templates,omitempty" validate:"omitempty,dive,contains={date}"`
	TranscriptionModel    string   `json:"transcription_model,omitempty" yaml:"transcription_model,omitempty"`
	TranscriptionRetries  int      `json:"transcription_retries,omitempty" yaml:"transcription_retries,omitempty" validate:"gte=0"`
	TranscriptionMinChars int      `json:"transcription_min_chars,omitempty" yaml:"transcription_min_chars,omitempty" validate:"gte=0"`
	ImageModel            string   `json:"image_model,omitempty" yaml:"image_model,omitempty"`

	// Behavior
	// LedgerDSN is sqlite://path or postgres://...
	LedgerDSN         string `json:"ledger_dsn,omitempty" yaml:"ledger_dsn,omitempty"`
	ScrapeConcurrency int    `json:"scrape_concurrency,omitempty" yaml:"scrape_concurrency,omitempty" validate:"gte=0"`
	// Headless applies to scraping; Substack rejects most headless sessions
	Headless        *bool  `json:"headless,omitempty" yaml:"headless,omitempty"`
	PublishHeadless bool   `json:"publish_headless,omitempty" yaml:"publish_headless,omitempty"`
	Verbose         bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	LogLevel        string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn warning error"`
}

// Defaults returns the production defaults.
func Defaults() Config {
	cutoff := 2
	headless := true
	return Config{
		DataRoot:              "data",
		SummariesRoot:         "summaries",
		Languages:             filepath.Join("config", "languages.json"),
		Provider:              "openai",
		ChunkTokens:           3000,
		OverlapWords:          100,
		HeadlineCap:           10,
		ChunkSleep:            "20s",
		Timezone:              "Asia/Nicosia",
		CutoffHour:            &cutoff,
		VideoBaseURL:          "http://v6.cloudskep.com/rikvod/idisisstisokto/",
		VideoTemplates:        []string{"8news{date}.mp4", "8news{date}02.mp4", "8news_{date}.mp4"},
		TranscriptionModel:    "gpt-4o-transcribe",
		TranscriptionRetries:  3,
		TranscriptionMinChars: 200,
		ImageModel:            "gpt-image-1",
		ScrapeConcurrency:     1,
		Headless:              &headless,
		LogLevel:              "info",
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

var validate = validator.New()

// Validate checks that the configuration has valid values.
// Required fields are not checked here; defaults fill them after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ValidationError{Field: fe.Field(), Message: fmt.Sprintf("failed '%s' check", fe.Tag())}
		}
		return &ValidationError{Message: "invalid configuration", Cause: err}
	}

	if c.ChunkSleep != "" {
		d, err := time.ParseDuration(c.ChunkSleep)
		if err != nil {
			return &ValidationError{Field: "chunk_sleep", Message: "not a duration", Cause: err}
		}
		if d < 0 {
			return &ValidationError{Field: "chunk_sleep", Message: "must be non-negative"}
		}
	}

	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return &ValidationError{Field: "timezone", Message: "unknown time zone", Cause: err}
		}
	}

	if c.LedgerDSN != "" && !strings.HasPrefix(c.LedgerDSN, "sqlite://") &&
		!strings.HasPrefix(c.LedgerDSN, "postgres://") && !strings.HasPrefix(c.LedgerDSN, "postgresql://") {
		return &ValidationError{Field: "ledger_dsn", Message: "must start with sqlite:// or postgres://"}
	}

	return nil
}

// ChunkSleepDuration returns the parsed chunk_sleep, or 0 when unset.
func (c *Config) ChunkSleepDuration() time.Duration {
	d, err := time.ParseDuration(c.ChunkSleep)
	if err != nil {
		return 0
	}
	return d
}

// HeadlessBrowser reports whether scraping runs Chrome headless.
func (c *Config) HeadlessBrowser() bool {
	return c.Headless == nil || *c.Headless
}

// Cutoff returns the evening cutoff hour.
func (c *Config) Cutoff() int {
	if c.CutoffHour == nil {
		return *Defaults().CutoffHour
	}
	return *c.CutoffHour
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DataRoot == "" {
		result.DataRoot = defaults.DataRoot
	}
	if result.SummariesRoot == "" {
		result.SummariesRoot = defaults.SummariesRoot
	}
	if result.Languages == "" {
		result.Languages = defaults.Languages
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.ChunkSleep == "" {
		result.ChunkSleep = defaults.ChunkSleep
	}
	if result.Timezone == "" {
		result.Timezone = defaults.Timezone
	}
	if result.VideoBaseURL == "" {
		result.VideoBaseURL = defaults.VideoBaseURL
	}
	if result.TranscriptionModel == "" {
		result.TranscriptionModel = defaults.TranscriptionModel
	}
	if result.ImageModel == "" {
		result.ImageModel = defaults.ImageModel
	}
	if result.LedgerDSN == "" {
		result.LedgerDSN = defaults.LedgerDSN
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	// Int fields: use default if zero
	if result.ChunkTokens == 0 {
		result.ChunkTokens = defaults.ChunkTokens
	}
	if result.OverlapWords == 0 {
		result.OverlapWords = defaults.OverlapWords
	}
	if result.HeadlineCap == 0 {
		result.HeadlineCap = defaults.HeadlineCap
	}
	if result.TranscriptionRetries == 0 {
		result.TranscriptionRetries = defaults.TranscriptionRetries
	}
	if result.TranscriptionMinChars == 0 {
		result.TranscriptionMinChars = defaults.TranscriptionMinChars
	}
	if result.ScrapeConcurrency == 0 {
		result.ScrapeConcurrency = defaults.ScrapeConcurrency
	}

	if len(result.VideoTemplates) == 0 {
		result.VideoTemplates = append([]string(nil), defaults.VideoTemplates...)
	}
	if len(result.Models) == 0 && len(defaults.Models) > 0 {
		result.Models = make(map[string]string, len(defaults.Models))
		for k, v := range defaults.Models {
			result.Models[k] = v
		}
	}

	// Pointer fields distinguish unset from zero/false
	if result.CutoffHour == nil {
		result.CutoffHour = defaults.CutoffHour
	}
	if result.Headless == nil {
		result.Headless = defaults.Headless
	}

	// Plain bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
