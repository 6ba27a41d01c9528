package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/news-digest/internal/config"
	"github.com/jonathan/news-digest/internal/ledger"
	"github.com/jonathan/news-digest/internal/llm"
	"github.com/jonathan/news-digest/internal/logging"
)

const testLanguagesJSON = `{
  "en": {
    "enabled": true,
    "summary_source": "transcript",
    "summary_filename": "summary.txt",
    "summary_without_links_filename": "summary_without_links.txt",
    "flag_filename": "published.flag",
    "substack_url": "https://digest.example/publish/post",
    "substack_session_file": "session.json",
    "article_sources": [{"name": "Cyprus Mail", "tag": "CM", "file": "cyprus_articles.json"}]
  },
  "ru": {
    "enabled": true,
    "summary_source": "translate_from:en",
    "summary_filename": "summary_ru.txt",
    "summary_without_links_filename": "summary_ru_without_links.txt",
    "flag_filename": "published_ru.flag",
    "substack_url": "",
    "substack_session_file": ""
  }
}`

func writeTestLanguages(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config", "languages.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(testLanguagesJSON), 0644))
	return path
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Config{
		DataRoot:      filepath.Join(t.TempDir(), "data"),
		SummariesRoot: t.TempDir(),
		Languages:     writeTestLanguages(t),
	}
	return cfg.MergeWithDefaults(config.Defaults())
}

func TestResolveDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Nicosia")
	require.NoError(t, err)
	// 23:30 UTC on 1 June is already 2 June in Nicosia
	now := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		args    []string
		want    time.Time
		wantErr bool
	}{
		{"explicit day", []string{"2025-05-28"}, time.Date(2025, 5, 28, 0, 0, 0, 0, time.UTC), false},
		{"defaults to yesterday in timezone", nil, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), false},
		{"invalid day", []string{"28/05/2025"}, time.Time{}, true},
	}
	s := &settings{cfg: testConfig(t), loc: loc}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.resolveDay(tt.args, now)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "YYYY-MM-DD")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDay_BeforeCutoffKeepsPreviousEvening(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Nicosia")
	require.NoError(t, err)
	s := &settings{cfg: testConfig(t), loc: loc}
	require.Equal(t, 2, s.cfg.Cutoff())

	// 01:15 on 3 June in Nicosia is still the evening of 2 June
	now := time.Date(2025, 6, 3, 1, 15, 0, 0, loc)
	got, err := s.resolveDay(nil, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestBuildSettings(t *testing.T) {
	cfg := testConfig(t)

	s, err := buildSettings(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, "Asia/Nicosia", s.loc.String())
	assert.Equal(t, []string{"en", "ru"}, s.langs.Ordered())
	assert.Equal(t, filepath.Join(cfg.DataRoot, "cyprus_articles.json"), s.langs["en"].ArticleSources[0].File)
	assert.Equal(t, filepath.Join(filepath.Dir(cfg.Languages), "session.json"), s.langs["en"].SubstackSessionFile)
}

func TestBuildSettings_RestrictKeepsTranslationSource(t *testing.T) {
	s, err := buildSettings(testConfig(t), []string{"ru"})
	require.NoError(t, err)

	assert.Equal(t, []string{"ru"}, s.langs.Ordered())
	require.Contains(t, s.langs, "en")
	assert.False(t, s.langs["en"].Enabled)
}

func TestBuildSettings_UnknownLanguage(t *testing.T) {
	_, err := buildSettings(testConfig(t), []string{"xx"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown language")
}

func TestLoadSettings_FlagsOverrideConfigFile(t *testing.T) {
	languages := writeTestLanguages(t)
	cfgPath := filepath.Join(t.TempDir(), "digest.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("data_root: from-file\nsummaries_root: from-file\nlanguages: "+languages+"\nchunk_tokens: 1500\n"), 0644))

	summaries := t.TempDir()
	setFlag(t, "config", cfgPath)
	setFlag(t, "summaries-root", summaries)

	s, err := loadSettings(rootCmd)
	require.NoError(t, err)

	assert.Equal(t, "from-file", s.cfg.DataRoot)
	assert.Equal(t, summaries, s.cfg.SummariesRoot)
	assert.Equal(t, 1500, s.cfg.ChunkTokens)
	assert.Equal(t, 100, s.cfg.OverlapWords)
	assert.Equal(t, "openai", s.cfg.Provider)
}

func TestLoadSettings_InvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "digest.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"provider": "mystery"}`), 0644))
	setFlag(t, "config", cfgPath)

	_, err := loadSettings(rootCmd)
	require.Error(t, err)

	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Provider", verr.Field)
}

// setFlag sets a root persistent flag for the duration of the test.
func setFlag(t *testing.T, name, value string) {
	t.Helper()
	f := rootCmd.PersistentFlags().Lookup(name)
	require.NotNil(t, f)
	require.NoError(t, rootCmd.PersistentFlags().Set(name, value))
	t.Cleanup(func() {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func TestLLMConfig_ModelOverrides(t *testing.T) {
	cfg := config.Config{Provider: "gemini", Models: map[string]string{"standard": "gemini-custom"}}

	c := llmConfig(cfg)

	assert.Equal(t, llm.ProviderGemini, c.Provider)
	assert.Equal(t, "gemini-custom", c.GetModel(llm.TierStandard))
	assert.Equal(t, "gemini-2.5-flash-lite", c.GetModel(llm.TierLite))
}

func TestNewChatClient_MissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := newChatClient(context.Background(), config.Config{Provider: "anthropic"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY environment variable or --api-key flag is required")
}

func TestNewOpenAIClient_NoKeyDisables(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	client := newOpenAIClient(config.Config{Provider: "gemini", APIKey: "gemini-key"}, logging.Discard())
	assert.Nil(t, client)
}

func TestOpenLedger_WritesTimingsAndDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.LedgerDSN = "sqlite://" + filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	l := openLedger(ctx, cfg, nil)
	err := l.Step(ctx, ledger.StepInfo{Label: "summary", Day: "2025-06-01", Lang: "en"}, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(cfg.SummariesRoot, ledger.TimingsFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"label":"summary"`)

	rec, err := ledger.OpenSQL(ctx, cfg.LedgerDSN)
	require.NoError(t, err)
	defer rec.Close()
	entries, err := rec.List(ctx, "2025-06-01")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 42, entries[0].Tokens)
}

func TestRepositoryLanguagesFileIsValid(t *testing.T) {
	langs, err := config.LoadLanguages(filepath.Join("..", "..", "config", "languages.json"))
	require.NoError(t, err)

	assert.Equal(t, []string{"en"}, langs.TranscriptLanguages())
	assert.Equal(t, []string{"el"}, langs.NativeSummaryLanguages())
	assert.Contains(t, langs.TranslationLanguages(), "ru")
}
