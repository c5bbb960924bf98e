package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

var envKeys = []string{
	"LLM_PROVIDER", "LLM_MODEL", "LLM_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY", "LLM_BASE_URL",
	"LLM_TIMEOUT", "LLM_MAX_RETRIES", "KEYWORD_PROVIDER", "KEYWORD_API_KEY", "KEYWORD_CATALOG",
	"SEED_QUERIES", "POSTS_PER_DAY", "DRAFT_MODE", "CONTENT_DIR", "POST_AUTHOR", "SITE_TIMEZONE",
	"BASE_URL", "SITEMAP_PATH", "SITE_DIR", "SERVER_ADDR", "LOG", "LOGLEVEL", "LOG_DIR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Provider != "groq" || cfg.PostsPerRun != 2 || !cfg.DraftMode {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.LLM.Timeout != 120*time.Second || cfg.LLM.MaxRetries != 2 {
		t.Errorf("llm defaults = %+v", cfg.LLM)
	}
	if cfg.Keywords.Provider != "stub" || cfg.ContentDir != "content/posts" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
  "llm": {"provider": "openai", "model": "gpt-4o", "timeout": "30s"},
  "posts_per_run": 5,
  "draft_mode": false,
  "content_dir": "posts"
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("POSTS_PER_DAY", "3")
	t.Setenv("GROQ_API_KEY", "groq-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("SEED_QUERIES", " wordpress , ,seo ")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4o" || cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.PostsPerRun != 3 {
		t.Errorf("env did not override posts per run: %d", cfg.PostsPerRun)
	}
	if cfg.DraftMode {
		t.Errorf("file draft_mode=false ignored")
	}
	if cfg.LLM.APIKey != "groq-key" {
		t.Errorf("credential precedence: got %q", cfg.LLM.APIKey)
	}
	if !slices.Equal(cfg.Keywords.SeedQueries, []string{"wordpress", "seo"}) {
		t.Errorf("seed queries = %q", cfg.Keywords.SeedQueries)
	}
}

func TestDraftModeEnv(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"false", false},
		{"FALSE", false},
		{"true", true},
		{"no", true},
		{"", true},
	}
	for _, tt := range tests {
		clearEnv(t)
		t.Setenv("DRAFT_MODE", tt.value)
		cfg, err := Load("")
		if err != nil {
			t.Fatal(err)
		}
		if cfg.DraftMode != tt.want {
			t.Errorf("DRAFT_MODE=%q: draft = %v, want %v", tt.value, cfg.DraftMode, tt.want)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTS_PER_DAY", "two")
	if _, err := Load(""); err == nil {
		t.Errorf("non-numeric POSTS_PER_DAY accepted")
	}

	clearEnv(t)
	t.Setenv("LLM_TIMEOUT", "soon")
	if _, err := Load(""); err == nil {
		t.Errorf("bad LLM_TIMEOUT accepted")
	}

	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{"), 0o644)
	if _, err := Load(path); err == nil {
		t.Errorf("broken json accepted")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKey = "k"
	if _, err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	bad := cfg
	bad.PostsPerRun = 0
	if _, err := bad.Validate(); err == nil {
		t.Errorf("zero posts per run accepted")
	}

	bad = cfg
	bad.Timezone = "Mars/Olympus"
	if _, err := bad.Validate(); err == nil {
		t.Errorf("unknown timezone accepted")
	}

	noKey := Default()
	warnings, err := noKey.Validate()
	if err != nil {
		t.Fatalf("missing credential must not be a config error: %v", err)
	}
	if len(warnings) == 0 {
		t.Errorf("expected a credential warning")
	}
}

func TestSitemapURL(t *testing.T) {
	cfg := Config{BaseURL: "https://example.co.il/"}
	if got := cfg.SitemapURL(); got != "https://example.co.il/sitemap.xml" {
		t.Errorf("SitemapURL() = %q", got)
	}
}
