package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// LLMConfig selects and tunes the generative provider.
type LLMConfig struct {
	Provider   string        `json:"provider,omitempty"`
	Model      string        `json:"model,omitempty"`
	APIKey     string        `json:"api_key,omitempty"`
	BaseURL    string        `json:"base_url,omitempty"`
	Timeout    time.Duration `json:"-"`
	TimeoutRaw string        `json:"timeout,omitempty"`
	MaxRetries int           `json:"max_retries,omitempty"`
}

// KeywordConfig selects the keyword provider.
type KeywordConfig struct {
	Provider    string   `json:"provider,omitempty"`
	APIKey      string   `json:"api_key,omitempty"`
	CatalogPath string   `json:"catalog,omitempty"`
	SeedQueries []string `json:"seed_queries,omitempty"`
}

// Config holds every setting of the generator and its optional server.
type Config struct {
	LLM      LLMConfig     `json:"llm"`
	Keywords KeywordConfig `json:"keywords"`

	PostsPerRun int    `json:"posts_per_run,omitempty"`
	DraftMode   bool   `json:"draft_mode"`
	ContentDir  string `json:"content_dir,omitempty"`
	Author      string `json:"author,omitempty"`
	Timezone    string `json:"timezone,omitempty"`

	BaseURL     string `json:"base_url,omitempty"`
	SitemapPath string `json:"sitemap_path,omitempty"`
	SiteDir     string `json:"site_dir,omitempty"`
	ServerAddr  string `json:"server_addr,omitempty"`

	Log      string `json:"log,omitempty"`
	LogLevel string `json:"log_level,omitempty"`
	LogDir   string `json:"log_dir,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:   "groq",
			Timeout:    120 * time.Second,
			MaxRetries: 2,
		},
		Keywords: KeywordConfig{
			Provider: "stub",
		},
		PostsPerRun: 2,
		DraftMode:   true,
		ContentDir:  "content/posts",
		Author:      "עמית",
		Timezone:    "Asia/Jerusalem",
		BaseURL:     "https://amit-solutions.co.il",
		SitemapPath: "public/sitemap.xml",
		SiteDir:     "docs",
		ServerAddr:  ":8080",
		LogLevel:    "info",
		LogDir:      "logs",
	}
}

// Load layers the defaults, the JSON file at path (if present), .env and the
// process environment, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
			if cfg.LLM.TimeoutRaw != "" {
				d, err := time.ParseDuration(cfg.LLM.TimeoutRaw)
				if err != nil {
					return cfg, fmt.Errorf("parse llm.timeout: %w", err)
				}
				cfg.LLM.Timeout = d
			}
		}
	}

	_ = godotenv.Load(".env")
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	// The first credential found wins.
	for _, key := range []string{"LLM_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY"} {
		if v := env(key); v != "" {
			c.LLM.APIKey = v
			break
		}
	}
	if v := env("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LLM_TIMEOUT: %w", err)
		}
		c.LLM.Timeout = d
	}
	if err := setInt(&c.LLM.MaxRetries, "LLM_MAX_RETRIES"); err != nil {
		return err
	}

	setString(&c.Keywords.Provider, "KEYWORD_PROVIDER")
	setString(&c.Keywords.APIKey, "KEYWORD_API_KEY")
	setString(&c.Keywords.CatalogPath, "KEYWORD_CATALOG")
	if v := env("SEED_QUERIES"); v != "" {
		c.Keywords.SeedQueries = splitCSV(v)
	}

	if err := setInt(&c.PostsPerRun, "POSTS_PER_DAY"); err != nil {
		return err
	}
	if v := env("DRAFT_MODE"); v != "" {
		c.DraftMode = strings.ToLower(v) != "false"
	}
	setString(&c.ContentDir, "CONTENT_DIR")
	setString(&c.Author, "POST_AUTHOR")
	setString(&c.Timezone, "SITE_TIMEZONE")
	setString(&c.BaseURL, "BASE_URL")
	setString(&c.SitemapPath, "SITEMAP_PATH")
	setString(&c.SiteDir, "SITE_DIR")
	setString(&c.ServerAddr, "SERVER_ADDR")
	setString(&c.Log, "LOG")
	setString(&c.LogLevel, "LOGLEVEL")
	setString(&c.LogDir, "LOG_DIR")
	c.LogLevel = strings.ToLower(c.LogLevel)
	return nil
}

// Validate rejects settings the pipeline cannot run with. A missing LLM
// credential is reported by the pipeline itself.
func (c *Config) Validate() (warnings []string, err error) {
	if c.PostsPerRun < 1 {
		return nil, fmt.Errorf("posts per run must be at least 1, got %d", c.PostsPerRun)
	}
	if _, err := c.Location(); err != nil {
		return nil, err
	}
	if c.ContentDir == "" {
		return nil, errors.New("content dir is required")
	}
	if c.LLM.APIKey == "" && c.LLM.Provider != "mock" {
		warnings = append(warnings, "no LLM credential set (LLM_API_KEY, GROQ_API_KEY or OPENAI_API_KEY)")
	}
	if c.DraftMode {
		warnings = append(warnings, "draft mode is on: new posts are saved unpublished")
	}
	return warnings, nil
}

// Location resolves the site timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SitemapURL is the public URL of the sitemap.
func (c *Config) SitemapURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/sitemap.xml"
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if v := env(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := env(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
