package main

import (
	"testing"

	"seo_post_generator/config"
	"seo_post_generator/generator"
)

func TestBuildLLM(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr bool
	}{
		{name: "mock", cfg: config.LLMConfig{Provider: "mock"}},
		{name: "groq", cfg: config.LLMConfig{Provider: "groq", APIKey: "k"}},
		{name: "openai custom model", cfg: config.LLMConfig{Provider: "openai", Model: "gpt-4o"}},
		{name: "deepseek needs base url", cfg: config.LLMConfig{Provider: "deepseek"}, wantErr: true},
		{name: "deepseek", cfg: config.LLMConfig{Provider: "deepseek", BaseURL: "https://api.deepseek.com/v1/"}},
		{name: "unknown", cfg: config.LLMConfig{Provider: "bard"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm, profile, err := buildLLM(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildLLM: %v", err)
			}
			if llm == nil || profile.Name == "" {
				t.Fatalf("llm = %v profile = %+v", llm, profile)
			}
			if tt.cfg.Model != "" {
				if o, ok := llm.(*generator.OpenAILLM); !ok || o.Model != tt.cfg.Model {
					t.Errorf("model override not applied: %#v", llm)
				}
			}
		})
	}
}

func TestBuildMockPipeline(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "mock"
	cfg.ContentDir = t.TempDir()
	cfg.SiteDir = t.TempDir()

	app, err := build(cfg, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if app.pipeline == nil || app.store == nil {
		t.Fatalf("app = %+v", app)
	}
}
