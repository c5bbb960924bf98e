package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"seo_post_generator/config"
	"seo_post_generator/generator"
	"seo_post_generator/keywords"
	"seo_post_generator/logger"
	"seo_post_generator/pipeline"
	"seo_post_generator/publisher"
	"seo_post_generator/quality"
	"seo_post_generator/server"
	"seo_post_generator/store"
)

var verbose bool

func main() {
	configPath := flag.String("config", "config/config.json", "path to config.json")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	posts := flag.Int("posts", 0, "posts to generate this run (overrides POSTS_PER_DAY)")
	flag.BoolVar(&verbose, "v", false, "enable debug logs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *posts > 0 {
		cfg.PostsPerRun = *posts
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log, err := logger.New(logger.Options{Mode: cfg.Log, Level: cfg.LogLevel, Dir: cfg.LogDir})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	warnings, err := cfg.Validate()
	if err != nil {
		log.Error("invalid configuration", zap.Error(err))
		os.Exit(1)
	}
	for _, w := range warnings {
		log.Warn(w)
	}

	app, err := build(cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		os.Exit(1)
	}

	// Web server mode
	if *serve {
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if err := app.serve(listen); err != nil {
			log.Error("server stopped", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := app.pipeline.Run(ctx)
	if err != nil {
		log.Error("fatal error", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
	if err := sum.Write(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

type application struct {
	store    *store.FileStore
	pipeline *pipeline.Pipeline
	siteDir  string
	logger   *zap.Logger
}

func build(cfg config.Config, log *zap.Logger) (*application, error) {
	if log == nil {
		log = zap.NewNop()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	st, err := store.New(cfg.ContentDir, store.Options{Author: cfg.Author, Location: loc}, log)
	if err != nil {
		return nil, err
	}

	seed := uint64(time.Now().UnixNano())
	rng := rand.New(rand.NewPCG(seed, seed>>17))

	src, err := keywords.New(cfg.Keywords.Provider, cfg.Keywords.APIKey, cfg.Keywords.CatalogPath, rng, log)
	if err != nil {
		return nil, err
	}

	llm, profile, err := buildLLM(cfg.LLM)
	if err != nil {
		return nil, err
	}
	gen, err := generator.NewGenerator(llm, profile, rng, log)
	if err != nil {
		return nil, err
	}

	apiKey := cfg.LLM.APIKey
	if profile.Name == "mock" && apiKey == "" {
		// The offline client needs no credential.
		apiKey = "mock"
	}
	opts := pipeline.Options{
		APIKey:      apiKey,
		PostsPerRun: cfg.PostsPerRun,
		DraftMode:   cfg.DraftMode,
		SeedQueries: cfg.Keywords.SeedQueries,
		SitemapURL:  cfg.SitemapURL(),
	}
	p := pipeline.New(st, src, gen, quality.NewGate(), opts, log,
		publisher.NewSitemap(cfg.BaseURL, cfg.SitemapPath, log),
		publisher.NewStaticSite(cfg.BaseURL, cfg.SiteDir, log),
	)

	log.Info("pipeline ready",
		zap.String("provider", profile.Name),
		zap.String("keywords", cfg.Keywords.Provider),
		zap.Int("posts_per_run", cfg.PostsPerRun),
		zap.Bool("draft", cfg.DraftMode),
	)
	return &application{store: st, pipeline: p, siteDir: cfg.SiteDir, logger: log}, nil
}

func (a *application) serve(listen string) error {
	if listen == "" {
		listen = ":8080"
	}
	srv, err := server.New(a.pipeline, a.store, a.siteDir, a.logger)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Addr:              listen,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	a.logger.Info("starting web server", zap.String("addr", listen))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func buildLLM(cfg config.LLMConfig) (generator.LLMClient, generator.Profile, error) {
	profile, err := generator.ProfileFor(cfg.Provider)
	if err != nil {
		return nil, generator.Profile{}, err
	}
	switch profile.Name {
	case "mock":
		return generator.MockLLM{}, profile, nil
	case "openai", "groq", "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url（例如官方/网关地址）。
		llm, err := generator.NewOpenAILLMFromConfig(&generator.LLMSettings{
			Provider:   profile.Name,
			Model:      cfg.Model,
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
		})
		if err != nil {
			return nil, generator.Profile{}, err
		}
		return llm, profile, nil
	default:
		return nil, generator.Profile{}, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}
