package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"seo_post_generator/content"
	"seo_post_generator/pipeline"
	"seo_post_generator/store"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Summary, error)
}

// PostReader exposes the two index capabilities: enumerate-all and find-by-slug.
type PostReader interface {
	List() ([]content.Post, error)
	Get(slug string) (content.Post, error)
}

type Server struct {
	runner  Runner
	posts   PostReader
	siteDir string
	runs    *runStore
	// running serializes runs; the store assumes a single writer.
	running sync.Mutex
	logger  *zap.Logger
}

type runStore struct {
	mu    sync.Mutex
	order []string
	runs  map[string]*pipeline.Summary
}

func newRunStore() *runStore {
	return &runStore{runs: make(map[string]*pipeline.Summary)}
}

func (s *runStore) set(sum *pipeline.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[sum.RunID]; !ok {
		s.order = append(s.order, sum.RunID)
	}
	s.runs[sum.RunID] = sum
}

func (s *runStore) get(id string) (*pipeline.Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.runs[id]
	return sum, ok
}

// list returns summaries newest first.
func (s *runStore) list() []*pipeline.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*pipeline.Summary, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.runs[s.order[i]])
	}
	return out
}

func New(runner Runner, posts PostReader, siteDir string, logger *zap.Logger) (*Server, error) {
	if runner == nil {
		return nil, errors.New("pipeline runner required")
	}
	if posts == nil {
		return nil, errors.New("post reader required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		runner:  runner,
		posts:   posts,
		siteDir: siteDir,
		runs:    newRunStore(),
		logger:  logger,
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/posts", s.handleListPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts/{slug}", s.handleGetPost).Methods(http.MethodGet)
	api.HandleFunc("/runs", s.handleListRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs", s.handleCreateRun).Methods(http.MethodPost)
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods(http.MethodGet)
	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	if s.siteDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.siteDir)))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return s.logMiddleware(c.Handler(r))
}

// --- Handlers ---

func (s *Server) handleListPosts(w http.ResponseWriter, _ *http.Request) {
	posts, err := s.posts.List()
	if err != nil {
		s.logger.Error("list posts failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if posts == nil {
		posts = []content.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	post, err := s.posts.Get(slug)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "post not found")
	case err != nil:
		s.logger.Error("get post failed", zap.String("slug", slug), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, post)
	}
}

type runResp struct {
	Run   *pipeline.Summary `json:"run"`
	Error string            `json:"error,omitempty"`
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	if !s.running.TryLock() {
		writeError(w, http.StatusConflict, "a run is already in progress")
		return
	}
	defer s.running.Unlock()

	// A dropped client must not abort a run between topics.
	ctx := context.WithoutCancel(r.Context())
	sum, err := s.runner.Run(ctx)
	if sum != nil {
		s.runs.set(sum)
	}
	if err != nil {
		s.logger.Error("run failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, runResp{Run: sum, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, runResp{Run: sum})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	sum, ok := s.runs.get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, runResp{Run: sum, Error: sum.Error})
}

func (s *Server) handleListRuns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.runs.list())
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)

		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", lrw.statusCode),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
