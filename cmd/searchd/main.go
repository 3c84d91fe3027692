// Command searchd is the serving process: it initializes the Cache
// Manager, then exposes the four service-surface operations from
// SPEC_FULL.md §6 (search, autocomplete, status, submit_index) over a
// minimal net/http mux. HTTP routing, auth, and rate limiting are external
// collaborators outside this spec's scope (SPEC_FULL.md §1/§6) — this is
// deliberately thinner than the teacher's gateway-fronted service, which
// exists to demonstrate the operations directly.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/arxiv-search/scholarsearch/internal/barrel"
	"github.com/arxiv-search/scholarsearch/internal/cache"
	"github.com/arxiv-search/scholarsearch/internal/ingest"
	"github.com/arxiv-search/scholarsearch/internal/query"
	"github.com/arxiv-search/scholarsearch/pkg/config"
	ssErrors "github.com/arxiv-search/scholarsearch/pkg/errors"
	"github.com/arxiv-search/scholarsearch/pkg/logger"
	"github.com/arxiv-search/scholarsearch/pkg/metrics"
	pkgredis "github.com/arxiv-search/scholarsearch/pkg/redis"
	"github.com/arxiv-search/scholarsearch/pkg/resultcache"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "data_dir", cfg.Engine.DataDir)

	barrels := barrel.NewSet(cfg.Engine.DataDir, cfg.Engine.NumBarrels)
	mgr := cache.NewManager(
		cache.Paths{DataDir: cfg.Engine.DataDir},
		barrels,
		cfg.Semantic.VectorsPath,
		cfg.Semantic.SimilarityThreshold,
		cfg.Semantic.MaxSynonyms,
	)
	if err := mgr.Initialize(); err != nil {
		slog.Error("cache manager initialize failed", "error", err)
		os.Exit(1)
	}
	slog.Info("cache manager initialized", "vocabulary_size", mgr.Status().VocabularySize)

	var redisClient *pkgredis.Client
	var results *resultcache.Cache
	if cfg.Redis.Addr != "" {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, result cache disabled", "error", err)
			results = resultcache.New(nil, cfg.Redis)
		} else {
			defer redisClient.Close()
			results = resultcache.New(redisClient, cfg.Redis)
			slog.Info("result cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	} else {
		results = resultcache.New(nil, cfg.Redis)
	}

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdownMetrics(ctx)
		}()
	}

	worker := ingest.NewWorker(mgr.Lexicon(), mgr.Docs(), mgr.ForwardIndex(), barrels, mgr)
	queue := ingest.NewQueue(worker, func(outcome ingest.Outcome) {
		if outcome.Result != nil {
			if err := mgr.Reload(); err != nil {
				slog.Error("cache manager reload failed", "error", err)
				return
			}
			if err := results.Invalidate(context.Background()); err != nil {
				slog.Error("result cache invalidate failed", "error", err)
			}
			m.IngestBatchesTotal.WithLabelValues("success").Inc()
			m.DocsIndexedTotal.Add(float64(outcome.Result.IndexedCount))
			m.LexiconSize.Set(float64(mgr.Status().VocabularySize))
		} else {
			m.IngestBatchesTotal.WithLabelValues("failure").Inc()
			slog.Warn("ingest batch failed", "message", outcome.Failure.Message)
		}
	})
	defer queue.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &server{mgr: mgr, results: results, queue: queue, metrics: m, defaultLimit: cfg.Search.DefaultLimit, autocompleteLimit: cfg.Engine.AutocompleteLimit}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", srv.handleSearch)
	mux.HandleFunc("GET /api/v1/autocomplete", srv.handleAutocomplete)
	mux.HandleFunc("GET /api/v1/status", srv.handleStatus)
	mux.HandleFunc("POST /api/v1/submit", srv.handleSubmit)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}

type server struct {
	mgr               *cache.Manager
	results           *resultcache.Cache
	queue             *ingest.Queue
	metrics           *metrics.Metrics
	defaultLimit      int
	autocompleteLimit int
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	page := atoiDefault(r.URL.Query().Get("page"), 1)
	limit := atoiDefault(r.URL.Query().Get("limit"), s.defaultLimit)

	lex := s.mgr.Lexicon()
	if lex == nil {
		writeError(w, http.StatusServiceUnavailable, ssErrors.ErrNotInitialized)
		return
	}
	engine := &query.Engine{Lexicon: lex, Docs: s.mgr.Docs(), Barrels: s.mgr.Barrels(), Semantic: s.mgr.Semantic()}

	started := time.Now()
	result, cacheHit, err := s.results.GetOrCompute(r.Context(), q, page, limit, func() (*query.Page, error) {
		return engine.Search(q, page, limit)
	})
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		s.metrics.ResultCacheHitsTotal.Inc()
	} else {
		s.metrics.ResultCacheMissTotal.Inc()
	}
	s.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(time.Since(started).Seconds())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	matchType := "empty"
	if len(result.Results) > 0 {
		matchType = result.Results[0].MatchType
	}
	s.metrics.SearchQueriesTotal.WithLabelValues(matchType).Inc()
	s.metrics.SearchResultsCount.Observe(float64(len(result.Results)))
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit := atoiDefault(r.URL.Query().Get("limit"), s.autocompleteLimit)
	t := s.mgr.Trie()
	if t == nil {
		writeError(w, http.StatusServiceUnavailable, ssErrors.ErrNotInitialized)
		return
	}
	suggestions := t.Suggest(q, limit)
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.mgr.Status()
	s.metrics.ShardCacheResident.Set(float64(len(status.CachedBarrels)))
	writeJSON(w, http.StatusOK, status)
}

func (s *server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var batch []ingest.RawDocument
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, ssErrors.New(ssErrors.ErrBadInput, err.Error()))
		return
	}
	outcome := s.queue.Submit(r.Context(), batch)
	if outcome.Failure != nil {
		s.metrics.IngestBatchesTotal.WithLabelValues("rejected").Inc()
	}
	writeJSON(w, http.StatusAccepted, outcome)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
