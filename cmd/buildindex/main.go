// Command buildindex is the offline ingestion CLI: it runs the incremental
// indexer's batch algorithm once against a JSON file of raw documents,
// writing L, D, F, and the touched barrel shards to the configured data
// directory, then reports the resulting Cache Manager status. It is the
// batch counterpart to searchd's submit_index endpoint, useful for seeding
// an index from a bulk arxiv export before the serving process starts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/arxiv-search/scholarsearch/internal/barrel"
	"github.com/arxiv-search/scholarsearch/internal/cache"
	"github.com/arxiv-search/scholarsearch/internal/ingest"
	"github.com/arxiv-search/scholarsearch/pkg/config"
	"github.com/arxiv-search/scholarsearch/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	inputPath := flag.String("input", "", "path to a JSON file containing an array of raw documents")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: buildindex -input batch.json [-config configs/development.yaml]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		slog.Error("reading input file failed", "error", err)
		os.Exit(1)
	}
	var batch []ingest.RawDocument
	if err := json.Unmarshal(data, &batch); err != nil {
		slog.Error("parsing input file failed", "error", err)
		os.Exit(1)
	}
	slog.Info("loaded batch", "documents", len(batch), "input", *inputPath)

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

	worker := ingest.NewWorker(mgr.Lexicon(), mgr.Docs(), mgr.ForwardIndex(), barrels, mgr)
	outcome := worker.Run(context.Background(), batch)
	if outcome.Failure != nil {
		slog.Error("batch failed", "message", outcome.Failure.Message)
		os.Exit(1)
	}
	slog.Info("batch complete", "indexed", outcome.Result.IndexedCount, "message", outcome.Result.Message)

	if err := mgr.Reload(); err != nil {
		slog.Error("cache manager reload failed", "error", err)
		os.Exit(1)
	}
	status := mgr.Status()
	report, _ := json.MarshalIndent(status, "", "  ")
	fmt.Println(string(report))
}
