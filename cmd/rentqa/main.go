// Package main is the rentqa CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lioncity/rentqa/internal/cli"
	"github.com/lioncity/rentqa/internal/config"
	"github.com/lioncity/rentqa/internal/embedding"
	"github.com/lioncity/rentqa/internal/ingest"
	"github.com/lioncity/rentqa/internal/llm"
	"github.com/lioncity/rentqa/internal/pipeline"
	"github.com/lioncity/rentqa/internal/rerank"
	"github.com/lioncity/rentqa/internal/retrieve"
	"github.com/lioncity/rentqa/internal/server"
	"github.com/lioncity/rentqa/internal/vector"
	"github.com/lioncity/rentqa/internal/watcher"
	"github.com/lioncity/rentqa/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/rentqa/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "rentqa server" from the project dir uses the project's
// config (including debug). Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// API keys live in .env during development; absence is fine in production
	// where the environment is set by the service manager.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "ingest":
		runIngest()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("rentqa version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// components holds everything a command needs after wiring.
type components struct {
	Config    *config.Config
	Logger    *zap.Logger
	Provider  *embedding.Provider
	Embedder  embedding.Embedder
	Store     *vector.Store
	Handle    *vector.Handle
	Retriever *retrieve.Retriever
	Reranker  *rerank.Reranker
	Ingester  *ingest.Ingester
}

// Close releases model-backed resources.
func (c *components) Close() {
	if c.Reranker != nil {
		_ = c.Reranker.Close()
	}
	if c.Provider != nil {
		_ = c.Provider.Close()
	}
	_ = c.Logger.Sync()
}

// initializeComponents wires the shared stack: embedder, persisted index,
// retriever, reranker, ingester. The index may be absent; queries then get
// the "not covered" answer until an ingest run produces one.
func initializeComponents(cfg *config.Config, logger *zap.Logger) (*components, error) {
	provider := embedding.NewProvider()
	embedder, err := provider.Get(&cfg.Embedding)
	if err != nil {
		_ = provider.Close()
		return nil, fmt.Errorf("embedding backend: %w", err)
	}

	store := vector.NewStore(cfg.Storage.IndexDir, cfg.Storage.IndexName, logger)
	idx, ok := store.Load()
	if !ok {
		idx = nil
	}
	handle := vector.NewHandle(idx)

	var opts []retrieve.Option
	if cfg.Retrieval.SearchType == string(retrieve.SearchMMR) {
		opts = append(opts, retrieve.WithMMR(cfg.Retrieval.MMRFetchMultiplier, cfg.Retrieval.MMRLambda))
	}
	retriever := retrieve.NewRetriever(handle, embedder, cfg.Retrieval.InitialK, opts...)

	return &components{
		Config:    cfg,
		Logger:    logger,
		Provider:  provider,
		Embedder:  embedder,
		Store:     store,
		Handle:    handle,
		Retriever: retriever,
		Reranker:  rerank.NewReranker(&cfg.Rerank),
		Ingester:  ingest.NewIngester(&cfg.Ingest, store, embedder, logger),
	}, nil
}

func setup(configPath string, debug bool) (*components, string) {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("config loaded",
		zap.String("config_path", resolvedPath),
		zap.Bool("debug", debugMode),
	)
	c, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return c, resolvedPath
}

func newPipeline(c *components) *pipeline.Pipeline {
	generator, err := llm.NewClient(&c.Config.LLM)
	if err != nil {
		c.Logger.Fatal("Failed to create generation client", zap.Error(err))
	}
	return pipeline.New(c.Retriever, c.Reranker, generator, c.Config.Retrieval.FinalK, c.Logger)
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	c, _ := setup(*configPath, *debug)
	defer c.Close()

	qa := newPipeline(c)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := os.MkdirAll(c.Config.Storage.IndexDir, 0755); err != nil {
		c.Logger.Fatal("Failed to create index dir", zap.Error(err))
	}
	w := watcher.NewWatcher(c.Store, c.Handle, c.Logger)
	if err := w.Start(watchCtx); err != nil {
		c.Logger.Fatal("Failed to start index watcher", zap.Error(err))
	}
	defer w.Stop()

	srv := server.NewServer(qa, c.Ingester, c.Handle, c.Store, c.Config, c.Logger)
	go func() {
		if err := srv.Start(); err != nil {
			c.Logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	c.Logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	identity := fs.String("identity", "", "who is asking (e.g. Student, Work Pass Holder)")
	jsonOut := fs.Bool("json", false, "output JSON instead of text")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		fmt.Println("Usage: rentqa ask [flags] <question>")
		os.Exit(1)
	}

	c, _ := setup(*configPath, *debug)
	defer c.Close()

	qa := newPipeline(c)
	result := qa.Query(context.Background(), pipeline.Question{Text: question, Identity: *identity})

	format := cli.OutputText
	if *jsonOut {
		format = cli.OutputJSON
	}
	if err := cli.WriteResult(os.Stdout, result, format); err != nil {
		c.Logger.Fatal("Failed to write result", zap.Error(err))
	}
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	sourcesPath := fs.String("sources", "", "sources file (default from config)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	c, _ := setup(*configPath, *debug)
	defer c.Close()

	path := *sourcesPath
	if path == "" {
		path = c.Config.Storage.SourcesPath
	}
	sources, err := ingest.LoadSources(path)
	if err != nil {
		c.Logger.Fatal("Failed to load sources", zap.Error(err))
	}
	c.Logger.Info("ingesting", zap.String("sources", path), zap.Int("count", len(sources)))

	_, report, err := c.Ingester.Run(context.Background(), sources)
	if err != nil {
		c.Logger.Fatal("Ingestion failed", zap.Error(err))
	}
	fmt.Printf("Ingested %d pages (%d skipped): %d new chunks, %d total\n",
		report.Fetched, report.Skipped, report.NewChunks, report.TotalChunks)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := zap.NewNop()
	store := vector.NewStore(cfg.Storage.IndexDir, cfg.Storage.IndexName, logger)

	fmt.Printf("Config:    %s\n", resolvedPath)
	fmt.Printf("Index dir: %s\n", cfg.Storage.IndexDir)
	idx, ok := store.Load()
	if !ok {
		fmt.Println("Index:     absent (run \"rentqa ingest\" to build it)")
		return
	}
	fmt.Printf("Index:     %d chunks, %d dimensions\n", idx.Size(), idx.Dimensions())
	var diskBytes int64
	for _, p := range []string{store.VectorPath(), store.SidecarPath()} {
		if info, statErr := os.Stat(p); statErr == nil {
			diskBytes += info.Size()
		}
	}
	fmt.Printf("On disk:   %d bytes\n", diskBytes)
}

func printUsage() {
	fmt.Println(`rentqa - Singapore rental regulation assistant

Usage:
  rentqa server [-config path] [-debug]          Start the HTTP API server
  rentqa ask [flags] <question>                  Ask a question from the terminal
  rentqa ingest [-config path] [-sources path]   Fetch sources and (re)build the index
  rentqa status [-config path]                   Show index status
  rentqa version                                 Show version

Ask flags:
  -identity string   who is asking, e.g. "Student" (improves answer framing)
  -json              structured JSON output

Examples:
  rentqa ingest
  rentqa ask what is the minimum rental period for an HDB flat
  rentqa ask -identity "Work Pass Holder" can I rent a single room
  rentqa server -debug`)
}
