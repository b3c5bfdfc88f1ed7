// Package main is the Substream CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/substream/substream/internal/cli"
	"github.com/substream/substream/internal/config"
	"github.com/substream/substream/internal/feature"
	"github.com/substream/substream/internal/model"
	"github.com/substream/substream/internal/models"
	"github.com/substream/substream/internal/recommend"
	"github.com/substream/substream/internal/search"
	"github.com/substream/substream/internal/server"
	"github.com/substream/substream/internal/storage"
	"github.com/substream/substream/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/substream/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used instead.
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
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "similar":
		runSimilar()
	case "recommend":
		runRecommend()
	case "import-terms":
		runImportTerms()
	case "rebuild":
		runRebuild()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("substream version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	// Pre-warm the content model so the first request does not pay the
	// build latency.
	if _, err := components.Model.Build(context.Background(), false); err != nil {
		logger.Warn("model pre-warm failed", zap.Error(err))
	}

	srv := server.NewServer(
		components.Engine,
		components.Recommender,
		components.Model,
		components.Storage,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildQuery joins all positional args with spaces so multi-word queries work
// the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	vector := fs.Bool("vector", false, "rank by cosine similarity only, without keyword coverage")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: substream search [flags] <query>")
		os.Exit(1)
	}
	query := buildQuery(fs.Args())

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	endpoint := *serverURL + "/api/v1/search?q=" + url.QueryEscape(query)
	if *vector {
		endpoint = *serverURL + "/api/v1/search/vector?q=" + url.QueryEscape(query)
	}
	var response models.SearchResponse
	if err := getJSON(endpoint, "", &response); err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, &response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runSimilar() {
	fs := flag.NewFlagSet("similar", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: substream similar [flags] <series name>")
		os.Exit(1)
	}
	name := buildQuery(fs.Args())

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var response models.RecommendResponse
	if err := getJSON(*serverURL+"/api/v1/recommend/"+url.PathEscape(name), "", &response); err != nil {
		fmt.Fprintf(os.Stderr, "Recommendation failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteRecommendations(os.Stdout, &response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runRecommend() {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	token := fs.String("token", "", "session token from login")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if *token == "" {
		fmt.Println("Usage: substream recommend --token <session token>")
		os.Exit(1)
	}

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var response models.RecommendResponse
	if err := getJSON(*serverURL+"/api/v1/recommendations", *token, &response); err != nil {
		fmt.Fprintf(os.Stderr, "Recommendation failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteRecommendations(os.Stdout, &response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// termImport is the JSON shape consumed by import-terms: one entry per series
// with its term->count table. Missing series are created.
type termImport struct {
	Series []struct {
		Name     string             `json:"name"`
		Synopsis string             `json:"synopsis,omitempty"`
		ImageURL string             `json:"image_url,omitempty"`
		Terms    map[string]float64 `json:"terms"`
	} `json:"series"`
}

func runImportTerms() {
	fs := flag.NewFlagSet("import-terms", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: substream import-terms [flags] <terms.json>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Failed to read %s: %v\n", path, err)
		os.Exit(1)
	}
	var payload termImport
	if err := json.Unmarshal(data, &payload); err != nil {
		fmt.Printf("Failed to parse %s: %v\n", path, err)
		os.Exit(1)
	}

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	imported := 0
	for _, entry := range payload.Series {
		if entry.Name == "" {
			continue
		}
		series, err := components.Storage.GetSeriesByName(ctx, entry.Name)
		if err != nil {
			series = &models.Series{Name: entry.Name, Synopsis: entry.Synopsis, ImageURL: entry.ImageURL}
			if err := components.Storage.CreateSeries(ctx, series); err != nil {
				fmt.Printf("Failed to create series %q: %v\n", entry.Name, err)
				os.Exit(1)
			}
		}
		if err := components.Storage.ReplaceTermCounts(ctx, series.ID, entry.Terms); err != nil {
			fmt.Printf("Failed to import terms for %q: %v\n", entry.Name, err)
			os.Exit(1)
		}
		imported++
	}

	// The model is rebuilt so the imported terms are immediately searchable.
	snap, err := components.Model.Build(ctx, true)
	if err != nil {
		fmt.Printf("Model rebuild failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported terms for %d series; model covers %d series.\n", imported, snap.Size())
}

func runRebuild() {
	fs := flag.NewFlagSet("rebuild", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Post(*serverURL+"/api/v1/rebuild", "application/json", bytes.NewReader(nil))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Rebuild failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Rebuild failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	body, _ := io.ReadAll(resp.Body)
	fmt.Println(string(body))
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	var status map[string]interface{}
	if err := getJSON(*serverURL+"/api/v1/status", "", &status); err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(status)
}

func getJSON(endpoint, token string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Components holds initialized services.
type Components struct {
	Storage     storage.Storage
	Model       *model.Service
	Engine      *search.Engine
	Recommender *recommend.Recommender
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	builder := feature.NewBuilder(feature.Weights{
		TermWeight:     cfg.Model.TermWeight,
		SynopsisWeight: cfg.Model.SynopsisWeight,
		BigramWeight:   cfg.Model.BigramWeight,
		MaxRepeat:      cfg.Model.MaxRepeat,
	})
	svc := model.NewService(store, builder, logger)
	engine := search.NewEngine(svc, store, &cfg.Search, logger)
	recommender := recommend.NewRecommender(svc, store, logger)

	return &Components{
		Storage:     store,
		Model:       svc,
		Engine:      engine,
		Recommender: recommender,
	}, nil
}

func printUsage() {
	fmt.Println(`substream - TV series catalog with TF-IDF search and recommendations

Usage:
  substream server [flags]               Start the HTTP server
  substream search [flags] <query>       Hybrid search for series (--vector for cosine-only)
  substream similar [flags] <name>       Series similar to a given one
  substream recommend --token <token>    Personalized recommendations
  substream import-terms [flags] <file>  Import subtitle term counts (JSON)
  substream rebuild [flags]              Force a content model rebuild
  substream status [flags]               Show catalog/model status
  substream version                      Show version
  substream help                         Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/substream/config.yaml)
  --debug            Enable debug logging

Client Flags (search, similar, recommend, rebuild, status):
  --server string    Server URL (default: http://localhost:8080)
  --output string    Output format: text or json (default: text)

Examples:
  substream server
  substream search dragon castle
  substream similar "Breaking Bad"
  substream recommend --token $TOKEN
  substream import-terms terms.json
  substream rebuild`)
}
