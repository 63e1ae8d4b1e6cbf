package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"docuchat/internal/api"
	"docuchat/internal/config"
	"docuchat/internal/embedding"
	"docuchat/internal/keywords"
	"docuchat/internal/llm"
	"docuchat/internal/papers"
	"docuchat/internal/rag/extractors"
	"docuchat/internal/rag/interfaces"
	"docuchat/internal/rag/pipeline"
	"docuchat/internal/rag/splitters"
	"docuchat/internal/rag/vectorstore"
	"docuchat/internal/voice"
	"docuchat/internal/websearch"
	"docuchat/pkg/logger"
)

func main() {
	// 1. Load environment variables from .env if present.
	_ = godotenv.Load()

	// 2. Load Configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 3. Initialize Logger
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.Init(level)
	appLogger := logger.New("docuchat")
	appLogger.Info("Starting docuchat service...")

	ctx := context.Background()

	// 4. Initialize the model backends for the configured provider.
	embedder, generator, cleanup, err := buildProvider(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize model provider: %v", err)
	}
	defer cleanup()

	// 5. Build the RAG pipelines around the snapshot store.
	store := vectorstore.NewSnapshotStore(cfg.Index.Dir, appLogger)
	qaSplitter := splitters.NewRecursiveSplitter(cfg.Chunking.QA.Size, cfg.Chunking.QA.Overlap)
	summarySplitter := splitters.NewRecursiveSplitter(cfg.Chunking.Summary.Size, cfg.Chunking.Summary.Overlap)

	modelTimeout := cfg.Gemini.Timeout
	if cfg.Provider == "ollama" {
		modelTimeout = cfg.Ollama.Timeout
	}

	indexing := pipeline.NewIndexingPipeline(qaSplitter, embedder, store, modelTimeout, appLogger)
	retrieval := pipeline.NewRetrievalPipeline(embedder, store, cfg.Retrieval.TopK, modelTimeout, appLogger)

	var searcher interfaces.WebSearcher
	if cfg.GoogleAPIKey != "" && cfg.WebSearch.EngineID != "" {
		gs, err := websearch.NewGoogleSearcher(ctx, cfg.GoogleAPIKey, cfg.WebSearch.EngineID, appLogger)
		if err != nil {
			log.Fatalf("Failed to create web searcher: %v", err)
		}
		searcher = gs
	} else {
		appLogger.Warn("Web search credentials not set, internet fallback disabled")
	}

	qa := pipeline.NewQAPipeline(generator, searcher, modelTimeout, cfg.WebSearch.Timeout, appLogger)
	summary := pipeline.NewSummaryPipeline(generator, modelTimeout, appLogger)

	// 6. Build the paper discovery clients.
	paperHTTP := &http.Client{Timeout: cfg.Papers.Timeout}
	arxiv := papers.NewArxivClient(paperHTTP, "", cfg.Papers.PageSize, cfg.Papers.MaxRetries, cfg.Papers.RequestDelay, appLogger)
	scholar := papers.NewScholarClient(paperHTTP, "", appLogger)
	discovery := papers.NewDiscovery(cfg.Papers.MaxResults, appLogger, arxiv, scholar)
	probeDiscovery := papers.NewDiscovery(cfg.Papers.MaxResults, appLogger, scholar)

	// 7. Build the voice transcriber client.
	voiceHTTP := &http.Client{Timeout: cfg.Voice.Timeout}
	transcriber := voice.NewHTTPTranscriber(voiceHTTP, cfg.Voice.BaseURL, cfg.Voice.ListenTimeout, cfg.Voice.PhraseLimit, appLogger)

	// 8. Wire the HTTP layer.
	handler := api.NewHandler(api.HandlerDeps{
		Extractor:       extractors.NewPDFExtractor(),
		Indexing:        indexing,
		Retrieval:       retrieval,
		QA:              qa,
		Summary:         summary,
		SummarySplitter: summarySplitter,
		DocKeywords:     keywords.NewExtractor(cfg.Keywords.Count, cfg.Keywords.MinWordLenDoc, appLogger),
		SummaryKeywords: keywords.NewExtractor(cfg.Keywords.Count, cfg.Keywords.MinWordLenSummary, appLogger),
		Discovery:       discovery,
		ProbeDiscovery:  probeDiscovery,
		Transcriber:     transcriber,
		IndexName:       cfg.Index.Name,
		Log:             appLogger,
	})

	gin.SetMode(gin.ReleaseMode)
	router := api.SetupRouter(handler)
	server := &http.Server{Addr: cfg.Server.Address, Handler: router}

	// 9. Start the HTTP server.
	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening at %s", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	// 10. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(fmt.Sprintf("Forced shutdown: %v", err))
	}
	appLogger.Info("Server gracefully stopped")
}

// buildProvider creates the embedding and generative backends for the
// configured provider and returns a cleanup function for held connections.
func buildProvider(ctx context.Context, cfg *config.AppConfig) (interfaces.EmbeddingModel, interfaces.LLM, func(), error) {
	switch cfg.Provider {
	case "ollama":
		embedder, err := embedding.NewOllamaModel(cfg.Ollama.EmbeddingModel, cfg.Ollama.BaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		generator, err := llm.NewOllama(cfg.Ollama.GenerateModel, cfg.Ollama.BaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return embedder, generator, func() {}, nil
	default:
		embedder, err := embedding.NewGoogleModel(ctx, cfg.GoogleAPIKey, cfg.Gemini.EmbeddingModel)
		if err != nil {
			return nil, nil, nil, err
		}
		generator, err := llm.NewGemini(ctx, cfg.Gemini.GenerateModel, cfg.GoogleAPIKey, *cfg.Gemini.Temperature)
		if err != nil {
			embedder.Close()
			return nil, nil, nil, err
		}
		cleanup := func() {
			generator.Close()
			embedder.Close()
		}
		return embedder, generator, cleanup, nil
	}
}
