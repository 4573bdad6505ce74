package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"edumate/internal/app"
	"edumate/internal/config"
	"edumate/internal/server"
	"edumate/internal/util"
	"edumate/pkg/ai"
	"edumate/pkg/storage"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	util.InitLogger(cfg.LogLevel)

	backend, err := buildBackend(cfg)
	if err != nil {
		log.Fatalf("failed to init backend: %v", err)
	}

	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		objects, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init object storage: %v", err)
		}
	}

	appCore, err := app.New(app.Config{
		DatabaseURL: cfg.DatabaseURL,
		Gateway:     ai.NewGateway(backend),
		Objects:     objects,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:                       appCore,
		RedisAddr:                 cfg.RedisAddr,
		RedisPassword:             cfg.RedisPassword,
		ProcessRateLimitPerMinute: cfg.ProcessRateLimitPerMinute,
		TrustedProxyCIDRs:         cfg.TrustedProxyCIDRs,
		MaxUploadBytes:            cfg.MaxUploadBytes,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", addr, "provider", providerName(cfg))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "err", err)
	}
}

// buildBackend selects the transformation backend once at startup.
func buildBackend(cfg config.FileConfig) (ai.Backend, error) {
	switch strings.TrimSpace(cfg.AIProvider) {
	case "", "heuristic":
		return ai.NewHeuristicBackend(), nil
	case "gemini":
		gen, err := ai.NewGeminiGenerator(cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return ai.NewLLMBackend(gen), nil
	case "ollama":
		gen, err := ai.NewOllamaGenerator(cfg.OllamaBaseURL, cfg.OllamaModel)
		if err != nil {
			return nil, err
		}
		return ai.NewLLMBackend(gen), nil
	case "openai":
		gen, err := ai.NewOpenAICompatGenerator(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, err
		}
		return ai.NewLLMBackend(gen), nil
	}
	return nil, errors.New("unknown aiProvider " + cfg.AIProvider)
}

func providerName(cfg config.FileConfig) string {
	p := strings.TrimSpace(cfg.AIProvider)
	if p == "" {
		return "heuristic"
	}
	return p
}
