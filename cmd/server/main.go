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

	"github.com/robfig/cron/v3"

	"comment-lens/internal/httpapi"
	"comment-lens/internal/orchestrator"
	"comment-lens/shared/ai"
	"comment-lens/shared/config"
	"comment-lens/shared/monitoring"
	"comment-lens/shared/youtube"
)

const (
	serviceName = "comment-lens"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	ytClient, err := youtube.New(ctx, cfg.YouTube.APIKey, cfg.Analysis.CommentPageSize, cfg.Analysis.MaxComments)
	if err != nil {
		log.Fatalf("Failed to create YouTube client: %v", err)
	}

	analyzer, err := ai.New(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.Analysis.AnalyzerMaxComments)
	if err != nil {
		log.Fatalf("Failed to create analyzer: %v", err)
	}

	monitoring.Init(serviceName, version, cfg.Server.Environment)
	monitor := monitoring.NewMonitor()

	orch := orchestrator.New(ytClient, ytClient, analyzer, monitor)

	// Janitor drops finished runs past their retention window
	janitor := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := janitor.AddFunc(cfg.Analysis.JanitorSpec, func() {
		orch.Prune(cfg.Analysis.RunRetention)
	}); err != nil {
		log.Fatalf("Failed to schedule janitor: %v", err)
	}
	janitor.Start()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: httpapi.NewRouter(orch, monitor, cfg),
	}

	go func() {
		log.Printf("%s %s listening on %s (%s)", serviceName, version, srv.Addr, cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	janitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
