package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ASHISH26940/manim-chat-api/pkg/animation"
	"github.com/ASHISH26940/manim-chat-api/pkg/config"
	"github.com/ASHISH26940/manim-chat-api/pkg/db"
	"github.com/ASHISH26940/manim-chat-api/pkg/db/queries"
	"github.com/ASHISH26940/manim-chat-api/pkg/handlers"
	"github.com/ASHISH26940/manim-chat-api/pkg/llm"
	"github.com/ASHISH26940/manim-chat-api/pkg/middleware"
	"github.com/ASHISH26940/manim-chat-api/pkg/renderer"
	"github.com/ASHISH26940/manim-chat-api/pkg/services"
	"github.com/ASHISH26940/manim-chat-api/pkg/storage"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetOutput(gin.DefaultWriter)
	log.SetLevel(log.InfoLevel)
	log.SetFormatter(&log.JSONFormatter{})
	log.Info("Starting Manim Chat API...")

	cfg := config.LoadConfig()

	if level, err := log.ParseLevel(cfg.LogLevel); err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, keeping info", cfg.LogLevel)
	} else {
		log.SetLevel(level)
	}

	conn, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close(conn)

	if cfg.AutoMigrate {
		if err := db.Migrate(conn); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}
	store := queries.New(conn)

	llmClient, err := llm.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}
	defer llmClient.Close()

	ctx := context.Background()
	objects, err := storage.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	manim := renderer.NewClient(cfg.ManimServiceURL, nil)
	probeCtx, cancelProbe := context.WithTimeout(ctx, 10*time.Second)
	if err := manim.Health(probeCtx); err != nil {
		log.Warnf("Manim service at %s is not answering yet: %v", cfg.ManimServiceURL, err)
	}
	cancelProbe()

	pipeline := animation.NewPipeline(store, manim, objects)
	chat := services.NewChatService(store, llmClient, pipeline)
	apiHandlers := handlers.NewHandlers(chat, store, manim)

	router := gin.Default()
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	apiHandlers.RegisterRoutes(router, cfg.CORSAllowedOrigins)

	if local, ok := objects.(*storage.LocalStore); ok {
		router.Static(storage.LocalRoutePrefix, local.Dir())
	}

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		log.Infof("Server listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	drained := make(chan struct{})
	go func() {
		pipeline.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		log.Info("All animation runs finished.")
	case <-time.After(cfg.PipelineDrainTimeout):
		log.Warnf("Animation runs still in flight after %s, exiting anyway", cfg.PipelineDrainTimeout)
	}

	if closer, ok := objects.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Errorf("Error closing object storage: %v", err)
		}
	}

	log.Info("Server exited gracefully.")
}
