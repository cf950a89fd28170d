package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/priyansh-soni/honeypot-agent/internal/config"
	"github.com/priyansh-soni/honeypot-agent/internal/handler"
	"github.com/priyansh-soni/honeypot-agent/internal/handler/monitor"
	"github.com/priyansh-soni/honeypot-agent/internal/model/persona"
	model "github.com/priyansh-soni/honeypot-agent/internal/model/session"
	"github.com/priyansh-soni/honeypot-agent/internal/service/ai"
	"github.com/priyansh-soni/honeypot-agent/internal/service/callback"
	"github.com/priyansh-soni/honeypot-agent/internal/service/engage"
	sessionstore "github.com/priyansh-soni/honeypot-agent/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	store := sessionstore.NewStore()

	// The classifier and responder share one chat model instance; both
	// are optional so the service still runs without model credentials.
	var classifier engage.Classifier
	var responder engage.Responder
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize chat model: %v", err)
			log.Println("continuing without AI functionality - 请检查 Ark 模型相关环境变量")
		} else {
			detector, err := ai.NewDetector(ctx, chatModel)
			if err != nil {
				log.Printf("warning: failed to build detector: %v", err)
			} else {
				classifier = detector
			}

			actor, err := ai.NewActor(ctx, chatModel)
			if err != nil {
				log.Printf("warning: failed to build actor: %v", err)
			} else {
				responder = actor
			}

			log.Println("AI detector and actor initialized successfully")
		}
	} else {
		log.Println("Ark 凭证未配置，跳过 AI 功能初始化")
	}

	limits := model.Limits{
		MaxTurns:      cfg.Engagement.MaxTurns,
		MinCategories: cfg.Engagement.MinCategories,
		StaleTurns:    cfg.Engagement.StaleTurns,
	}
	coordinator := engage.NewCoordinator(store, personaStore, classifier, responder, limits)

	callbacks := callback.NewClient(cfg.Callback.URL, cfg.Callback.Timeout)
	if callbacks.Enabled() {
		log.Printf("final result callback enabled: %s", cfg.Callback.URL)
	} else {
		log.Println("CALLBACK_URL not set, final result delivery disabled")
	}

	hub := monitor.NewHub()

	router := handler.NewRouter(coordinator, store, hub, callbacks, cfg.Security.APISecretKey)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Honeypot agent backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
