package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"chatquiz-service/internal/config"
	"chatquiz-service/internal/domain"
	"chatquiz-service/internal/game"
	"chatquiz-service/internal/infra/memory"
	pgloader "chatquiz-service/internal/infra/postgres"
	redisinfra "chatquiz-service/internal/infra/redis"
	"chatquiz-service/internal/timer"
	transport "chatquiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz chat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader redisinfra.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestions())
	if pool != nil {
		loader = pgloader.NewQuestionLoader(pool)
	}

	questionTTL := config.TTLDuration(cfg.Game.QuestionTTL, 10*time.Minute)
	var questions game.QuestionStore
	var users game.UserStore
	if redisClient != nil {
		questions = redisinfra.NewQuestionStore(redisClient, loader, questionTTL)
		users = redisinfra.NewUserStore(redisClient)
	} else {
		loaded, err := loader.LoadQuestions(ctx)
		if err != nil {
			return err
		}
		questions = memory.NewQuestionStore(loaded)
		users = memory.NewUserStore()
	}

	settings := config.SettingsFromConfig(cfg)

	var fallback game.Outbound
	if host, ok := settings.Get("CHAT_HOST"); ok {
		base := "http://" + host
		if chatPort, ok := settings.Get("CHAT_PORT"); ok {
			base += ":" + chatPort
		}
		if root, ok := settings.Get("CHAT_CONTEXT_ROOT"); ok {
			base += root
		}
		fallback = transport.NewOutboundClient(base)
	}
	hub := transport.NewHub(fallback)

	registry := timer.NewRegistry()
	engine := game.NewEngine(users, questions, settings, registry, hub)
	registry.OnExpire(engine.HandleTimeout)

	router := transport.NewRouter(engine)
	chatHandler := transport.NewChatHandler(router, hub)
	webhook := transport.NewWebhookHandler(router)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", chatHandler.ServeWS)
	mux.HandleFunc("/api/messages", webhook.HandleMessage)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting chat quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions provides a small built-in question set for redis-less and
// database-less runs; production loads the set from Postgres.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:       1,
			Position: 1,
			Text:     "Which command starts a new game?",
			Options: [4]string{
				"play", "begin", "go", "quiz",
			},
			CorrectIndex: 1,
		},
		{
			ID:       2,
			Position: 2,
			Text:     "What does HTTP stand for?",
			Options: [4]string{
				"HyperText Transfer Protocol",
				"High Throughput Transport Protocol",
				"Hyperlink Text Tagging Protocol",
				"Host Transfer and Traffic Protocol",
			},
			CorrectIndex: 1,
		},
		{
			ID:       3,
			Position: 3,
			Text:     "Which of these is NOT a Go keyword?",
			Options: [4]string{
				"defer", "chan", "async", "select",
			},
			CorrectIndex: 3,
		},
	}
}
