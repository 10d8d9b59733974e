package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blindtest-service/internal/config"
	"blindtest-service/internal/domain"
	"blindtest-service/internal/game"
	"blindtest-service/internal/infra/memory"
	pgloader "blindtest-service/internal/infra/postgres"
	redisinfra "blindtest-service/internal/infra/redis"
	"blindtest-service/internal/scoring"
	transport "blindtest-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the blindtest server",
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
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.GameLoader = memory.NewStaticGameLoader(sampleGames())
	if pool != nil {
		loader = pgloader.NewGameLoader(pool)
	}

	gameTTL := config.TTLDuration(cfg.Game.TTL, 10*time.Minute)

	// Sessions need the full definition (answer labels, clip URLs), so
	// they always read through the in-memory cache. The Redis cache keeps
	// only the scoring-relevant slice and backs the local judge.
	gameRepo := memory.NewGameRepository(loader, gameTTL)

	var judge game.ScoringService
	switch cfg.Scoring.Mode {
	case "remote":
		judge = scoring.NewClient(cfg.Scoring.URL)
	default:
		var scoringRepo game.GameRepository = gameRepo
		if redisClient != nil {
			scoringRepo = redisinfra.NewGameRepository(redisClient, loader, gameTTL)
		}
		judge = scoring.NewLocal(scoringRepo)
	}

	var store game.SessionStore
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	service := game.NewService(gameRepo, store, judge, game.LoopbackProvider)
	if tick := config.TTLDuration(cfg.Game.Tick, 10*time.Millisecond); tick > 0 {
		service.SetTickInterval(tick.Milliseconds())
	}
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting blindtest service on :%s", finalPort)
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

// sampleGames provides a minimal definition set; swap the loader for the
// Postgres-backed one in production.
func sampleGames() map[string]domain.Game {
	return map[string]domain.Game{
		"game-1": {
			ID:           "game-1",
			Genre:        "rock",
			TimeBudgetMs: 60000,
			Tracks: []domain.GameTrack{
				{
					ID:      "t1",
					ClipURL: "https://clips.example.com/t1.mp3",
					Choices: []domain.Choice{
						{ID: "c1", Artist: "The Kinks", Title: "Lola", Correct: false},
						{ID: "c2", Artist: "The Who", Title: "Baba O'Riley", Correct: true},
						{ID: "c3", Artist: "The Clash", Title: "London Calling", Correct: false},
					},
				},
				{
					ID:      "t2",
					ClipURL: "https://clips.example.com/t2.mp3",
					Choices: []domain.Choice{
						{ID: "c4", Artist: "Led Zeppelin", Title: "Kashmir", Correct: true},
						{ID: "c5", Artist: "Deep Purple", Title: "Smoke on the Water", Correct: false},
						{ID: "c6", Artist: "Black Sabbath", Title: "Paranoid", Correct: false},
					},
				},
				{
					ID:      "t3",
					ClipURL: "https://clips.example.com/t3.mp3",
					Choices: []domain.Choice{
						{ID: "c7", Artist: "Pixies", Title: "Where Is My Mind?", Correct: false},
						{ID: "c8", Artist: "Radiohead", Title: "Creep", Correct: false},
						{ID: "c9", Artist: "Nirvana", Title: "Come as You Are", Correct: true},
					},
				},
			},
		},
	}
}
