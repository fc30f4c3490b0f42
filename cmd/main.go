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

	"github.com/eaglebank/auth-api/internal/audit"
	usercmd "github.com/eaglebank/auth-api/internal/command"
	"github.com/eaglebank/auth-api/internal/config"
	"github.com/eaglebank/auth-api/internal/db"
	"github.com/eaglebank/auth-api/internal/handler"
	"github.com/eaglebank/auth-api/internal/logger"
	qry "github.com/eaglebank/auth-api/internal/query"
	"github.com/eaglebank/auth-api/internal/repository"
	"github.com/eaglebank/auth-api/shared/events"
	"github.com/eaglebank/auth-api/shared/models"
	redisClient "github.com/eaglebank/auth-api/shared/redis"
	"github.com/eaglebank/auth-api/shared/token"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	userViewTTL     = 15 * time.Minute
	shutdownTimeout = 10 * time.Second
)

type userStore interface {
	repository.UserStore
	repository.UserCreator
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	gin.SetMode(cfg.GinMode)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Write store: Postgres when configured, otherwise in process memory.
	var store userStore
	if cfg.DatabaseURL != "" {
		conn, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			zlog.Fatal("failed to connect to database", zap.Error(err))
		}
		defer conn.Close()

		if err := db.Migrate(conn); err != nil {
			zlog.Fatal("failed to run migrations", zap.Error(err))
		}
		store = repository.NewPostgresUserStore(conn)
		zlog.Info("using postgres user store")
	} else {
		store = repository.NewMemoryUserStore()
		zlog.Info("using in-memory user store")
	}

	seedUsers := repository.PromoteAdmins(repository.DefaultSeedUsers, cfg.AdminEmails)
	if err := repository.Seed(ctx, store, seedUsers); err != nil {
		zlog.Fatal("failed to seed users", zap.Error(err))
	}

	// Redis is optional: it backs the read model cache and the event stream.
	var (
		viewCache *redisClient.ViewCache[models.UserView]
		publisher usercmd.EventPublisher
	)
	if cfg.RedisAddr != "" {
		redis, err := redisClient.NewClient(ctx, redisClient.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redis.Close()

		viewCache = redisClient.NewViewCache[models.UserView](redis.Client, userViewTTL, zlog)
		publisher = events.NewPublisher(redis.Client)

		recorder := audit.NewRecorder(zlog)
		subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:    audit.ConsumerGroup,
			Consumer: consumerName(),
			Stream:   events.UserEventsStream,
			Handler:  recorder.HandleUserEvent,
			Logger:   zlog,
		})
		go func() {
			if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zlog.Error("audit subscriber stopped", zap.Error(err))
			}
		}()
	}

	// --- CQRS wiring ---
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTokenTTL)
	readRepo := repository.NewUserReadRepository(store, viewCache)

	authQueries := qry.NewAuthQueryService(store, tokens)
	userQueries := qry.NewUserQueryService(readRepo)
	userCommands := usercmd.NewUserCommandService(store, readRepo, publisher, zlog)

	router := handler.NewRouter(handler.RouterDeps{
		Auth:               handler.NewAuthHandler(authQueries, zlog),
		User:               handler.NewUserHandler(userCommands, userQueries, zlog),
		Tokens:             tokens,
		Logger:             zlog,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		LoginRateLimit:     cfg.LoginRateLimit,
		LoginRateWindow:    cfg.LoginRateWindow,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zlog.Info("auth api starting", zap.String("port", cfg.Port), zap.String("mode", cfg.GinMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}

func consumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "auth-api-1"
	}
	return "auth-api-" + host
}
