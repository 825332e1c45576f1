package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"todo_backend/internal/app/di"
	"todo_backend/internal/app/router"
	authhandler "todo_backend/internal/feature/auth/transport/handler"
	authusecase "todo_backend/internal/feature/auth/usecase"
	todoadapters "todo_backend/internal/feature/todos/adapters"
	todohandler "todo_backend/internal/feature/todos/transport/handler"
	todousecase "todo_backend/internal/feature/todos/usecase"
	"todo_backend/internal/platform/config"
	infradb "todo_backend/internal/platform/db"
	"todo_backend/internal/platform/http/handler"
	jwtmw "todo_backend/internal/platform/jwt"
	"todo_backend/internal/platform/password"
	infraredis "todo_backend/internal/platform/redis"
	"todo_backend/internal/shared/ratelimiter"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 設定（JWT_SECRET がなければ起動しない）
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// db
	db, err := infradb.OpenDB(cfg.DB, cfg.RunMigrations)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Println("[ERROR] Failed to close database:", err)
		}
	}()

	// Redis（任意。未設定・接続不可ならキャッシュなしで動く）
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			log.Println("[WARN] Redis unavailable. Running without cache.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Println("[ERROR] Failed to close Redis client:", err)
				}
			}()
		}
	}

	// Repository
	userRepo := di.NewUserRepository(rdb, db, cfg.UserCacheTTL)
	todoRepo := todoadapters.NewTodoGorm(db)

	// Platform
	codec := jwtmw.NewCodec(cfg.JWTSecret, jwtmw.SessionTTL)
	hasher := password.NewBcryptHasher(cfg.BcryptCost)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, todoRepo, hasher, codec)
	todoUC := todousecase.NewTodoUsecase(todoRepo)

	// ルータ生成
	r, err := router.NewRouter(
		router.Config{
			ClientURL:      cfg.ClientURL,
			TrustedProxies: cfg.TrustedProxies,
			AuthLimiter:    ratelimiter.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow),
		},
		router.Handlers{
			Auth:   authhandler.NewAuthHandler(authUC),
			Todos:  todohandler.NewTodoHandler(todoUC),
			Status: handler.NewStatusHandler(sqlDB),
			Gate:   jwtmw.AuthRequired(codec, userRepo),
		},
	)
	if err != nil {
		log.Fatalf("router: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server is listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] graceful shutdown failed: %v", err)
	}
}
