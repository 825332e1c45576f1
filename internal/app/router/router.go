// Package router はginエンジンとルーティングテーブルを組み立てます。
package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "todo_backend/internal/feature/auth/transport/handler"
	todohandler "todo_backend/internal/feature/todos/transport/handler"
	"todo_backend/internal/platform/http/handler"
	"todo_backend/internal/shared/ratelimiter"
)

// Config はルーター全体に関わる設定です。
type Config struct {
	// ClientURL はCookie付きリクエストを許可するフロントエンドのオリジンです。
	ClientURL string
	// TrustedProxies は X-Forwarded-For を信頼するプロキシです。nil の場合は接続元アドレスのみを使います。
	// レート制限とログの remote_addr はこの設定で決まる ClientIP に依存します。
	TrustedProxies []string
	// AuthLimiter は /auth/register と /auth/login に適用されます。nil の場合は制限しません。
	AuthLimiter *ratelimiter.RateLimiter
}

// Handlers はルーターに登録するハンドラー群です。
type Handlers struct {
	Auth   *authhandler.AuthHandler
	Todos  *todohandler.TodoHandler
	Status *handler.StatusHandler
	// Gate は認証必須ルートに適用されるミドルウェア（jwtmw.AuthRequired）です。
	Gate gin.HandlerFunc
}

// NewRouter はルーティングテーブルを登録したginエンジンを返します。
func NewRouter(cfg Config, h Handlers) (*gin.Engine, error) {
	r := gin.Default()

	// 既定では全プロキシを信頼してしまうため、明示したものだけに絞る
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	// Cookie を送るため、オリジンを明示し credentials を許可する
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/health", h.Status.Health)
	r.GET("/test", h.Status.Test)

	limit := func(c *gin.Context) { c.Next() }
	if cfg.AuthLimiter != nil {
		limit = cfg.AuthLimiter.Middleware()
	}

	auth := r.Group("/auth")
	{
		// 新規ユーザー登録
		auth.POST("/register", limit, h.Auth.Register)
		// ログイン（Cookie にトークンを設定）
		auth.POST("/login", limit, h.Auth.Login)
		// ログアウトはトークンが無効でも Cookie を消せるようゲートの外に置く
		auth.POST("/logout", h.Auth.Logout)

		// 認証必須のルート
		me := auth.Group("", h.Gate)
		me.GET("/me", h.Auth.Me)
		me.PUT("/profile", h.Auth.UpdateProfile)
		me.PUT("/password", h.Auth.ChangePassword)
		me.DELETE("/account", h.Auth.DeleteAccount)
	}

	todos := r.Group("/todos", h.Gate)
	{
		todos.POST("/add", h.Todos.Create)
		todos.GET("/", h.Todos.List)
		todos.PUT("/complete/:id", h.Todos.Complete)
		todos.PUT("/:id", h.Todos.Update)
		todos.DELETE("/:id", h.Todos.Delete)
	}

	return r, nil
}
