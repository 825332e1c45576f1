// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const pingTimeout = 2 * time.Second

// Health はプロセス生存確認用の /healthz エンドポイントを処理します。
// 依存先には触れず、キャッシュを防止して即座に応答します。
func Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Pinger は依存先（DBなど）の疎通確認を定義します。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// StatusHandler は /health と /test を提供します。
type StatusHandler struct {
	db  Pinger
	now func() time.Time
}

// NewStatusHandler はStatusHandlerを生成します。dbがnilの場合は疎通確認を省略します。
func NewStatusHandler(db Pinger) *StatusHandler {
	return &StatusHandler{db: db, now: time.Now}
}

// Health はDB疎通を含むヘルスチェックです。
//
// エンドポイント: GET /health
func (h *StatusHandler) Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			slog.Error("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "ERROR", "message": "Database unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Server is healthy"})
}

// Test はサーバーの稼働確認とサーバー時刻を返します。
//
// エンドポイント: GET /test
func (h *StatusHandler) Test(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Server is working!",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
	})
}
