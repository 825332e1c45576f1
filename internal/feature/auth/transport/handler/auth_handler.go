// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo_backend/internal/feature/auth/domain/entity"
	"todo_backend/internal/feature/auth/transport/http/dto"
	"todo_backend/internal/feature/auth/usecase"
	"todo_backend/internal/platform/httperr"
	jwtmw "todo_backend/internal/platform/jwt"
)

// レスポンスメッセージ
const (
	msgMissingFields        = "Please provide all the required fields"
	msgMissingProfileFields = "Please provide all required fields"
	msgUserExists           = "User already exists"
	msgInvalidCredentials   = "Invalid credentials"
	msgEmailTaken           = "Email is already taken"
	msgUserNotFound         = "User not found"
	msgIncorrectPassword    = "Current password is incorrect"
	msgPasswordTooLong      = "Password must be at most 72 bytes"
	msgPasswordUpdated      = "Password updated successfully"
	msgAccountDeleted       = "Account deleted successfully"
	msgLoggedOut            = "Logged out successfully"
	msgUnauthorized         = "Not authorized"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は新規ユーザーを登録し、セッショントークンを返します。
	Register(ctx context.Context, name, email, password string) (*entity.User, string, error)
	// Login はユーザーを認証し、成功時にセッショントークンを返します。
	Login(ctx context.Context, email, password string) (*entity.User, string, error)
	// UpdateProfile は名前とメールアドレスを更新します。
	UpdateProfile(ctx context.Context, userID uint, name, email string) (*entity.User, error)
	// ChangePassword は現在のパスワードを検証してから変更します。
	ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
	// DeleteAccount は所有タスクとユーザーを削除します。
	DeleteAccount(ctx context.Context, userID uint) error
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
// AuthUsecaseインターフェースに依存し、JSONリクエスト/レスポンスを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタで、外部からAuthUsecaseを注入します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// identity はゲートが設定した呼び出し元を取得します。
// ゲートを通らずに呼ばれた場合は401を返してfalseを返します。
func identity(c *gin.Context) (jwtmw.Identity, bool) {
	id, ok := jwtmw.IdentityFrom(c)
	if !ok {
		httperr.Abort(c, http.StatusUnauthorized, msgUnauthorized)
	}
	return id, ok
}

// Register はユーザー登録APIエンドポイントを処理します。
// - 必須項目不足、メール重複時は400を返却
// - 成功時はセッションCookieを設定し201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		httperr.Respond(c, http.StatusBadRequest, msgMissingFields)
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingFields):
			httperr.Respond(c, http.StatusBadRequest, msgMissingFields)
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			slog.Warn("register failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
			httperr.Respond(c, http.StatusBadRequest, msgUserExists)
		case errors.Is(err, usecase.ErrPasswordTooLong):
			httperr.Respond(c, http.StatusBadRequest, msgPasswordTooLong)
		default:
			httperr.Internal(c, "register", err)
		}
		return
	}

	setSessionCookie(c, token)
	slog.Info("user registration successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.NewUserEnvelope(user))
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - 認証失敗時はユーザー列挙を防ぐため常に同じ400を返却
// - 認証成功時はセッションCookieを設定し200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		httperr.Respond(c, http.StatusBadRequest, msgMissingFields)
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingFields):
			httperr.Respond(c, http.StatusBadRequest, msgMissingFields)
		case errors.Is(err, usecase.ErrInvalidCredentials):
			// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
			slog.Warn("login failed", "email", req.Email, "remote_addr", c.ClientIP())
			httperr.Respond(c, http.StatusBadRequest, msgInvalidCredentials)
		default:
			httperr.Internal(c, "login", err)
		}
		return
	}

	setSessionCookie(c, token)
	slog.Info("user login successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.NewUserEnvelope(user))
}

// Me はゲートが解決したユーザー情報を返します。
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, id)
}

// UpdateProfile は名前とメールアドレスを更新します。
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req dto.ProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Respond(c, http.StatusBadRequest, msgMissingProfileFields)
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), id.UserID, req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingFields):
			httperr.Respond(c, http.StatusBadRequest, msgMissingProfileFields)
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			httperr.Respond(c, http.StatusBadRequest, msgEmailTaken)
		case errors.Is(err, usecase.ErrUserNotFound):
			httperr.Respond(c, http.StatusNotFound, msgUserNotFound)
		default:
			httperr.Internal(c, "update profile", err)
		}
		return
	}

	c.JSON(http.StatusOK, dto.NewUserEnvelope(user))
}

// ChangePassword は現在のパスワードを検証した上でパスワードを変更します。
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req dto.PasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Respond(c, http.StatusBadRequest, msgMissingProfileFields)
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), id.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingFields):
			httperr.Respond(c, http.StatusBadRequest, msgMissingProfileFields)
		case errors.Is(err, usecase.ErrIncorrectPassword):
			slog.Warn("password change rejected", "user_id", id.UserID, "remote_addr", c.ClientIP())
			httperr.Respond(c, http.StatusBadRequest, msgIncorrectPassword)
		case errors.Is(err, usecase.ErrPasswordTooLong):
			httperr.Respond(c, http.StatusBadRequest, msgPasswordTooLong)
		case errors.Is(err, usecase.ErrUserNotFound):
			httperr.Respond(c, http.StatusNotFound, msgUserNotFound)
		default:
			httperr.Internal(c, "change password", err)
		}
		return
	}

	slog.Info("password changed", "user_id", id.UserID)
	httperr.Respond(c, http.StatusOK, msgPasswordUpdated)
}

// DeleteAccount は所有タスクとアカウントを削除し、セッションCookieを消去します。
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	if err := h.auth.DeleteAccount(c.Request.Context(), id.UserID); err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			httperr.Respond(c, http.StatusNotFound, msgUserNotFound)
			return
		}
		httperr.Internal(c, "delete account", err)
		return
	}

	clearSessionCookie(c)
	slog.Info("account deleted", "user_id", id.UserID)
	httperr.Respond(c, http.StatusOK, msgAccountDeleted)
}

// Logout はセッションCookieを無条件に消去します。
func (h *AuthHandler) Logout(c *gin.Context) {
	clearSessionCookie(c)
	httperr.Respond(c, http.StatusOK, msgLoggedOut)
}
