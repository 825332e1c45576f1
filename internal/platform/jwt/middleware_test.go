package jwtmw

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo_backend/internal/feature/auth/domain/entity"
	"todo_backend/internal/feature/auth/usecase"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockUserFinder is a mock implementation of the UserFinder interface.
type mockUserFinder struct {
	FindByIDFunc func(ctx context.Context, id uint) (*entity.User, error)
}

// FindByID is the mock implementation of the FindByID method.
func (m *mockUserFinder) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, usecase.ErrUserNotFound
}

// existingUsers returns a finder that knows the given users.
func existingUsers(users ...*entity.User) *mockUserFinder {
	return &mockUserFinder{
		FindByIDFunc: func(_ context.Context, id uint) (*entity.User, error) {
			for _, u := range users {
				if u.ID == id {
					return u, nil
				}
			}
			return nil, usecase.ErrUserNotFound
		},
	}
}

// runGate executes the middleware against a request with the given cookie value.
func runGate(t *testing.T, codec *Codec, users UserFinder, cookie *http.Cookie) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		c.Request.AddCookie(cookie)
	}

	AuthRequired(codec, users)(c)
	return w, c
}

func messageOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["message"]
}

// TestAuthRequired_MissingCookie はCookieがない場合に401が返されることを検証します。
func TestAuthRequired_MissingCookie(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"empty cookie", &http.Cookie{Name: CookieName, Value: ""}},
		{"other cookie only", &http.Cookie{Name: "session", Value: "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := runGate(t, codec, existingUsers(), tt.cookie)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.True(t, c.IsAborted())
			assert.Equal(t, "Not authorized, no token", messageOf(t, w))
			_, ok := IdentityFrom(c)
			assert.False(t, ok)
		})
	}
}

// TestAuthRequired_InvalidToken は不正なトークン（改ざん・期限切れ等）で401が返されることを検証します。
func TestAuthRequired_InvalidToken(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)
	finder := &mockUserFinder{
		FindByIDFunc: func(context.Context, uint) (*entity.User, error) {
			t.Error("store must not be consulted for an invalid token")
			return nil, nil
		},
	}

	expired, err := codec.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).Issue(1)
	require.NoError(t, err)
	foreign, err := NewCodec("wrong-secret", time.Hour).Issue(1)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"malformed token", "not.a.valid.token"},
		{"random string", "randomstring"},
		{"wrong secret", foreign},
		{"expired token", expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := runGate(t, codec, finder, &http.Cookie{Name: CookieName, Value: tt.token})

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.True(t, c.IsAborted())
			assert.Equal(t, "Not authorized, token failed", messageOf(t, w))
		})
	}
}

// TestAuthRequired_DeletedUser はトークンは有効でもユーザーが削除済みの場合に401が返されることを検証します。
func TestAuthRequired_DeletedUser(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)
	token, err := codec.Issue(10)
	require.NoError(t, err)

	w, c := runGate(t, codec, existingUsers(), &http.Cookie{Name: CookieName, Value: token})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
	assert.Equal(t, "Not authorized, user not found", messageOf(t, w))
}

// TestAuthRequired_StoreFailure はストア障害時に詳細を隠して500が返されることを検証します。
func TestAuthRequired_StoreFailure(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)
	token, err := codec.Issue(10)
	require.NoError(t, err)

	finder := &mockUserFinder{
		FindByIDFunc: func(context.Context, uint) (*entity.User, error) {
			return nil, errors.New("connection reset by peer")
		},
	}

	w, c := runGate(t, codec, finder, &http.Cookie{Name: CookieName, Value: token})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, c.IsAborted())
	assert.Equal(t, "Server error", messageOf(t, w))
}

// TestAuthRequired_ValidToken は有効なトークンでリクエストが通過し、コンテキストにIdentityが設定されることを検証します。
func TestAuthRequired_ValidToken(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)
	createdAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	users := existingUsers(
		&entity.User{ID: 1, Name: "Ann", Email: "a@x.com", Password: "digest", CreatedAt: createdAt},
		&entity.User{ID: 42, Name: "Bob", Email: "b@x.com", Password: "digest", CreatedAt: createdAt},
	)

	tests := []struct {
		name   string
		userID uint
		want   Identity
	}{
		{"user id 1", 1, Identity{UserID: 1, Name: "Ann", Email: "a@x.com", CreatedAt: createdAt}},
		{"user id 42", 42, Identity{UserID: 42, Name: "Bob", Email: "b@x.com", CreatedAt: createdAt}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := codec.Issue(tt.userID)
			require.NoError(t, err)

			w, c := runGate(t, codec, users, &http.Cookie{Name: CookieName, Value: token})

			require.False(t, c.IsAborted(), "response: %s", w.Body.String())
			got, ok := IdentityFrom(c)
			require.True(t, ok, "expected identity to be set in context")
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestAuthRequired_HandlerNotInvokedWhenRejected は拒否時に後続ハンドラーが実行されないことを検証します。
func TestAuthRequired_HandlerNotInvokedWhenRejected(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)
	called := false

	r := gin.New()
	r.GET("/private", AuthRequired(codec, existingUsers()), func(c *gin.Context) {
		called = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestIdentityFrom_WrongType(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(contextIdentity, "not an identity")

	_, ok := IdentityFrom(c)
	assert.False(t, ok)
}
