// Package handler はtodosフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"todo_backend/internal/feature/todos/domain/entity"
	"todo_backend/internal/feature/todos/transport/http/dto"
	"todo_backend/internal/feature/todos/usecase"
	"todo_backend/internal/platform/httperr"
	jwtmw "todo_backend/internal/platform/jwt"
)

const (
	msgNotFound           = "Todo not found or unauthorized"
	msgMissingDescription = "Todo description is required"
	msgNoFields           = "No valid fields to update"
	msgInvalidBody        = "Invalid request body"
	msgDeleted            = "Todo deleted successfully"
	msgUnauthorized       = "Not authorized"
)

// TodoUsecase はタスク操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type TodoUsecase interface {
	Create(ctx context.Context, ownerID uint, description string, completed bool) (*entity.Todo, error)
	List(ctx context.Context, ownerID uint) ([]entity.Todo, error)
	Update(ctx context.Context, ownerID, id uint, patch entity.Patch) (*entity.Todo, error)
	Complete(ctx context.Context, ownerID, id uint) (*entity.Todo, error)
	Delete(ctx context.Context, ownerID, id uint) error
}

// TodoHandler はタスクのHTTPリクエストを処理します。
// 所有者は常にゲートが解決したIdentityから取り、リクエストボディからは受け取りません。
type TodoHandler struct {
	uc TodoUsecase
}

// NewTodoHandler は指定されたusecaseでTodoHandlerの新しいインスタンスを生成します。
func NewTodoHandler(uc TodoUsecase) *TodoHandler {
	return &TodoHandler{uc: uc}
}

func owner(c *gin.Context) (uint, bool) {
	id, ok := jwtmw.IdentityFrom(c)
	if !ok {
		httperr.Abort(c, http.StatusUnauthorized, msgUnauthorized)
		return 0, false
	}
	return id.UserID, true
}

// todoID は:idパラメータを解析します。
// 数値でないIDも存在しないIDと同じ404として扱います。
func todoID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		httperr.Respond(c, http.StatusNotFound, msgNotFound)
		return 0, false
	}
	return uint(id), true
}

// writeErr はusecaseのエラーをHTTPレスポンスに変換します。
func writeErr(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, usecase.ErrTodoNotFound):
		httperr.Respond(c, http.StatusNotFound, msgNotFound)
	case errors.Is(err, usecase.ErrMissingDescription):
		httperr.Respond(c, http.StatusBadRequest, msgMissingDescription)
	case errors.Is(err, usecase.ErrNoFieldsToUpdate):
		httperr.Respond(c, http.StatusBadRequest, msgNoFields)
	default:
		httperr.Internal(c, op, err)
	}
}

// Create はタスクを作成します。
//
// エンドポイント: POST /todos/add
func (h *TodoHandler) Create(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	var req dto.CreateTodoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create todo: malformed body", "error", err, "remote_addr", c.ClientIP())
		httperr.Respond(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	todo, err := h.uc.Create(c.Request.Context(), ownerID, req.TodoDescription, req.Completed)
	if err != nil {
		writeErr(c, "create todo", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoRes(todo))
}

// List は呼び出し元のタスク一覧を返します。
//
// エンドポイント: GET /todos/
func (h *TodoHandler) List(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	todos, err := h.uc.List(c.Request.Context(), ownerID)
	if err != nil {
		writeErr(c, "list todos", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoList(todos))
}

// Update は説明文・完了フラグを更新します。
//
// エンドポイント: PUT /todos/:id
func (h *TodoHandler) Update(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	id, ok := todoID(c)
	if !ok {
		return
	}

	var req dto.UpdateTodoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update todo: malformed body", "error", err, "remote_addr", c.ClientIP())
		httperr.Respond(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	todo, err := h.uc.Update(c.Request.Context(), ownerID, id, req.Patch())
	if err != nil {
		writeErr(c, "update todo", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoRes(todo))
}

// Complete はタスクを完了にします。
//
// エンドポイント: PUT /todos/complete/:id
func (h *TodoHandler) Complete(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	id, ok := todoID(c)
	if !ok {
		return
	}

	todo, err := h.uc.Complete(c.Request.Context(), ownerID, id)
	if err != nil {
		writeErr(c, "complete todo", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoRes(todo))
}

// Delete はタスクを削除します。
//
// エンドポイント: DELETE /todos/:id
func (h *TodoHandler) Delete(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	id, ok := todoID(c)
	if !ok {
		return
	}

	if err := h.uc.Delete(c.Request.Context(), ownerID, id); err != nil {
		writeErr(c, "delete todo", err)
		return
	}
	httperr.Respond(c, http.StatusOK, msgDeleted)
}
