package usecase

import (
	"context"
	"strings"

	"todo_backend/internal/feature/todos/domain/entity"
)

// TodoRepository はタスクの永続化層を抽象化します。
// 取得・更新・削除はすべて (todo_id, user_id) の組で絞り込み、他人のタスクには触れません。
type TodoRepository interface {
	// Create は新しいタスクを保存します。
	Create(ctx context.Context, todo *entity.Todo) error

	// ListByOwner は所有者のタスクをID降順で返します。
	ListByOwner(ctx context.Context, ownerID uint) ([]entity.Todo, error)

	// UpdateOwned は所有者が一致する場合のみ単一の条件付きUPDATEで更新します。
	// 対象行がない場合、ErrTodoNotFoundを返します。
	UpdateOwned(ctx context.Context, ownerID, id uint, patch entity.Patch) (*entity.Todo, error)

	// DeleteOwned は所有者が一致する場合のみ単一の条件付きDELETEで削除します。
	// 対象行がない場合、ErrTodoNotFoundを返します。
	DeleteOwned(ctx context.Context, ownerID, id uint) error
}

// todoUsecase はタスク操作のビジネスロジックを実装します。
type todoUsecase struct {
	todos TodoRepository
}

// NewTodoUsecase はtodoUsecaseの新しいインスタンスを生成します。
func NewTodoUsecase(todos TodoRepository) *todoUsecase {
	return &todoUsecase{todos: todos}
}

// Create は所有者のタスクを作成します。
func (u *todoUsecase) Create(ctx context.Context, ownerID uint, description string, completed bool) (*entity.Todo, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrMissingDescription
	}

	todo := &entity.Todo{
		Description: description,
		Completed:   completed,
		UserID:      ownerID,
	}
	if err := u.todos.Create(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// List は所有者のタスク一覧を返します。
func (u *todoUsecase) List(ctx context.Context, ownerID uint) ([]entity.Todo, error) {
	return u.todos.ListByOwner(ctx, ownerID)
}

// Update は説明文と完了フラグのうち指定されたものだけを更新します。
func (u *todoUsecase) Update(ctx context.Context, ownerID, id uint, patch entity.Patch) (*entity.Todo, error) {
	if patch.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}
	return u.todos.UpdateOwned(ctx, ownerID, id, patch)
}

// Complete はタスクを完了状態にします。
func (u *todoUsecase) Complete(ctx context.Context, ownerID, id uint) (*entity.Todo, error) {
	done := true
	return u.todos.UpdateOwned(ctx, ownerID, id, entity.Patch{Completed: &done})
}

// Delete は所有者のタスクを削除します。
func (u *todoUsecase) Delete(ctx context.Context, ownerID, id uint) error {
	return u.todos.DeleteOwned(ctx, ownerID, id)
}
