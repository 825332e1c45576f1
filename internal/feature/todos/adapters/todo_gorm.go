// Package adapters provides repository implementations for the todos feature.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"todo_backend/internal/feature/todos/domain/entity"
	"todo_backend/internal/feature/todos/usecase"
)

// ownedBy is the ownership filter every single-row statement carries.
const ownedBy = "todo_id = ? AND user_id = ?"

// todoGorm is a GORM implementation of usecase.TodoRepository.
type todoGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure todoGorm implements TodoRepository.
var _ usecase.TodoRepository = (*todoGorm)(nil)

// NewTodoGorm creates a new instance of todoGorm.
func NewTodoGorm(db *gorm.DB) *todoGorm {
	return &todoGorm{db: db}
}

// Create inserts a todo. The owner association is never written.
func (r *todoGorm) Create(ctx context.Context, todo *entity.Todo) error {
	if todo == nil {
		return errors.New("todo is nil")
	}
	return r.db.WithContext(ctx).Omit("Owner").Create(todo).Error
}

// ListByOwner returns the owner's todos, newest first.
func (r *todoGorm) ListByOwner(ctx context.Context, ownerID uint) ([]entity.Todo, error) {
	todos := make([]entity.Todo, 0)
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("todo_id DESC").
		Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

// findOwned reads a todo through the ownership filter.
func (r *todoGorm) findOwned(ctx context.Context, ownerID, id uint) (*entity.Todo, error) {
	var todo entity.Todo
	if err := r.db.WithContext(ctx).Where(ownedBy, id, ownerID).First(&todo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrTodoNotFound
		}
		return nil, err
	}
	return &todo, nil
}

// UpdateOwned applies patch with a single conditional UPDATE.
// Zero affected rows means the todo is missing or not owned by ownerID.
func (r *todoGorm) UpdateOwned(ctx context.Context, ownerID, id uint, patch entity.Patch) (*entity.Todo, error) {
	fields := map[string]interface{}{}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Completed != nil {
		fields["completed"] = *patch.Completed
	}
	if len(fields) == 0 {
		return nil, usecase.ErrNoFieldsToUpdate
	}

	result := r.db.WithContext(ctx).
		Model(&entity.Todo{}).
		Where(ownedBy, id, ownerID).
		Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, usecase.ErrTodoNotFound
	}

	return r.findOwned(ctx, ownerID, id)
}

// DeleteOwned removes a todo with a single conditional DELETE.
func (r *todoGorm) DeleteOwned(ctx context.Context, ownerID, id uint) error {
	result := r.db.WithContext(ctx).Where(ownedBy, id, ownerID).Delete(&entity.Todo{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrTodoNotFound
	}
	return nil
}

// DeleteAllByOwner removes every todo of ownerID and reports how many were deleted.
// It is used by account deletion ahead of removing the user row.
func (r *todoGorm) DeleteAllByOwner(ctx context.Context, ownerID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Delete(&entity.Todo{})
	return result.RowsAffected, result.Error
}
