// Package dto defines data transfer objects for the todos feature's HTTP transport layer.
package dto

import (
	"strings"

	"todo_backend/internal/feature/todos/domain/entity"
)

// CreateTodoReq is the request body for POST /todos/add.
type CreateTodoReq struct {
	TodoDescription string `json:"todo_description"`
	Completed       bool   `json:"completed"`
}

// UpdateTodoReq is the request body for PUT /todos/:id.
// todo_description wins over description; both are optional.
type UpdateTodoReq struct {
	TodoDescription *string `json:"todo_description"`
	Description     *string `json:"description"`
	Completed       *bool   `json:"completed"`
}

// Patch converts the request into a domain patch. Blank descriptions count as absent.
func (r UpdateTodoReq) Patch() entity.Patch {
	var p entity.Patch
	for _, d := range []*string{r.TodoDescription, r.Description} {
		if d != nil && strings.TrimSpace(*d) != "" {
			p.Description = d
			break
		}
	}
	p.Completed = r.Completed
	return p
}

// TodoRes is the JSON form of a todo.
type TodoRes struct {
	ID          uint   `json:"todo_id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	UserID      uint   `json:"user_id"`
}

// NewTodoRes converts an entity into its response form.
func NewTodoRes(t *entity.Todo) TodoRes {
	return TodoRes{
		ID:          t.ID,
		Description: t.Description,
		Completed:   t.Completed,
		UserID:      t.UserID,
	}
}

// NewTodoList converts a slice of entities, never returning nil.
func NewTodoList(todos []entity.Todo) []TodoRes {
	out := make([]TodoRes, 0, len(todos))
	for i := range todos {
		out = append(out, NewTodoRes(&todos[i]))
	}
	return out
}
