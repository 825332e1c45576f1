package dto

import (
	"time"

	"todo_backend/internal/feature/auth/domain/entity"
)

// UserRes is the public projection of a user. It never carries the password digest.
type UserRes struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserEnvelope wraps a user as {"user": {...}}.
type UserEnvelope struct {
	User UserRes `json:"user"`
}

// NewUserEnvelope builds the response body for a user entity.
func NewUserEnvelope(u *entity.User) UserEnvelope {
	return UserEnvelope{User: UserRes{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}}
}
