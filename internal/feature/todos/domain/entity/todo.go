// Package entity defines the domain entities for the todos feature.
package entity

import (
	"time"

	authentity "todo_backend/internal/feature/auth/domain/entity"
)

// Todo is a task record owned by exactly one user.
// UserID is set at creation and never reassigned.
type Todo struct {
	ID          uint   `gorm:"column:todo_id;primaryKey"`
	Description string `gorm:"size:1024;not null"`
	Completed   bool   `gorm:"not null;default:false"`
	UserID      uint   `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Owner enforces the users(id) foreign key with cascading delete.
	// It is never loaded; ownership checks go through UserID.
	Owner *authentity.User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM.
func (Todo) TableName() string {
	return "todo"
}

// Patch holds the optional fields of a todo update.
// A nil field is left untouched.
type Patch struct {
	Description *string
	Completed   *bool
}

// IsEmpty reports whether the patch carries no field to update.
func (p Patch) IsEmpty() bool {
	return p.Description == nil && p.Completed == nil
}
