// Package usecase implements the ownership-scoped business logic for the todos feature.
package usecase

import "errors"

var (
	// ErrTodoNotFound is returned when a todo does not exist or belongs to someone else.
	// The two cases are deliberately indistinguishable so ids of other users cannot be probed.
	ErrTodoNotFound = errors.New("todo not found or unauthorized")

	// ErrMissingDescription is returned when a todo is created without a description.
	ErrMissingDescription = errors.New("todo description is required")

	// ErrNoFieldsToUpdate is returned when an update carries neither description nor completed.
	ErrNoFieldsToUpdate = errors.New("no valid fields to update")
)
