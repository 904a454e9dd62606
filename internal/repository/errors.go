package repository

import "errors"

// Common repository errors
var (
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrTaskNotFound is returned when a task is not found
	ErrTaskNotFound = errors.New("task not found")

	// ErrPhotoNotFound is returned when a task photo is not found
	ErrPhotoNotFound = errors.New("photo not found")

	// ErrCommentNotFound is returned when a task comment is not found
	ErrCommentNotFound = errors.New("comment not found")
)
