// Package service defines the backend-agnostic interface for to-do operations.
package service

import (
	"context"
	"errors"
	"net/http"
)

// Service defines the interface for to-do backend operations.
// Commands talk to a server only through this interface.
type Service interface {
	// ListLists returns lists in creation order, filtered and paged by q.
	ListLists(ctx context.Context, q Query) ([]List, error)

	// GetList returns a list with all its tasks.
	GetList(ctx context.Context, listID string) (List, error)

	// CreateList creates an empty list and returns its id.
	CreateList(ctx context.Context, name, description string) (string, error)

	// CreateTask adds an open task to a list and returns its id.
	CreateTask(ctx context.Context, listID, name string) (string, error)

	// GetTask returns one task of a list.
	GetTask(ctx context.Context, listID, taskID string) (Task, error)

	// CompleteTask sets the completed flag of a task. The returned Task
	// carries at least ID and Completed.
	CompleteTask(ctx context.Context, listID, taskID string, completed bool) (Task, error)
}

// StatusError is an error that carries an HTTP status code.
type StatusError interface {
	error
	Status() int
}

// StatusOf returns the HTTP status carried by err, or 0 if it has none.
func StatusOf(err error) int {
	var se StatusError
	if errors.As(err, &se) {
		return se.Status()
	}
	return 0
}

// IsRequestError reports whether err was caused by the request itself
// (bad input or a missing list or task) rather than the backend.
func IsRequestError(err error) bool {
	status := StatusOf(err)
	return status >= http.StatusBadRequest && status < http.StatusInternalServerError
}
