// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import "errors"

// ErrDuplicate is returned when an insert would violate a unique constraint
// (email, username, case number). Implementations translate their driver's
// duplicate-key error into this sentinel.
var ErrDuplicate = errors.New("duplicate key")

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
