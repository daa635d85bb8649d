package scheduler

import "errors"

// Ошибки планировщика.
var (
	// ErrUnknownVenue — площадка не зарегистрирована в Registry.
	ErrUnknownVenue = errors.New("unknown venue")

	// ErrPostNotFound — пост не найден в хранилище.
	ErrPostNotFound = errors.New("post not found")
)
