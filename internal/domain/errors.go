package domain

import "errors"

// Ошибки доменного уровня.
var (
	// ErrInvalidWindow — некорректные границы окна публикации.
	ErrInvalidWindow = errors.New("invalid posting window")

	// ErrTerminalStatus — операция над строкой в финальном статусе.
	ErrTerminalStatus = errors.New("submission is in terminal status")
)
