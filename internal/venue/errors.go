package venue

import (
	"errors"
	"fmt"
)

// Ошибки площадок.
var (
	// ErrUnknownVenue — площадка не зарегистрирована в реестре.
	ErrUnknownVenue = errors.New("unknown venue")
)

// TransientError — временная ошибка доставки (сеть, таймаут,
// rate-limit). Submission с такой ошибкой попадает в retry-цикл.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient delivery error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PermanentError — постоянная ошибка доставки (невалидный payload,
// отозванный токен). Повторять бессмысленно: submission сразу
// переводится в FAILED, не расходуя retry-бюджет.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent delivery error: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Transient оборачивает ошибку как временную.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// Permanent оборачивает ошибку как постоянную.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent возвращает true, если ошибка помечена как постоянная.
// Неклассифицированные ошибки считаются временными: это безопасное
// направление — лишний retry дешевле потерянной публикации.
func IsPermanent(err error) bool {
	var perm *PermanentError
	return errors.As(err, &perm)
}
