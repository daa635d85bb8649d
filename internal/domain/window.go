package domain

import (
	"fmt"
	"time"
)

// PostingWindow — разрешённый интервал часов для публикации.
//
// Интервал полуоткрытый: [StartHour, EndHour), часы 0-23, единая
// референсная зона — UTC. Окна через полночь (start >= end)
// не поддерживаются и отклоняются конструктором.
type PostingWindow struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// NewPostingWindow создаёт окно публикации с валидацией границ.
func NewPostingWindow(startHour, endHour int) (PostingWindow, error) {
	if startHour < 0 || startHour > 23 {
		return PostingWindow{}, fmt.Errorf("%w: start_hour %d", ErrInvalidWindow, startHour)
	}
	if endHour < 1 || endHour > 24 {
		return PostingWindow{}, fmt.Errorf("%w: end_hour %d", ErrInvalidWindow, endHour)
	}
	if startHour >= endHour {
		return PostingWindow{}, fmt.Errorf("%w: start_hour %d >= end_hour %d (overnight windows are not supported)",
			ErrInvalidWindow, startHour, endHour)
	}
	return PostingWindow{StartHour: startHour, EndHour: endHour}, nil
}

// Contains проверяет, попадает ли момент внутрь окна.
func (w PostingWindow) Contains(t time.Time) bool {
	hour := t.UTC().Hour()
	return hour >= w.StartHour && hour < w.EndHour
}

// NextAvailable возвращает ближайший момент внутри окна,
// не раньше requested.
//
// Чистая функция: результат полностью определяется окном и requested,
// часы вычисляются в UTC.
//
//   - requested внутри [start, end)  → сам requested;
//   - requested раньше start         → тот же день, start:00:00;
//   - requested в end или позже      → следующий день, start:00:00.
func (w PostingWindow) NextAvailable(requested time.Time) time.Time {
	current := requested.UTC()

	if w.Contains(current) {
		return current
	}

	windowStart := time.Date(
		current.Year(), current.Month(), current.Day(),
		w.StartHour, 0, 0, 0, time.UTC,
	)

	if current.Before(windowStart) {
		return windowStart
	}
	return windowStart.AddDate(0, 0, 1)
}

// String возвращает окно в виде "[9, 17)".
func (w PostingWindow) String() string {
	return fmt.Sprintf("[%d, %d)", w.StartHour, w.EndHour)
}
