package domain

// SubmissionStatus — статус попытки доставки.
//
// Жизненный цикл:
//
//	SCHEDULED       → IN_PROGRESS → SUBMITTED
//	                              ↘ FAILED
//	                              ↘ SUPERSEDED (новая RETRY_SCHEDULED строка продолжает цепочку)
//	RETRY_SCHEDULED → IN_PROGRESS → ... (аналогично)
//
// SUBMITTED, FAILED и SUPERSEDED — финальные статусы: строка с таким
// статусом больше никогда не изменяется. Активное ожидание всегда
// несёт ровно одна строка цепочки — последняя.
type SubmissionStatus string

const (
	// StatusScheduled — submission ожидает первой попытки доставки.
	StatusScheduled SubmissionStatus = "SCHEDULED"

	// StatusRetryScheduled — submission ожидает повторной попытки.
	// Такая строка всегда последняя в своей цепочке.
	StatusRetryScheduled SubmissionStatus = "RETRY_SCHEDULED"

	// StatusInProgress — submission захвачен dispatcher'ом и
	// доставляется прямо сейчас. Защищает от двойной доставки
	// при нескольких конкурентных dispatcher'ах.
	StatusInProgress SubmissionStatus = "IN_PROGRESS"

	// StatusSubmitted — доставка успешна. Финальный статус.
	StatusSubmitted SubmissionStatus = "SUBMITTED"

	// StatusFailed — доставка не удалась и попытки исчерпаны
	// (или ошибка не допускает повтора). Финальный статус.
	StatusFailed SubmissionStatus = "FAILED"

	// StatusSuperseded — попытка не удалась, но цепочку продолжила
	// новая строка. Хранит ошибку попытки (audit trail) и больше
	// не выбирается на доставку. Финальный статус.
	StatusSuperseded SubmissionStatus = "SUPERSEDED"
)

// IsTerminal возвращает true, если статус финальный.
func (s SubmissionStatus) IsTerminal() bool {
	switch s {
	case StatusSubmitted, StatusFailed, StatusSuperseded:
		return true
	default:
		return false
	}
}

// IsPending возвращает true, если submission ждёт доставки
// (может быть выбран как due).
func (s SubmissionStatus) IsPending() bool {
	return s == StatusScheduled || s == StatusRetryScheduled
}

// CanTransitionTo проверяет допустимость перехода статуса.
// Из финального статуса переходов нет.
func (s SubmissionStatus) CanTransitionTo(next SubmissionStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case StatusScheduled, StatusRetryScheduled:
		return next == StatusInProgress || next == StatusSubmitted ||
			next == StatusFailed || next == StatusSuperseded
	case StatusInProgress:
		// RETRY_SCHEDULED — возврат захваченной, но не доставленной
		// заявки обратно в очередь (stale claim).
		return next == StatusSubmitted || next == StatusFailed ||
			next == StatusSuperseded || next == StatusRetryScheduled
	default:
		return false
	}
}

// String возвращает строковое представление статуса.
func (s SubmissionStatus) String() string {
	return string(s)
}

// ParseSubmissionStatus парсит строку в SubmissionStatus.
// Неизвестное значение возвращает пустой статус и ok=false.
func ParseSubmissionStatus(s string) (SubmissionStatus, bool) {
	switch SubmissionStatus(s) {
	case StatusScheduled, StatusRetryScheduled, StatusInProgress, StatusSubmitted, StatusFailed, StatusSuperseded:
		return SubmissionStatus(s), true
	default:
		return "", false
	}
}
