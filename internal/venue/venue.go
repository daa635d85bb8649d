package venue

import (
	"context"
	"fmt"
	"sort"

	"github.com/shaiso/Postline/internal/domain"
)

// Venue — интерфейс внешней площадки публикации.
//
// Реализации: YouTube, Twitter, Telegram. Адаптер отвечает за
// преобразование обобщённого payload в формат конкретной платформы
// и вызов её API.
//
// Любая ошибка Submit классифицируется адаптером как transient
// (сеть, rate-limit) или permanent (валидация, авторизация) —
// см. errors.go. Scheduler повторяет только transient-ошибки.
type Venue interface {
	// Name возвращает имя площадки ("youtube", "twitter", ...).
	Name() string

	// Submit доставляет payload на площадку.
	Submit(ctx context.Context, payload domain.PostPayload) error
}

// Registry — реестр площадок по имени.
type Registry struct {
	venues map[string]Venue
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{venues: make(map[string]Venue)}
}

// Register добавляет площадку в реестр.
func (r *Registry) Register(v Venue) {
	r.venues[v.Name()] = v
}

// Get возвращает площадку по имени.
func (r *Registry) Get(name string) (Venue, error) {
	v, ok := r.venues[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVenue, name)
	}
	return v, nil
}

// Has проверяет, зарегистрирована ли площадка.
func (r *Registry) Has(name string) bool {
	_, ok := r.venues[name]
	return ok
}

// Names возвращает отсортированный список зарегистрированных площадок.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.venues))
	for name := range r.venues {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
