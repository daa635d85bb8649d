// Package venue содержит адаптеры внешних площадок публикации.
//
// Каждый адаптер реализует интерфейс Venue: преобразует обобщённый
// PostPayload в платформенный формат запроса и отправляет его по HTTP.
// Scheduler работает с площадками единообразно через Registry.
//
// Структура:
//   - venue.go    — интерфейс Venue и Registry
//   - errors.go   — классификация ошибок доставки (transient/permanent)
//   - client.go   — общий HTTP-клиент с bearer-авторизацией
//   - youtube.go  — адаптер YouTube
//   - twitter.go  — адаптер Twitter/X
//   - telegram.go — адаптер Telegram
//
// Классификация ошибок определяет поведение retry-цикла: transient
// ошибки (сеть, 429, 5xx) расходуют retry-бюджет, permanent (4xx)
// сразу завершают цепочку как FAILED.
package venue
