// Package api реализует HTTP API поверх net/http ServeMux.
//
// Маршруты:
//   - POST /api/v1/posts                    — запланировать публикацию
//   - GET  /api/v1/posts                    — список постов
//   - GET  /api/v1/posts/{id}               — пост по ID
//   - GET  /api/v1/posts/{id}/submissions   — цепочки доставки поста
//   - POST /api/v1/posts/{id}/submissions   — доставка на ещё одну площадку
//   - GET  /api/v1/submissions              — заявки с фильтрацией
//   - GET  /api/v1/submissions/{id}         — заявка по ID
//   - POST /api/v1/posts/{id}/analytics     — записать показатели
//   - GET  /api/v1/posts/{id}/analytics     — показатели поста
//
// Ответы единообразны: {"data": ...} для успеха,
// {"error": {"code", "message"}} для ошибок.
package api
