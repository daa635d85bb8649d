// Package scheduler реализует жизненный цикл публикации постов.
//
// Scheduler принимает запросы на публикацию, разрешает время через
// окно публикации (domain.PostingWindow) и ведёт каждую заявку по
// state machine до финального статуса:
//
//	SCHEDULED / RETRY_SCHEDULED → IN_PROGRESS → SUBMITTED | FAILED
//	                                          ↘ SUPERSEDED (+ новая RETRY_SCHEDULED строка)
//
// Временные ошибки доставки тратят бюджет повторов (MaxRetries),
// постоянные завершают цепочку сразу. Повторная попытка — всегда
// новая строка: прежняя помечается SUPERSEDED с текстом ошибки и
// больше не выбирается на доставку, история попыток не переписывается.
//
// Зависимости от хранилища выражены узкими интерфейсами PostStore и
// SubmissionStore; в production их реализуют репозитории internal/repo,
// в тестах — in-memory фейки.
package scheduler
