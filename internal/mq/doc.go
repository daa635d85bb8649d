// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - post.scheduled        — публикация запланирована, диспетчер может проснуться
//   - submission.completed  — заявка достигла терминального статуса
//
// Exchanges:
//   - postline.posts        — события постов
//   - postline.submissions  — события заявок
//   - postline.dlq          — dead letter queue
package mq
