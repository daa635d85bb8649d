// Package dispatcher реализует цикл доставки due-заявок.
//
// Dispatcher периодически (по интервалу или cron-выражению) запускает
// scheduler.ProcessDueSubmissions и дополнительно просыпается по
// событию post.scheduled из RabbitMQ. Источник истины о работе —
// всегда база: событие лишь сокращает задержку между планированием
// и первой попыткой доставки.
package dispatcher
