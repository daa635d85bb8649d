// Package config загружает конфигурацию сервисов из переменных
// окружения (env-теги + значения по умолчанию), с опциональным
// .env файлом для локальной разработки.
package config
