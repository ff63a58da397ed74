// Package smtp оборачивает отправку почты в интерфейсы,
// чтобы сервис уведомлений можно было тестировать без живого сервера.
package smtp

import "io"

// Client повторяет шаги SMTP-сессии, которые использует отправка письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface открывает SMTP-сессию и сообщает адрес отправителя.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
