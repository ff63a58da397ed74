package rabbitmq

import "github.com/streadway/amqp"

// EventPublisher оборачивает канал AMQP для публикации событий
// сервисами, которым не нужен доступ к каналу напрямую.
type EventPublisher struct {
	ch *amqp.Channel
}

// NewEventPublisher создаёт публикатор поверх открытого канала.
func NewEventPublisher(ch *amqp.Channel) *EventPublisher {
	return &EventPublisher{ch: ch}
}

// Publish публикует сообщение в обменник с указанным ключом маршрутизации.
func (p *EventPublisher) Publish(exchange, routingKey string, message any) error {
	return PublishMessage(p.ch, exchange, routingKey, message)
}
