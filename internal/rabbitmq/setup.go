package rabbitmq

// NotificationsExchange — обменник для всех почтовых уведомлений воронки.
const NotificationsExchange = "notifications"

// Ключи маршрутизации уведомлений.
const (
	RoutingPurchaseConfirmation = "purchase.confirmation"
	RoutingPartnerApplication   = "partner.application"
)

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые обслуживает sender.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.purchase", RoutingKey: RoutingPurchaseConfirmation},
		{QueueName: "notification.partner", RoutingKey: RoutingPartnerApplication},
	}
}
