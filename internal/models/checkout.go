package models

import "time"

// Состояния попытки оформления заказа. Переходы выполняются строго
// по порядку, первый сбой переводит попытку в StateFailed.
const (
	StateIdle            = "idle"
	StateCustomerSynced  = "customer_synced"
	StatePurchaseCreated = "purchase_created"
	StateOrderCreated    = "order_created"
	StateVerifying       = "verifying"
	StateCompleted       = "completed"
	StateFailed          = "failed"
)

// CheckoutAttempt — журнальная запись попытки покупки. Запись создаётся
// при создании покупки в системе лицензий и обновляется на каждом
// переходе конечного автомата. По transaction id к ней обращаются
// страница успешной оплаты и поддержка при разборе неполных оплат.
type CheckoutAttempt struct {
	ID            string       `json:"id"`             // Внутренний идентификатор записи (uuid)
	TransactionID string       `json:"transaction_id"` // Идентификатор транзакции системы лицензий
	OrderID       string       `json:"order_id"`       // Идентификатор заказа платёжного шлюза
	Email         string       `json:"email"`
	CompanyName   string       `json:"company_name"`
	LicenseID     string       `json:"license_id"`
	PlanName      string       `json:"plan_name"`
	BillingCycle  BillingCycle `json:"billing_cycle"`
	AmountTotal   int          `json:"amount_total"` // Итоговая сумма в рупиях
	Currency      string       `json:"currency"`
	Free          bool         `json:"free"`
	State         string       `json:"state"`
	FailureReason string       `json:"failure_reason,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// PurchaseConfirmation — событие для очереди уведомлений, публикуется
// после завершения оплаты. Потребитель отправляет письмо с подтверждением.
type PurchaseConfirmation struct {
	Email         string `json:"email"`
	CompanyName   string `json:"company_name"`
	PlanName      string `json:"plan_name"`
	BillingCycle  string `json:"billing_cycle"`
	AmountTotal   int    `json:"amount_total"`
	TransactionID string `json:"transaction_id"`
	Free          bool   `json:"free"`
}
