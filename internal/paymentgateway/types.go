package paymentgateway

// CreateOrderRequest — запрос на создание заказа в платёжном шлюзе.
// Сумма передаётся в минорных единицах валюты (пайсах).
type CreateOrderRequest struct {
	UserID       string `json:"userId"`
	LicenseID    string `json:"licenseId"`
	BillingCycle string `json:"billingCycle"`
	Amount       int    `json:"amount"`
}

// CreateOrderResponse — заказ, созданный шлюзом. Key — публичный ключ
// для инициализации платёжного виджета на клиенте.
type CreateOrderResponse struct {
	OrderID  string `json:"orderId"`
	Key      string `json:"key"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
}

// VerifyPaymentRequest — поля подписи, которые платёжный виджет передаёт
// в обратный вызов после оплаты. Имена полей заданы контрактом шлюза.
type VerifyPaymentRequest struct {
	TransactionID     string `json:"transactionId"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// VerifyPaymentResponse — результат проверки оплаты на стороне шлюза.
type VerifyPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Transaction — детали транзакции по её идентификатору.
type Transaction struct {
	TransactionID string `json:"transactionId"`
	OrderID       string `json:"orderId"`
	Status        string `json:"status"`
	Amount        int    `json:"amount"`
	Currency      string `json:"currency"`
}
