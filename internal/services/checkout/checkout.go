// Package checkout реализует оформление покупки тарифа: синхронизацию
// клиента, создание покупки в системе лицензий, заказ в платёжном шлюзе
// и проверку оплаты. Каждый шаг фиксируется в журнале попыток, поэтому
// прерванная оплата остаётся видимой для поддержки.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/geo-track/geotrack-home/internal/customersync"
	"github.com/geo-track/geotrack-home/internal/lib/sl"
	"github.com/geo-track/geotrack-home/internal/license"
	"github.com/geo-track/geotrack-home/internal/metrics"
	"github.com/geo-track/geotrack-home/internal/models"
	"github.com/geo-track/geotrack-home/internal/paymentgateway"
	"github.com/geo-track/geotrack-home/internal/pricing"
	"github.com/geo-track/geotrack-home/internal/rabbitmq"
)

// Currency — валюта всех покупок. Цены каталога заданы в рупиях,
// шлюз принимает суммы в пайсах.
const Currency = "INR"

var (
	// ErrTransactionDataMissing возвращается, когда система лицензий
	// создала покупку, но не вернула идентификатор транзакции или
	// пользователя. Продолжать оформление без них нельзя.
	ErrTransactionDataMissing = errors.New("purchase created without transaction data")

	// ErrOrderCreationFailed возвращается, когда платёжный шлюз не
	// вернул идентификатор заказа.
	ErrOrderCreationFailed = errors.New("payment order creation failed")

	// ErrVerificationFailed возвращается, когда проверка оплаты не
	// прошла: подпись не сошлась или шлюз отклонил платёж.
	ErrVerificationFailed = errors.New("payment verification failed")
)

// CustomerSyncClient определяет методы сервиса синхронизации клиентов.
type CustomerSyncClient interface {
	Exists(ctx context.Context, email string) (bool, error)
	Sync(ctx context.Context, reqParams customersync.SyncCustomerRequest) error
}

// LicenseClient определяет метод создания покупки в системе лицензий.
type LicenseClient interface {
	CreatePurchase(ctx context.Context, reqParams license.PurchaseRequest) (*license.PurchaseData, error)
}

// GatewayClient определяет методы платёжного шлюза.
type GatewayClient interface {
	CreateOrder(ctx context.Context, reqParams paymentgateway.CreateOrderRequest) (*paymentgateway.CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, reqParams paymentgateway.VerifyPaymentRequest) (*paymentgateway.VerifyPaymentResponse, error)
	Transaction(ctx context.Context, transactionID string) (*paymentgateway.Transaction, error)
}

// Journal определяет методы журнала попыток покупки.
type Journal interface {
	CreateAttempt(ctx context.Context, attempt models.CheckoutAttempt) error
	UpdateAttemptState(ctx context.Context, transactionID, state, orderID, failureReason string) error
	ReadAttempt(ctx context.Context, transactionID string) (*models.CheckoutAttempt, error)
}

// Publisher определяет публикацию событий в очередь уведомлений.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// CheckoutService — оркестратор оформления покупки.
type CheckoutService struct {
	customers CustomerSyncClient
	licenses  LicenseClient
	gateway   GatewayClient
	journal   Journal
	publisher Publisher
	log       *slog.Logger
}

// NewCheckoutService создаёт оркестратор оформления покупки.
func NewCheckoutService(
	customers CustomerSyncClient,
	licenses LicenseClient,
	gateway GatewayClient,
	journal Journal,
	publisher Publisher,
	log *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		customers: customers,
		licenses:  licenses,
		gateway:   gateway,
		journal:   journal,
		publisher: publisher,
		log:       log,
	}
}

// StartParams — данные формы оформления заказа и выбранный тариф.
type StartParams struct {
	Name        string
	Email       string
	Password    string
	CompanyName string
	Plan        models.Plan
	Cycle       models.BillingCycle
}

// StartResult — результат запуска оформления. Для платного тарифа
// содержит данные для инициализации платёжного виджета, для бесплатного
// оформление завершается сразу.
type StartResult struct {
	TransactionID string        `json:"transaction_id"`
	OrderID       string        `json:"order_id,omitempty"`
	Key           string        `json:"key,omitempty"`
	Amount        int           `json:"amount"` // В пайсах, как требует виджет
	Currency      string        `json:"currency"`
	Free          bool          `json:"free"`
	State         string        `json:"state"`
	Quote         pricing.Quote `json:"quote"`
}

// Start выполняет оформление до момента оплаты: синхронизирует клиента,
// создаёт покупку в системе лицензий и заказ в платёжном шлюзе.
// Бесплатный тариф завершается без обращения к шлюзу.
func (s *CheckoutService) Start(ctx context.Context, p StartParams) (*StartResult, error) {
	const op = "checkout.Start"

	log := s.log.With(
		slog.String("op", op),
		slog.String("email", p.Email),
		slog.String("plan", p.Plan.Name),
		slog.String("cycle", string(p.Cycle)),
	)

	metrics.CheckoutStarted.WithLabelValues(p.Plan.Name, string(p.Cycle)).Inc()

	if err := s.syncCustomer(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("customer synced")

	quote := pricing.Calculate(p.Plan.PricePerUser, p.Plan.IncludedUsers, p.Cycle)

	if p.Plan.IsFree || quote.Total == 0 {
		return s.completeFree(ctx, p, quote)
	}

	purchase, err := s.createPurchase(ctx, p, quote.Total)
	if err != nil {
		metrics.CheckoutFailed.WithLabelValues(models.StatePurchaseCreated).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("purchase created", slog.String("transaction_id", purchase.TransactionID))

	if err := s.journal.CreateAttempt(ctx, s.newAttempt(p, quote.Total, purchase.TransactionID, false)); err != nil {
		// Журнал вспомогательный, оформление из-за него не прерываем.
		log.Error("failed to journal checkout attempt", sl.Err(err))
	}

	order, err := s.gateway.CreateOrder(ctx, paymentgateway.CreateOrderRequest{
		UserID:       purchase.UserID,
		LicenseID:    p.Plan.LicenseID,
		BillingCycle: string(p.Cycle),
		Amount:       quote.Total * 100,
	})
	if err == nil && order.OrderID == "" {
		err = ErrOrderCreationFailed
	}
	if err != nil {
		metrics.CheckoutFailed.WithLabelValues(models.StateOrderCreated).Inc()
		s.markFailed(ctx, purchase.TransactionID, "payment order creation failed: "+err.Error())
		if !errors.Is(err, ErrOrderCreationFailed) {
			err = fmt.Errorf("%w: %v", ErrOrderCreationFailed, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("payment order created", slog.String("order_id", order.OrderID))

	if err := s.journal.UpdateAttemptState(ctx, purchase.TransactionID, models.StateOrderCreated, order.OrderID, ""); err != nil {
		log.Error("failed to journal order creation", sl.Err(err))
	}

	return &StartResult{
		TransactionID: purchase.TransactionID,
		OrderID:       order.OrderID,
		Key:           order.Key,
		Amount:        order.Amount,
		Currency:      order.Currency,
		State:         models.StateOrderCreated,
		Quote:         quote,
	}, nil
}

// Verify завершает оформление после возврата из платёжного виджета:
// проверяет подпись и статус оплаты в шлюзе и фиксирует результат в
// журнале. Откат созданной покупки не выполняется: неуспешная попытка
// остаётся в журнале со статусом failed для разбора поддержкой.
func (s *CheckoutService) Verify(ctx context.Context, reqParams paymentgateway.VerifyPaymentRequest) (*models.CheckoutAttempt, error) {
	const op = "checkout.Verify"

	log := s.log.With(
		slog.String("op", op),
		slog.String("transaction_id", reqParams.TransactionID),
	)

	if err := s.journal.UpdateAttemptState(ctx, reqParams.TransactionID, models.StateVerifying, "", ""); err != nil {
		log.Error("failed to journal verification start", sl.Err(err))
	}

	resp, err := s.gateway.VerifyPayment(ctx, reqParams)
	if err == nil && !resp.Success {
		err = fmt.Errorf("gateway rejected payment: %s", resp.Message)
	}
	if err != nil {
		metrics.CheckoutFailed.WithLabelValues(models.StateVerifying).Inc()
		s.markFailed(ctx, reqParams.TransactionID, "payment verification failed: "+err.Error())
		log.Warn("payment verification failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w: %v", op, ErrVerificationFailed, err)
	}

	if err := s.journal.UpdateAttemptState(ctx, reqParams.TransactionID, models.StateCompleted, "", ""); err != nil {
		log.Error("failed to journal completion", sl.Err(err))
	}

	attempt, err := s.journal.ReadAttempt(ctx, reqParams.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.CheckoutCompleted.WithLabelValues(attempt.PlanName, string(attempt.BillingCycle)).Inc()
	s.publishConfirmation(*attempt)
	log.Info("checkout completed", slog.String("plan", attempt.PlanName))

	return attempt, nil
}

// TransactionDetails — запись журнала вместе с актуальным статусом
// транзакции в платёжном шлюзе.
type TransactionDetails struct {
	Attempt       models.CheckoutAttempt      `json:"attempt"`
	GatewayStatus *paymentgateway.Transaction `json:"gateway_status,omitempty"`
}

// Transaction возвращает детали покупки по идентификатору транзакции.
// Статус в шлюзе запрашивается дополнительно; его недоступность не
// считается ошибкой.
func (s *CheckoutService) Transaction(ctx context.Context, transactionID string) (*TransactionDetails, error) {
	const op = "checkout.Transaction"

	attempt, err := s.journal.ReadAttempt(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	details := &TransactionDetails{Attempt: *attempt}
	if !attempt.Free {
		tx, err := s.gateway.Transaction(ctx, transactionID)
		if err != nil {
			s.log.Warn("failed to fetch gateway transaction",
				slog.String("op", op),
				slog.String("transaction_id", transactionID),
				sl.Err(err))
		} else {
			details.GatewayStatus = tx
		}
	}
	return details, nil
}

// syncCustomer создаёт клиента в сервисе синхронизации, если его ещё нет.
func (s *CheckoutService) syncCustomer(ctx context.Context, p StartParams) error {
	exists, err := s.customers.Exists(ctx, p.Email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.customers.Sync(ctx, customersync.SyncCustomerRequest{
		Name:     p.Name,
		Email:    p.Email,
		Password: p.Password,
	})
}

// completeFree завершает оформление бесплатного тарифа: покупка
// создаётся в системе лицензий с нулевой суммой, платёжный шлюз не
// участвует.
func (s *CheckoutService) completeFree(ctx context.Context, p StartParams, quote pricing.Quote) (*StartResult, error) {
	const op = "checkout.completeFree"

	// Бесплатный тариф всегда оформляется наверху как месячный.
	p.Cycle = models.BillingMonthly

	purchase, err := s.createPurchase(ctx, p, 0)
	if err != nil {
		metrics.CheckoutFailed.WithLabelValues(models.StatePurchaseCreated).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	attempt := s.newAttempt(p, 0, purchase.TransactionID, true)
	attempt.State = models.StateCompleted
	if err := s.journal.CreateAttempt(ctx, attempt); err != nil {
		s.log.Error("failed to journal free checkout", slog.String("op", op), sl.Err(err))
	}

	metrics.CheckoutCompleted.WithLabelValues(p.Plan.Name, string(p.Cycle)).Inc()
	s.publishConfirmation(attempt)
	s.log.Info("free checkout completed",
		slog.String("op", op),
		slog.String("email", p.Email),
		slog.String("transaction_id", purchase.TransactionID))

	return &StartResult{
		TransactionID: purchase.TransactionID,
		Amount:        0,
		Currency:      Currency,
		Free:          true,
		State:         models.StateCompleted,
		Quote:         quote,
	}, nil
}

// createPurchase создаёт запись покупки в системе лицензий. Квартальный
// и полугодовой периоды передаются наверх как monthly: тарификация
// этих периодов живёт только на нашей стороне.
func (s *CheckoutService) createPurchase(ctx context.Context, p StartParams, amount int) (*license.PurchaseData, error) {
	purchase, err := s.licenses.CreatePurchase(ctx, license.PurchaseRequest{
		Name:         p.Name,
		Email:        p.Email,
		LicenseID:    p.Plan.LicenseID,
		BillingCycle: string(p.Cycle.Upstream()),
		Amount:       amount,
		Currency:     Currency,
	})
	if err != nil {
		return nil, err
	}
	if purchase.TransactionID == "" || purchase.UserID == "" {
		return nil, ErrTransactionDataMissing
	}
	return purchase, nil
}

func (s *CheckoutService) newAttempt(p StartParams, total int, transactionID string, free bool) models.CheckoutAttempt {
	now := time.Now().UTC()
	return models.CheckoutAttempt{
		ID:            uuid.NewString(),
		TransactionID: transactionID,
		Email:         p.Email,
		CompanyName:   p.CompanyName,
		LicenseID:     p.Plan.LicenseID,
		PlanName:      p.Plan.Name,
		BillingCycle:  p.Cycle,
		AmountTotal:   total,
		Currency:      Currency,
		Free:          free,
		State:         models.StatePurchaseCreated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (s *CheckoutService) markFailed(ctx context.Context, transactionID, reason string) {
	if err := s.journal.UpdateAttemptState(ctx, transactionID, models.StateFailed, "", reason); err != nil {
		s.log.Error("failed to journal checkout failure",
			slog.String("transaction_id", transactionID),
			sl.Err(err))
	}
}

func (s *CheckoutService) publishConfirmation(attempt models.CheckoutAttempt) {
	event := models.PurchaseConfirmation{
		Email:         attempt.Email,
		CompanyName:   attempt.CompanyName,
		PlanName:      attempt.PlanName,
		BillingCycle:  string(attempt.BillingCycle),
		AmountTotal:   attempt.AmountTotal,
		TransactionID: attempt.TransactionID,
		Free:          attempt.Free,
	}
	if err := s.publisher.Publish(rabbitmq.NotificationsExchange, rabbitmq.RoutingPurchaseConfirmation, event); err != nil {
		s.log.Error("failed to publish purchase confirmation",
			slog.String("transaction_id", attempt.TransactionID),
			sl.Err(err))
	}
}
