package checkout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/geo-track/geotrack-home/internal/customersync"
	"github.com/geo-track/geotrack-home/internal/license"
	"github.com/geo-track/geotrack-home/internal/models"
	"github.com/geo-track/geotrack-home/internal/paymentgateway"
	"github.com/geo-track/geotrack-home/internal/rabbitmq"
)

type MockCustomerSync struct {
	mock.Mock
}

func (m *MockCustomerSync) Exists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerSync) Sync(ctx context.Context, reqParams customersync.SyncCustomerRequest) error {
	args := m.Called(ctx, reqParams)
	return args.Error(0)
}

type MockLicenseClient struct {
	mock.Mock
}

func (m *MockLicenseClient) CreatePurchase(ctx context.Context, reqParams license.PurchaseRequest) (*license.PurchaseData, error) {
	args := m.Called(ctx, reqParams)
	if res := args.Get(0); res != nil {
		return res.(*license.PurchaseData), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(ctx context.Context, reqParams paymentgateway.CreateOrderRequest) (*paymentgateway.CreateOrderResponse, error) {
	args := m.Called(ctx, reqParams)
	if res := args.Get(0); res != nil {
		return res.(*paymentgateway.CreateOrderResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGateway) VerifyPayment(ctx context.Context, reqParams paymentgateway.VerifyPaymentRequest) (*paymentgateway.VerifyPaymentResponse, error) {
	args := m.Called(ctx, reqParams)
	if res := args.Get(0); res != nil {
		return res.(*paymentgateway.VerifyPaymentResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGateway) Transaction(ctx context.Context, transactionID string) (*paymentgateway.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if res := args.Get(0); res != nil {
		return res.(*paymentgateway.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) CreateAttempt(ctx context.Context, attempt models.CheckoutAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockJournal) UpdateAttemptState(ctx context.Context, transactionID, state, orderID, failureReason string) error {
	args := m.Called(ctx, transactionID, state, orderID, failureReason)
	return args.Error(0)
}

func (m *MockJournal) ReadAttempt(ctx context.Context, transactionID string) (*models.CheckoutAttempt, error) {
	args := m.Called(ctx, transactionID)
	if res := args.Get(0); res != nil {
		return res.(*models.CheckoutAttempt), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, message any) error {
	args := m.Called(exchange, routingKey, message)
	return args.Error(0)
}

type mocks struct {
	customers *MockCustomerSync
	licenses  *MockLicenseClient
	gateway   *MockGateway
	journal   *MockJournal
	publisher *MockPublisher
}

func newMocks() *mocks {
	return &mocks{
		customers: new(MockCustomerSync),
		licenses:  new(MockLicenseClient),
		gateway:   new(MockGateway),
		journal:   new(MockJournal),
		publisher: new(MockPublisher),
	}
}

func (m *mocks) service() *CheckoutService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCheckoutService(m.customers, m.licenses, m.gateway, m.journal, m.publisher, logger)
}

func (m *mocks) assertExpectations(t *testing.T) {
	t.Helper()
	m.customers.AssertExpectations(t)
	m.licenses.AssertExpectations(t)
	m.gateway.AssertExpectations(t)
	m.journal.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}

func paidPlan() models.Plan {
	return models.Plan{
		LicenseID:     "lic-2",
		LicenseTypeID: "lt-2",
		Name:          "Pro",
		PricePerUser:  900,
		IncludedUsers: 25,
	}
}

func freePlan() models.Plan {
	return models.Plan{
		LicenseID:     "lic-1",
		LicenseTypeID: "lt-1",
		Name:          "Free",
		PricePerUser:  0,
		IncludedUsers: 2,
		IsFree:        true,
	}
}

func TestStartPaid(t *testing.T) {
	t.Run("успешное оформление платного тарифа", func(t *testing.T) {
		m := newMocks()
		m.customers.On("Exists", mock.Anything, "ops@acme.in").Return(true, nil)
		// Pro, 25 пользователей, год: 900*25*12=270000, скидка 20% -> 216000,
		// налог 38880, итог 254880.
		m.licenses.On("CreatePurchase", mock.Anything, license.PurchaseRequest{
			Name:         "Asha",
			Email:        "ops@acme.in",
			LicenseID:    "lic-2",
			BillingCycle: "yearly",
			Amount:       254880,
			Currency:     "INR",
		}).Return(&license.PurchaseData{TransactionID: "txn-1", UserID: "usr-1"}, nil)
		m.journal.On("CreateAttempt", mock.Anything, mock.MatchedBy(func(a models.CheckoutAttempt) bool {
			return a.TransactionID == "txn-1" &&
				a.State == models.StatePurchaseCreated &&
				a.AmountTotal == 254880 &&
				a.BillingCycle == models.BillingYearly &&
				!a.Free
		})).Return(nil)
		m.gateway.On("CreateOrder", mock.Anything, paymentgateway.CreateOrderRequest{
			UserID:       "usr-1",
			LicenseID:    "lic-2",
			BillingCycle: "yearly",
			Amount:       25488000,
		}).Return(&paymentgateway.CreateOrderResponse{
			OrderID:  "order-1",
			Key:      "rzp_test_key",
			Amount:   25488000,
			Currency: "INR",
		}, nil)
		m.journal.On("UpdateAttemptState", mock.Anything, "txn-1", models.StateOrderCreated, "order-1", "").Return(nil)

		res, err := m.service().Start(context.Background(), StartParams{
			Name:        "Asha",
			Email:       "ops@acme.in",
			CompanyName: "Acme Logistics",
			Plan:        paidPlan(),
			Cycle:       models.BillingYearly,
		})
		require.NoError(t, err)
		assert.Equal(t, "txn-1", res.TransactionID)
		assert.Equal(t, "order-1", res.OrderID)
		assert.Equal(t, "rzp_test_key", res.Key)
		assert.Equal(t, 25488000, res.Amount)
		assert.False(t, res.Free)
		assert.Equal(t, models.StateOrderCreated, res.State)

		m.assertExpectations(t)
	})

	t.Run("новый клиент синхронизируется перед покупкой", func(t *testing.T) {
		m := newMocks()
		m.customers.On("Exists", mock.Anything, "new@acme.in").Return(false, nil)
		m.customers.On("Sync", mock.Anything, customersync.SyncCustomerRequest{
			Name:     "Ravi",
			Email:    "new@acme.in",
			Password: "secret",
		}).Return(nil)
		m.licenses.On("CreatePurchase", mock.Anything, mock.Anything).
			Return(&license.PurchaseData{TransactionID: "txn-2", UserID: "usr-2"}, nil)
		m.journal.On("CreateAttempt", mock.Anything, mock.Anything).Return(nil)
		m.gateway.On("CreateOrder", mock.Anything, mock.Anything).
			Return(&paymentgateway.CreateOrderResponse{OrderID: "order-2", Amount: 100, Currency: "INR"}, nil)
		m.journal.On("UpdateAttemptState", mock.Anything, "txn-2", models.StateOrderCreated, "order-2", "").Return(nil)

		_, err := m.service().Start(context.Background(), StartParams{
			Name:     "Ravi",
			Email:    "new@acme.in",
			Password: "secret",
			Plan:     paidPlan(),
			Cycle:    models.BillingMonthly,
		})
		require.NoError(t, err)
		m.assertExpectations(t)
	})

	t.Run("квартальный период уходит в систему лицензий как monthly", func(t *testing.T) {
		m := newMocks()
		m.customers.On("Exists", mock.Anything, mock.Anything).Return(true, nil)
		m.licenses.On("CreatePurchase", mock.Anything, mock.MatchedBy(func(r license.PurchaseRequest) bool {
			return r.BillingCycle == "monthly"
		})).Return(&license.PurchaseData{TransactionID: "txn-3", UserID: "usr-3"}, nil)
		m.journal.On("CreateAttempt", mock.Anything, mock.Anything).Return(nil)
		// Шлюзу при этом передаётся настоящий период.
		m.gateway.On("CreateOrder", mock.Anything, mock.MatchedBy(func(r paymentgateway.CreateOrderRequest) bool {
			return r.BillingCycle == "quarterly"
		})).Return(&paymentgateway.CreateOrderResponse{OrderID: "order-3", Amount: 100, Currency: "INR"}, nil)
		m.journal.On("UpdateAttemptState", mock.Anything, "txn-3", models.StateOrderCreated, "order-3", "").Return(nil)

		_, err := m.service().Start(context.Background(), StartParams{
			Name:  "Asha",
			Email: "ops@acme.in",
			Plan:  paidPlan(),
			Cycle: models.BillingQuarterly,
		})
		require.NoError(t, err)
		m.assertExpectations(t)
	})

	t.Run("покупка без идентификатора транзакции прерывает оформление", func(t *testing.T) {
		m := newMocks()
		m.customers.On("Exists", mock.Anything, mock.Anything).Return(true, nil)
		m.licenses.On("CreatePurchase", mock.Anything, mock.Anything).
			Return(&license.PurchaseData{TransactionID: "", UserID: "usr-4"}, nil)

		_, err := m.service().Start(context.Background(), StartParams{
			Name:  "Asha",
			Email: "ops@acme.in",
			Plan:  paidPlan(),
			Cycle: models.BillingMonthly,
		})
		assert.ErrorIs(t, err, ErrTransactionDataMissing)
		m.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("шлюз без идентификатора заказа переводит попытку в failed", func(t *testing.T) {
		m := newMocks()
		m.customers.On("Exists", mock.Anything, mock.Anything).Return(true, nil)
		m.licenses.On("CreatePurchase", mock.Anything, mock.Anything).
			Return(&license.PurchaseData{TransactionID: "txn-5", UserID: "usr-5"}, nil)
		m.journal.On("CreateAttempt", mock.Anything, mock.Anything).Return(nil)
		m.gateway.On("CreateOrder", mock.Anything, mock.Anything).
			Return(&paymentgateway.CreateOrderResponse{OrderID: ""}, nil)
		m.journal.On("UpdateAttemptState", mock.Anything, "txn-5", models.StateFailed, "", mock.Anything).Return(nil)

		_, err := m.service().Start(context.Background(), StartParams{
			Name:  "Asha",
			Email: "ops@acme.in",
			Plan:  paidPlan(),
			Cycle: models.BillingMonthly,
		})
		assert.ErrorIs(t, err, ErrOrderCreationFailed)
		m.assertExpectations(t)
	})

	t.Run("ошибка синхронизации клиента прерывает оформление", func(t *testing.T) {
		m := newMocks()
		m.customers.On("Exists", mock.Anything, mock.Anything).Return(false, nil)
		m.customers.On("Sync", mock.Anything, mock.Anything).Return(errors.New("sync service down"))

		_, err := m.service().Start(context.Background(), StartParams{
			Name:  "Asha",
			Email: "ops@acme.in",
			Plan:  paidPlan(),
			Cycle: models.BillingMonthly,
		})
		assert.Error(t, err)
		m.licenses.AssertNotCalled(t, "CreatePurchase", mock.Anything, mock.Anything)
	})
}

func TestStartFree(t *testing.T) {
	t.Run("бесплатный тариф завершается без платёжного шлюза", func(t *testing.T) {
		m := newMocks()
		m.customers.On("Exists", mock.Anything, "ops@acme.in").Return(true, nil)
		m.licenses.On("CreatePurchase", mock.Anything, license.PurchaseRequest{
			Name:         "Asha",
			Email:        "ops@acme.in",
			LicenseID:    "lic-1",
			BillingCycle: "monthly",
			Amount:       0,
			Currency:     "INR",
		}).Return(&license.PurchaseData{TransactionID: "txn-free", UserID: "usr-1"}, nil)
		m.journal.On("CreateAttempt", mock.Anything, mock.MatchedBy(func(a models.CheckoutAttempt) bool {
			return a.Free && a.State == models.StateCompleted && a.AmountTotal == 0
		})).Return(nil)
		m.publisher.On("Publish", rabbitmq.NotificationsExchange, rabbitmq.RoutingPurchaseConfirmation,
			mock.MatchedBy(func(e models.PurchaseConfirmation) bool {
				return e.Free && e.TransactionID == "txn-free"
			})).Return(nil)

		res, err := m.service().Start(context.Background(), StartParams{
			Name:  "Asha",
			Email: "ops@acme.in",
			Plan:  freePlan(),
			// Даже годовой период бесплатного тарифа уходит наверх как monthly.
			Cycle: models.BillingYearly,
		})
		require.NoError(t, err)
		assert.True(t, res.Free)
		assert.Equal(t, models.StateCompleted, res.State)
		assert.Zero(t, res.Amount)

		m.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})
}

func TestVerify(t *testing.T) {
	verifyReq := paymentgateway.VerifyPaymentRequest{
		TransactionID:     "txn-1",
		RazorpayPaymentID: "pay_1",
		RazorpayOrderID:   "order-1",
		RazorpaySignature: "sig",
	}

	t.Run("успешная проверка завершает покупку и публикует событие", func(t *testing.T) {
		m := newMocks()
		m.journal.On("UpdateAttemptState", mock.Anything, "txn-1", models.StateVerifying, "", "").Return(nil)
		m.gateway.On("VerifyPayment", mock.Anything, verifyReq).
			Return(&paymentgateway.VerifyPaymentResponse{Success: true}, nil)
		m.journal.On("UpdateAttemptState", mock.Anything, "txn-1", models.StateCompleted, "", "").Return(nil)
		m.journal.On("ReadAttempt", mock.Anything, "txn-1").Return(&models.CheckoutAttempt{
			TransactionID: "txn-1",
			Email:         "ops@acme.in",
			PlanName:      "Pro",
			BillingCycle:  models.BillingYearly,
			AmountTotal:   254880,
			State:         models.StateCompleted,
		}, nil)
		m.publisher.On("Publish", rabbitmq.NotificationsExchange, rabbitmq.RoutingPurchaseConfirmation,
			mock.MatchedBy(func(e models.PurchaseConfirmation) bool {
				return e.TransactionID == "txn-1" && e.PlanName == "Pro" && !e.Free
			})).Return(nil)

		attempt, err := m.service().Verify(context.Background(), verifyReq)
		require.NoError(t, err)
		assert.Equal(t, models.StateCompleted, attempt.State)
		m.assertExpectations(t)
	})

	t.Run("отказ шлюза фиксируется в журнале без отката покупки", func(t *testing.T) {
		m := newMocks()
		m.journal.On("UpdateAttemptState", mock.Anything, "txn-1", models.StateVerifying, "", "").Return(nil)
		m.gateway.On("VerifyPayment", mock.Anything, verifyReq).
			Return(&paymentgateway.VerifyPaymentResponse{Success: false, Message: "signature mismatch"}, nil)
		m.journal.On("UpdateAttemptState", mock.Anything, "txn-1", models.StateFailed, "", mock.MatchedBy(func(reason string) bool {
			return reason != ""
		})).Return(nil)

		_, err := m.service().Verify(context.Background(), verifyReq)
		assert.ErrorIs(t, err, ErrVerificationFailed)
		m.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("ошибка запроса к шлюзу также считается неуспехом", func(t *testing.T) {
		m := newMocks()
		m.journal.On("UpdateAttemptState", mock.Anything, "txn-1", models.StateVerifying, "", "").Return(nil)
		m.gateway.On("VerifyPayment", mock.Anything, verifyReq).
			Return(nil, paymentgateway.ErrBadSignature)
		m.journal.On("UpdateAttemptState", mock.Anything, "txn-1", models.StateFailed, "", mock.Anything).Return(nil)

		_, err := m.service().Verify(context.Background(), verifyReq)
		assert.ErrorIs(t, err, ErrVerificationFailed)
	})
}

func TestTransaction(t *testing.T) {
	t.Run("платная покупка дополняется статусом из шлюза", func(t *testing.T) {
		m := newMocks()
		m.journal.On("ReadAttempt", mock.Anything, "txn-1").
			Return(&models.CheckoutAttempt{TransactionID: "txn-1", State: models.StateCompleted}, nil)
		m.gateway.On("Transaction", mock.Anything, "txn-1").
			Return(&paymentgateway.Transaction{TransactionID: "txn-1", Status: "captured"}, nil)

		details, err := m.service().Transaction(context.Background(), "txn-1")
		require.NoError(t, err)
		require.NotNil(t, details.GatewayStatus)
		assert.Equal(t, "captured", details.GatewayStatus.Status)
	})

	t.Run("бесплатная покупка не запрашивает шлюз", func(t *testing.T) {
		m := newMocks()
		m.journal.On("ReadAttempt", mock.Anything, "txn-free").
			Return(&models.CheckoutAttempt{TransactionID: "txn-free", Free: true, State: models.StateCompleted}, nil)

		details, err := m.service().Transaction(context.Background(), "txn-free")
		require.NoError(t, err)
		assert.Nil(t, details.GatewayStatus)
		m.gateway.AssertNotCalled(t, "Transaction", mock.Anything, mock.Anything)
	})

	t.Run("недоступность шлюза не ломает ответ", func(t *testing.T) {
		m := newMocks()
		m.journal.On("ReadAttempt", mock.Anything, "txn-1").
			Return(&models.CheckoutAttempt{TransactionID: "txn-1", State: models.StateOrderCreated}, nil)
		m.gateway.On("Transaction", mock.Anything, "txn-1").Return(nil, errors.New("timeout"))

		details, err := m.service().Transaction(context.Background(), "txn-1")
		require.NoError(t, err)
		assert.Nil(t, details.GatewayStatus)
	})

	t.Run("неизвестная транзакция", func(t *testing.T) {
		m := newMocks()
		m.journal.On("ReadAttempt", mock.Anything, "missing").Return(nil, errors.New("checkout attempt not found"))

		_, err := m.service().Transaction(context.Background(), "missing")
		assert.Error(t, err)
	})
}
