package verify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/geo-track/geotrack-home/internal/models"
	"github.com/geo-track/geotrack-home/internal/paymentgateway"
	"github.com/geo-track/geotrack-home/internal/services/checkout"
	"github.com/geo-track/geotrack-home/internal/storage"
)

// MockService реализует интерфейс verify.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Verify(ctx context.Context, reqParams paymentgateway.VerifyPaymentRequest) (*models.CheckoutAttempt, error) {
	args := m.Called(ctx, reqParams)
	if res := args.Get(0); res != nil {
		return res.(*models.CheckoutAttempt), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestVerifyHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validBody := `{"transactionId":"txn-1","razorpay_payment_id":"pay_1","razorpay_order_id":"order-1","razorpay_signature":"sig"}`

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная проверка оплаты",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, paymentgateway.VerifyPaymentRequest{
					TransactionID:     "txn-1",
					RazorpayPaymentID: "pay_1",
					RazorpayOrderID:   "order-1",
					RazorpaySignature: "sig",
				}).Return(&models.CheckoutAttempt{
					TransactionID: "txn-1",
					State:         models.StateCompleted,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"state":"completed"`,
		},
		{
			name:           "отсутствуют поля подписи",
			body:           `{"transactionId":"txn-1"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"status":"Error"`,
		},
		{
			name: "неуспешная проверка",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("checkout.Verify: %w: signature mismatch", checkout.ErrVerificationFailed))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"payment verification failed"`,
		},
		{
			name: "транзакция не найдена",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("checkout.Verify: %w", storage.ErrAttemptNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"transaction not found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/verify", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
