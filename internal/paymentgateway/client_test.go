package paymentgateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geo-track/geotrack-home/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.PaymentGateway{
		GatewayURL:     srv.URL,
		GatewayKeyID:   "rzp_test_key",
		GatewaySecret:  "gw-secret",
		GatewayTimeout: 2 * time.Second,
	})
}

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateOrder(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payment/create-order", r.URL.Path)

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1681500, req.Amount) // сумма в пайсах
		assert.Equal(t, "quarterly", req.BillingCycle)

		_, _ = w.Write([]byte(`{"orderId":"order_9","key":"rzp_test_key","amount":1681500,"currency":"INR"}`))
	})

	order, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		UserID:       "u-5",
		LicenseID:    "lic-1",
		BillingCycle: "quarterly",
		Amount:       1681500,
	})
	require.NoError(t, err)
	assert.Equal(t, "order_9", order.OrderID)
	assert.Equal(t, "rzp_test_key", order.Key)
}

func TestVerifyPayment(t *testing.T) {
	t.Run("корректная подпись подтверждается шлюзом", func(t *testing.T) {
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/payment/verify-payment", r.URL.Path)
			_, _ = w.Write([]byte(`{"success":true}`))
		})

		res, err := client.VerifyPayment(context.Background(), VerifyPaymentRequest{
			TransactionID:     "txn-77",
			RazorpayOrderID:   "order_9",
			RazorpayPaymentID: "pay_3",
			RazorpaySignature: sign("gw-secret", "order_9", "pay_3"),
		})
		require.NoError(t, err)
		assert.True(t, res.Success)
	})

	t.Run("плохая подпись не доходит до шлюза", func(t *testing.T) {
		client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
			t.Error("gateway must not be called on signature mismatch")
		})

		_, err := client.VerifyPayment(context.Background(), VerifyPaymentRequest{
			TransactionID:     "txn-77",
			RazorpayOrderID:   "order_9",
			RazorpayPaymentID: "pay_3",
			RazorpaySignature: "forged",
		})
		assert.True(t, errors.Is(err, ErrBadSignature))
	})
}

func TestTransaction(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payment/transaction/txn-77", r.URL.Path)
		_, _ = w.Write([]byte(`{"transactionId":"txn-77","orderId":"order_9","status":"captured","amount":1681500,"currency":"INR"}`))
	})

	txn, err := client.Transaction(context.Background(), "txn-77")
	require.NoError(t, err)
	assert.Equal(t, "captured", txn.Status)
}
