// Package paymentgateway реализует клиент платёжного шлюза: создание
// заказа, проверка оплаты по полям подписи и получение деталей
// транзакции. Движение денег и итоговая проверка остаются на стороне
// шлюза, клиент лишь выполняет локальную проверку подписи перед
// обращением наверх.
package paymentgateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/geo-track/geotrack-home/internal/config"
)

// ErrBadSignature возвращается, когда подпись виджета не сходится с
// локальным HMAC до обращения к шлюзу.
var ErrBadSignature = errors.New("payment signature mismatch")

// Client — HTTP-клиент платёжного шлюза.
type Client struct {
	baseURL    string
	keyID      string
	secret     string
	httpClient *http.Client
}

// NewClient создаёт клиент платёжного шлюза по настройкам из конфига.
func NewClient(cfg config.PaymentGateway) *Client {
	timeout := cfg.GatewayTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.GatewayURL,
		keyID:      cfg.GatewayKeyID,
		secret:     cfg.GatewaySecret,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreateOrder создаёт заказ в шлюзе и возвращает его идентификатор
// вместе с публичным ключом для платёжного виджета.
func (c *Client) CreateOrder(ctx context.Context, reqParams CreateOrderRequest) (*CreateOrderResponse, error) {
	const op = "paymentgateway.CreateOrder"

	req, err := c.newRequest(ctx, http.MethodPost, "/api/payment/create-order", reqParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var out CreateOrderResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// VerifyPayment проверяет подпись локально и подтверждает оплату в шлюзе.
func (c *Client) VerifyPayment(ctx context.Context, reqParams VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	const op = "paymentgateway.VerifyPayment"

	if !c.VerifySignature(reqParams.RazorpayOrderID, reqParams.RazorpayPaymentID, reqParams.RazorpaySignature) {
		return nil, fmt.Errorf("%s: %w", op, ErrBadSignature)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/payment/verify-payment", reqParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var out VerifyPaymentResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// Transaction возвращает детали транзакции шлюза по идентификатору.
func (c *Client) Transaction(ctx context.Context, transactionID string) (*Transaction, error) {
	const op = "paymentgateway.Transaction"

	req, err := c.newRequest(ctx, http.MethodGet, "/api/payment/transaction/"+transactionID, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var out Transaction
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// VerifySignature сверяет подпись виджета с HMAC-SHA256 от
// "order_id|payment_id" на секрете шлюза.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
