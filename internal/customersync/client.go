// Package customersync реализует клиент внешнего сервиса синхронизации
// клиентов: проверка существования, регистрация и вход. Пароли
// проверяются и хранятся только на стороне сервиса, клиент их не трогает.
package customersync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/geo-track/geotrack-home/internal/config"
)

// ErrInvalidCredentials возвращается при ответе 401 на попытку входа.
var ErrInvalidCredentials = errors.New("invalid email or password")

// SyncCustomerRequest — данные регистрации нового клиента.
type SyncCustomerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Source   string `json:"source"`
}

// Customer — данные клиента, возвращаемые при успешном входе.
type Customer struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	CustomerID string `json:"customerId"`
}

// LoginResponse — результат попытки входа.
type LoginResponse struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	Customer *Customer `json:"customer,omitempty"`
}

// Client — HTTP-клиент сервиса синхронизации клиентов.
type Client struct {
	baseURL    string
	apiKey     string
	source     string
	httpClient *http.Client
}

// NewClient создаёт клиент по настройкам из конфига.
func NewClient(cfg config.CustomerSync) *Client {
	timeout := cfg.SyncTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.CustomerSyncURL,
		apiKey:     cfg.CustomerSyncAPIKey,
		source:     cfg.CustomerSyncSource,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Source возвращает метку источника, с которой регистрируются клиенты.
func (c *Client) Source() string {
	return c.source
}

func (c *Client) post(ctx context.Context, path string, body, out any) (int, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return resp.StatusCode, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	if out == nil {
		return resp.StatusCode, nil
	}
	return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
}

// Exists проверяет, зарегистрирован ли клиент с таким email.
func (c *Client) Exists(ctx context.Context, email string) (bool, error) {
	const op = "customersync.Exists"

	var out struct {
		Exists bool `json:"exists"`
	}
	if _, err := c.post(ctx, "/api/external/customer-exists", map[string]string{"email": email}, &out); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return out.Exists, nil
}

// Sync регистрирует нового клиента с меткой источника.
func (c *Client) Sync(ctx context.Context, reqParams SyncCustomerRequest) error {
	const op = "customersync.Sync"

	if reqParams.Source == "" {
		reqParams.Source = c.source
	}
	if _, err := c.post(ctx, "/api/external/customer-sync", reqParams, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Login выполняет вход клиента. На 401 возвращает ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	const op = "customersync.Login"

	var out LoginResponse
	status, err := c.post(ctx, "/api/external/customer-login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if status == http.StatusUnauthorized {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}
