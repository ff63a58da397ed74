package license

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/geo-track/geotrack-home/internal/config"
)

// Client — HTTP-клиент системы лицензий. Аутентификация — статический
// API-ключ в заголовке x-api-key.
type Client struct {
	baseURL    string
	apiKey     string
	productID  string
	httpClient *http.Client
}

// NewClient создаёт клиент системы лицензий по настройкам из конфига.
func NewClient(cfg config.LicenseService) *Client {
	timeout := cfg.LicenseTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.LicenseURL,
		apiKey:     cfg.LicenseAPIKey,
		productID:  cfg.ProductID,
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
	req.Header.Set("x-api-key", c.apiKey)
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

// Catalog возвращает каталог лицензий продукта.
func (c *Client) Catalog(ctx context.Context) ([]License, error) {
	const op = "license.Catalog"

	req, err := c.newRequest(ctx, http.MethodGet, "/api/license/licenses-by-product/"+c.productID, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var out CatalogResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out.Licenses, nil
}

// ActiveLicense возвращает активную лицензию клиента по email или nil,
// если лицензии нет. Сегмент "actve-license" — опечатка в контракте
// системы лицензий, менять нельзя.
func (c *Client) ActiveLicense(ctx context.Context, email string) (*ActiveLicense, error) {
	const op = "license.ActiveLicense"

	path := "/api/external/actve-license/" + url.PathEscape(email) + "?productId=" + url.QueryEscape(c.productID)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var out ActiveLicenseResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out.ActiveLicense, nil
}

// CreatePurchase создаёт запись покупки лицензии с рассчитанной суммой
// и возвращает идентификаторы транзакции и пользователя.
func (c *Client) CreatePurchase(ctx context.Context, reqParams PurchaseRequest) (*PurchaseData, error) {
	const op = "license.CreatePurchase"

	req, err := c.newRequest(ctx, http.MethodPost, "/api/license/purchase", reqParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var out PurchaseResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out.Data, nil
}
