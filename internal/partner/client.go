// Package partner реализует клиент внешнего сервиса партнёрской
// программы: отправка заявки на партнёрство.
package partner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/geo-track/geotrack-home/internal/config"
	"github.com/geo-track/geotrack-home/internal/models"
)

// Client — HTTP-клиент партнёрского сервиса.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient создаёт клиент по настройкам из конфига.
func NewClient(cfg config.PartnerService) *Client {
	timeout := cfg.PartnerTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.PartnerURL,
		apiKey:     cfg.PartnerAPIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SubmitApplication отправляет заявку на партнёрство во внешний сервис.
func (c *Client) SubmitApplication(ctx context.Context, app models.PartnerApplication) error {
	const op = "partner.SubmitApplication"

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(app); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/partner/applications", &buf)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}
	return nil
}
