// Package partners реализует приём заявок на партнёрскую программу:
// заявка уходит во внешний партнёрский сервис, дублируется в журнале
// и порождает событие для письма-подтверждения.
package partners

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/geo-track/geotrack-home/internal/lib/sl"
	"github.com/geo-track/geotrack-home/internal/metrics"
	"github.com/geo-track/geotrack-home/internal/models"
	"github.com/geo-track/geotrack-home/internal/rabbitmq"
)

// PartnerClient определяет отправку заявки во внешний партнёрский сервис.
type PartnerClient interface {
	SubmitApplication(ctx context.Context, app models.PartnerApplication) error
}

// Journal определяет сохранение заявки в журнале.
type Journal interface {
	CreatePartnerApplication(ctx context.Context, app models.PartnerApplication) error
}

// Publisher определяет публикацию событий в очередь уведомлений.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// PartnerService — бизнес-логика партнёрской программы.
type PartnerService struct {
	client    PartnerClient
	journal   Journal
	publisher Publisher
	log       *slog.Logger
}

// NewPartnerService создаёт сервис партнёрской программы.
func NewPartnerService(client PartnerClient, journal Journal, publisher Publisher, log *slog.Logger) *PartnerService {
	return &PartnerService{
		client:    client,
		journal:   journal,
		publisher: publisher,
		log:       log,
	}
}

// Apply принимает партнёрскую заявку. Отказ внешнего сервиса — жёсткая
// ошибка; сбои журнала и очереди только логируются, заявка при этом
// уже принята.
func (s *PartnerService) Apply(ctx context.Context, app models.PartnerApplication) (*models.PartnerApplication, error) {
	const op = "partners.Apply"

	app.ID = uuid.NewString()
	app.CreatedAt = time.Now().UTC()

	if err := s.client.SubmitApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.journal.CreatePartnerApplication(ctx, app); err != nil {
		s.log.Error("failed to journal partner application",
			slog.String("op", op),
			slog.String("email", app.Email),
			sl.Err(err))
	}

	if err := s.publisher.Publish(rabbitmq.NotificationsExchange, rabbitmq.RoutingPartnerApplication, app); err != nil {
		s.log.Error("failed to publish partner application event",
			slog.String("op", op),
			slog.String("email", app.Email),
			sl.Err(err))
	}

	metrics.PartnerApplications.Inc()
	s.log.Info("partner application accepted",
		slog.String("op", op),
		slog.String("company", app.CompanyName))

	return &app, nil
}
