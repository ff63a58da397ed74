package partners

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/geo-track/geotrack-home/internal/models"
	"github.com/geo-track/geotrack-home/internal/rabbitmq"
)

type MockPartnerClient struct {
	mock.Mock
}

func (m *MockPartnerClient) SubmitApplication(ctx context.Context, app models.PartnerApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) CreatePartnerApplication(ctx context.Context, app models.PartnerApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, message any) error {
	args := m.Called(exchange, routingKey, message)
	return args.Error(0)
}

func testApplication() models.PartnerApplication {
	return models.PartnerApplication{
		CompanyName:   "Acme Distribution",
		ContactPerson: "Priya",
		Email:         "priya@acme.in",
		Phone:         "+91 98765 43210",
		Country:       "India",
		City:          "Pune",
		BusinessType:  "reseller",
	}
}

func TestApply(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("заявка уходит в сервис, журнал и очередь", func(t *testing.T) {
		client := new(MockPartnerClient)
		journal := new(MockJournal)
		publisher := new(MockPublisher)

		client.On("SubmitApplication", mock.Anything, mock.MatchedBy(func(a models.PartnerApplication) bool {
			return a.ID != "" && !a.CreatedAt.IsZero() && a.Email == "priya@acme.in"
		})).Return(nil)
		journal.On("CreatePartnerApplication", mock.Anything, mock.Anything).Return(nil)
		publisher.On("Publish", rabbitmq.NotificationsExchange, rabbitmq.RoutingPartnerApplication, mock.Anything).Return(nil)

		svc := NewPartnerService(client, journal, publisher, logger)
		accepted, err := svc.Apply(context.Background(), testApplication())
		require.NoError(t, err)
		assert.NotEmpty(t, accepted.ID)

		client.AssertExpectations(t)
		journal.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("отказ внешнего сервиса прерывает приём", func(t *testing.T) {
		client := new(MockPartnerClient)
		journal := new(MockJournal)
		publisher := new(MockPublisher)
		client.On("SubmitApplication", mock.Anything, mock.Anything).Return(errors.New("partner service down"))

		svc := NewPartnerService(client, journal, publisher, logger)
		_, err := svc.Apply(context.Background(), testApplication())
		assert.Error(t, err)
		journal.AssertNotCalled(t, "CreatePartnerApplication", mock.Anything, mock.Anything)
	})

	t.Run("сбой журнала не отклоняет заявку", func(t *testing.T) {
		client := new(MockPartnerClient)
		journal := new(MockJournal)
		publisher := new(MockPublisher)
		client.On("SubmitApplication", mock.Anything, mock.Anything).Return(nil)
		journal.On("CreatePartnerApplication", mock.Anything, mock.Anything).Return(errors.New("db down"))
		publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		svc := NewPartnerService(client, journal, publisher, logger)
		_, err := svc.Apply(context.Background(), testApplication())
		assert.NoError(t, err)
	})
}
