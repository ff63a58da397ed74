// Package geotrackhome собирает основное приложение сайта: клиенты
// внешних сервисов, бизнес-логику воронки покупки и HTTP-сервер.
package geotrackhome

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/geo-track/geotrack-home/internal/cache"
	"github.com/geo-track/geotrack-home/internal/config"
	"github.com/geo-track/geotrack-home/internal/customersync"
	"github.com/geo-track/geotrack-home/internal/lib/jwt"
	"github.com/geo-track/geotrack-home/internal/license"
	"github.com/geo-track/geotrack-home/internal/migrations"
	"github.com/geo-track/geotrack-home/internal/partner"
	"github.com/geo-track/geotrack-home/internal/paymentgateway"
	"github.com/geo-track/geotrack-home/internal/rabbitmq"
	catalogservice "github.com/geo-track/geotrack-home/internal/services/catalog"
	checkoutservice "github.com/geo-track/geotrack-home/internal/services/checkout"
	partnersservice "github.com/geo-track/geotrack-home/internal/services/partners"
	"github.com/geo-track/geotrack-home/internal/storage"

	"github.com/streadway/amqp"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher := rabbitmq.NewEventPublisher(ch)

	licenseClient := license.NewClient(cfg.LicenseService)
	gatewayClient := paymentgateway.NewClient(cfg.PaymentGateway)
	customerClient := customersync.NewClient(cfg.CustomerSync)
	partnerClient := partner.NewClient(cfg.PartnerService)

	tokenMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	catalogService := catalogservice.NewCatalogService(licenseClient, cacheRedis, cfg.CatalogTTL, logger)
	checkoutService := checkoutservice.NewCheckoutService(
		customerClient, licenseClient, gatewayClient, db, publisher, logger)
	partnerService := partnersservice.NewPartnerService(partnerClient, db, publisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.AllowedOrigins,
		catalogService, checkoutService, partnerService, customerClient, tokenMaker)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		if cerr := a.ch.Close(); cerr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", cerr))
		}
		if cerr := a.conn.Close(); cerr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", cerr))
		}
		return err
	}
}
