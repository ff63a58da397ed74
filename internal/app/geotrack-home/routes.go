// Package geotrackhome предоставляет маршруты для основного приложения.
package geotrackhome

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/geo-track/geotrack-home/internal/customersync"
	"github.com/geo-track/geotrack-home/internal/http/handlers/auth/login"
	"github.com/geo-track/geotrack-home/internal/http/handlers/auth/register"
	"github.com/geo-track/geotrack-home/internal/http/handlers/auth/session"
	"github.com/geo-track/geotrack-home/internal/http/handlers/catalog/list"
	"github.com/geo-track/geotrack-home/internal/http/handlers/catalog/quote"
	"github.com/geo-track/geotrack-home/internal/http/handlers/checkout/start"
	"github.com/geo-track/geotrack-home/internal/http/handlers/checkout/transaction"
	"github.com/geo-track/geotrack-home/internal/http/handlers/checkout/verify"
	"github.com/geo-track/geotrack-home/internal/http/handlers/health"
	"github.com/geo-track/geotrack-home/internal/http/handlers/partner/apply"
	"github.com/geo-track/geotrack-home/internal/http/handlers/site/routes"
	"github.com/geo-track/geotrack-home/internal/http/handlers/site/tutorials"
	"github.com/geo-track/geotrack-home/internal/http/middlewarectx"
	"github.com/geo-track/geotrack-home/internal/lib/jwt"
	catalogservice "github.com/geo-track/geotrack-home/internal/services/catalog"
	checkoutservice "github.com/geo-track/geotrack-home/internal/services/checkout"
	partnersservice "github.com/geo-track/geotrack-home/internal/services/partners"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	allowedOrigins []string,
	catalogService *catalogservice.CatalogService,
	checkoutService *checkoutservice.CheckoutService,
	partnerService *partnersservice.PartnerService,
	customerClient *customersync.Client,
	tokenMaker jwt.Maker,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.CORSMiddleware(allowedOrigins),
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/plans", list.New(logger, catalogService).ServeHTTP)
		r.Get("/plans/{planID}/quote", quote.New(logger, catalogService).ServeHTTP)
		r.Post("/register", register.New(logger, customerClient, tokenMaker).ServeHTTP)
		r.Post("/login", login.New(logger, customerClient, catalogService, tokenMaker).ServeHTTP)
		r.Post("/partners/apply", apply.New(logger, partnerService).ServeHTTP)
		r.Get("/routes", routes.New(logger).ServeHTTP)
		r.Get("/tutorials", tutorials.New(logger).ServeHTTP)

		// Обратный вызов платёжного виджета: аутентификацией служит подпись
		r.Post("/payment/verify", verify.New(logger, checkoutService).ServeHTTP)

		// Группа с сессионной аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SessionMiddleware(tokenMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/checkout", start.New(logger, catalogService, checkoutService).ServeHTTP)
			r.Get("/payment/transaction/{transactionID}", transaction.New(logger, checkoutService).ServeHTTP)
			r.Get("/session", session.New(logger).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
