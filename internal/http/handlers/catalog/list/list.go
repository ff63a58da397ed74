// Package list реализует HTTP-обработчик для получения каталога тарифов.
//
// Handler запрашивает каталог через сервис (с кешированием в Redis) и
// возвращает список тарифов в JSON-формате для блока цен на сайте.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/geo-track/geotrack-home/internal/http/response"
	"github.com/geo-track/geotrack-home/internal/lib/sl"
	"github.com/geo-track/geotrack-home/internal/models"
)

// Handler обрабатывает запросы каталога тарифов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс бизнес-логики каталога тарифов.
type Service interface {
	Plans(ctx context.Context) ([]models.Plan, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Каталог тарифов
// @Description Возвращает список тарифов с ценами и лимитами пользователей.
// @Tags Plans
// @Produce json
// @Success 200 {object} response.Response "Каталог тарифов"
// @Failure 502 {object} response.ErrorResponse "Система лицензий недоступна"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans, err := h.service.Plans(r.Context())
	if err != nil {
		log.Error("failed to load plan catalog", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not load plan catalog"))
		return
	}

	log.Info("plan catalog loaded", slog.Int("plans", len(plans)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"plans": plans,
	}))
}
