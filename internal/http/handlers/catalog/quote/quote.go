// Package quote реализует HTTP-обработчик расчёта стоимости тарифа.
//
// Handler находит тариф по идентификатору или слагу из URL, считает
// полную раскладку стоимости для выбранного периода оплаты и возвращает
// её в JSON-формате.
package quote

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/geo-track/geotrack-home/internal/http/response"
	"github.com/geo-track/geotrack-home/internal/lib/sl"
	"github.com/geo-track/geotrack-home/internal/models"
	"github.com/geo-track/geotrack-home/internal/pricing"
)

// Handler обрабатывает запросы расчёта стоимости тарифа.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс поиска тарифа.
type Service interface {
	PlanBySelector(ctx context.Context, selector string) (*models.Plan, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Расчёт стоимости тарифа
// @Description Возвращает раскладку стоимости тарифа для периода оплаты: базу, скидку, налог и итог.
// @Tags Plans
// @Produce json
// @Param planID path string true "Идентификатор или слаг тарифа"
// @Param cycle query string false "Период оплаты: monthly, quarterly, half-yearly, yearly" default(monthly)
// @Success 200 {object} response.Response "Раскладка стоимости"
// @Failure 400 {object} response.ErrorResponse "Неизвестный период оплаты"
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Router /plans/{planID}/quote [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.quote"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	cycle := models.BillingCycle(r.URL.Query().Get("cycle"))
	if cycle == "" {
		cycle = models.BillingMonthly
	}
	if !cycle.Valid() {
		log.Error("unknown billing cycle", slog.String("cycle", string(cycle)))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown billing cycle"))
		return
	}

	selector := strings.ToLower(chi.URLParam(r, "planID"))
	plan, err := h.service.PlanBySelector(r.Context(), selector)
	if err != nil {
		log.Error("failed to find plan", sl.Err(err))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	}

	quote := pricing.Calculate(plan.PricePerUser, plan.IncludedUsers, cycle)
	log.Info("quote calculated",
		slog.String("plan", plan.Name),
		slog.String("cycle", string(cycle)),
		slog.Int("total", quote.Total))

	render.JSON(w, r, response.OKWithData(map[string]any{
		"plan":  plan,
		"quote": quote,
	}))
}
