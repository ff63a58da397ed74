// Package start реализует HTTP-обработчик запуска оформления покупки.
//
// Handler принимает JSON-запрос с тарифом и периодом оплаты, валидирует
// его, извлекает клиента из контекста сессии, запускает оформление через
// бизнес-логику и возвращает данные для платёжного виджета.
//
// В случае ошибок формируются соответствующие HTTP-ответы с описанием проблемы.
package start

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/geo-track/geotrack-home/internal/http/middlewarectx"
	"github.com/geo-track/geotrack-home/internal/http/response"
	"github.com/geo-track/geotrack-home/internal/lib/sl"
	"github.com/geo-track/geotrack-home/internal/models"
	"github.com/geo-track/geotrack-home/internal/services/checkout"
)

// Request — тело запроса на оформление покупки.
type Request struct {
	Plan         string `json:"plan" validate:"required"`
	BillingCycle string `json:"billing_cycle" validate:"required,oneof=monthly quarterly half-yearly yearly"`
	CompanyName  string `json:"company_name" validate:"required"`
}

// Handler управляет HTTP-запросами на оформление покупки.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	plans    PlanService         // Сервис каталога для поиска тарифа
	service  Service             // Сервис бизнес-логики оформления
	validate *validator.Validate // Валидатор структуры входящих данных
}

// PlanService описывает интерфейс поиска тарифа.
type PlanService interface {
	PlanBySelector(ctx context.Context, selector string) (*models.Plan, error)
}

// Service описывает интерфейс бизнес-логики оформления покупки.
type Service interface {
	Start(ctx context.Context, p checkout.StartParams) (*checkout.StartResult, error)
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, plans PlanService, service Service) *Handler {
	return &Handler{
		log:      log,
		plans:    plans,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Оформить покупку тарифа
// @Description Создает покупку в системе лицензий и заказ в платёжном шлюзе. Для бесплатного тарифа оформление завершается сразу. Возвращает данные для платёжного виджета и идентификатор транзакции.
// @Tags Checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Тариф, период оплаты и название компании"
// @Success 200 {object} response.Response "Данные для оплаты"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Клиент не авторизован"
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Система лицензий или платёжный шлюз недоступны"
// @Router /checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.start"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("session user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	plan, err := h.plans.PlanBySelector(r.Context(), req.Plan)
	if err != nil {
		log.Error("failed to find plan", sl.Err(err))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	}

	result, err := h.service.Start(r.Context(), checkout.StartParams{
		Name:        user.Name,
		Email:       user.Email,
		CompanyName: req.CompanyName,
		Plan:        *plan,
		Cycle:       models.BillingCycle(req.BillingCycle),
	})
	if err != nil {
		log.Error("failed to start checkout", sl.Err(err))
		switch {
		case errors.Is(err, checkout.ErrTransactionDataMissing):
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("purchase created without transaction data"))
		case errors.Is(err, checkout.ErrOrderCreationFailed):
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("payment order creation failed"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not start checkout"))
		}
		return
	}

	log.Info("checkout started",
		slog.String("transaction_id", result.TransactionID),
		slog.Bool("free", result.Free))
	render.JSON(w, r, response.OKWithData(result))
}
