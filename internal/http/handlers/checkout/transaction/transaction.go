// Package transaction реализует HTTP-обработчик получения деталей
// покупки по идентификатору транзакции. Им пользуются страница
// успешной оплаты и поддержка при разборе неполных оплат.
package transaction

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/geo-track/geotrack-home/internal/http/response"
	"github.com/geo-track/geotrack-home/internal/lib/sl"
	"github.com/geo-track/geotrack-home/internal/services/checkout"
	"github.com/geo-track/geotrack-home/internal/storage"
)

// Handler обрабатывает запросы деталей покупки.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики оформления
}

// Service описывает интерфейс получения деталей покупки.
type Service interface {
	Transaction(ctx context.Context, transactionID string) (*checkout.TransactionDetails, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Детали покупки
// @Description Возвращает журнальную запись покупки и актуальный статус транзакции в платёжном шлюзе.
// @Tags Checkout
// @Produce json
// @Security BearerAuth
// @Param transactionID path string true "Идентификатор транзакции"
// @Success 200 {object} response.Response "Детали покупки"
// @Failure 404 {object} response.ErrorResponse "Транзакция не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payment/transaction/{transactionID} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.transaction"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	transactionID := chi.URLParam(r, "transactionID")
	details, err := h.service.Transaction(r.Context(), transactionID)
	if err != nil {
		log.Error("failed to read transaction", sl.Err(err))
		if errors.Is(err, storage.ErrAttemptNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("transaction not found"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read transaction"))
		return
	}

	log.Info("transaction read", slog.String("transaction_id", transactionID))
	render.JSON(w, r, response.OKWithData(details))
}
