// Package verify реализует HTTP-обработчик проверки оплаты.
//
// Handler принимает поля подписи из обратного вызова платёжного виджета,
// валидирует их и завершает оформление через бизнес-логику. Сессия не
// требуется: аутентификацией служит сама подпись платежа.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/geo-track/geotrack-home/internal/http/response"
	"github.com/geo-track/geotrack-home/internal/lib/sl"
	"github.com/geo-track/geotrack-home/internal/models"
	"github.com/geo-track/geotrack-home/internal/paymentgateway"
	"github.com/geo-track/geotrack-home/internal/services/checkout"
	"github.com/geo-track/geotrack-home/internal/storage"
)

// Request — поля подписи из обратного вызова платёжного виджета.
// Имена полей заданы контрактом шлюза.
type Request struct {
	TransactionID     string `json:"transactionId" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

// Handler управляет HTTP-запросами на проверку оплаты.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики оформления
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс завершения оформления покупки.
type Service interface {
	Verify(ctx context.Context, reqParams paymentgateway.VerifyPaymentRequest) (*models.CheckoutAttempt, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Проверить оплату
// @Description Проверяет подпись и статус оплаты после возврата из платёжного виджета и завершает покупку.
// @Tags Checkout
// @Accept json
// @Produce json
// @Param request body Request true "Поля подписи платёжного виджета"
// @Success 200 {object} response.Response "Покупка завершена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или неуспешная проверка оплаты"
// @Failure 404 {object} response.ErrorResponse "Транзакция не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /payment/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.verify"
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

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	attempt, err := h.service.Verify(r.Context(), paymentgateway.VerifyPaymentRequest{
		TransactionID:     req.TransactionID,
		RazorpayPaymentID: req.RazorpayPaymentID,
		RazorpayOrderID:   req.RazorpayOrderID,
		RazorpaySignature: req.RazorpaySignature,
	})
	if err != nil {
		log.Error("failed to verify payment", sl.Err(err))
		switch {
		case errors.Is(err, checkout.ErrVerificationFailed):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("payment verification failed"))
		case errors.Is(err, storage.ErrAttemptNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("transaction not found"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not verify payment"))
		}
		return
	}

	log.Info("payment verified", slog.String("transaction_id", attempt.TransactionID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"attempt": attempt,
	}))
}
