// Package apply реализует HTTP-обработчик приёма партнёрской заявки.
//
// Handler валидирует форму заявки, передаёт её бизнес-логике и
// возвращает идентификатор принятой заявки.
package apply

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/geo-track/geotrack-home/internal/http/response"
	"github.com/geo-track/geotrack-home/internal/lib/sl"
	"github.com/geo-track/geotrack-home/internal/models"
)

// Request — тело партнёрской заявки.
type Request struct {
	CompanyName     string   `json:"company_name" validate:"required"`
	ContactPerson   string   `json:"contact_person" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           string   `json:"phone" validate:"required"`
	Country         string   `json:"country" validate:"required"`
	City            string   `json:"city" validate:"required"`
	Website         string   `json:"website"`
	BusinessType    string   `json:"business_type" validate:"required"`
	Employees       string   `json:"employees"`
	Experience      string   `json:"experience"`
	Specialization  []string `json:"specialization"`
	AnnualRevenue   string   `json:"annual_revenue"`
	ExistingClients string   `json:"existing_clients"`
	Certifications  string   `json:"certifications"`
	Message         string   `json:"message"`
}

// Handler управляет HTTP-запросами приёма партнёрских заявок.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики партнёрской программы
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики партнёрской программы.
type Service interface {
	Apply(ctx context.Context, app models.PartnerApplication) (*models.PartnerApplication, error)
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
// @Summary Подать партнёрскую заявку
// @Description Принимает заявку на партнёрскую программу и подтверждает ответ в течение 48 часов.
// @Tags Partners
// @Accept json
// @Produce json
// @Param request body Request true "Данные партнёрской заявки"
// @Success 200 {object} response.Response "Заявка принята"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Партнёрский сервис недоступен"
// @Router /partners/apply [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.partner.apply"
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

	accepted, err := h.service.Apply(r.Context(), models.PartnerApplication{
		CompanyName:     req.CompanyName,
		ContactPerson:   req.ContactPerson,
		Email:           req.Email,
		Phone:           req.Phone,
		Country:         req.Country,
		City:            req.City,
		Website:         req.Website,
		BusinessType:    req.BusinessType,
		Employees:       req.Employees,
		Experience:      req.Experience,
		Specialization:  req.Specialization,
		AnnualRevenue:   req.AnnualRevenue,
		ExistingClients: req.ExistingClients,
		Certifications:  req.Certifications,
		Message:         req.Message,
	})
	if err != nil {
		log.Error("failed to submit partner application", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not submit partner application"))
		return
	}

	log.Info("partner application accepted", slog.String("id", accepted.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"application_id": accepted.ID,
		"message":        "application received, our team will contact you within 48 hours",
	}))
}
