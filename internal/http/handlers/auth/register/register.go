// Package register реализует HTTP-обработчик регистрации клиента.
//
// Handler валидирует данные формы, создаёт клиента в сервисе
// синхронизации и возвращает сессионный токен с данными клиента.
package register

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/geo-track/geotrack-home/internal/customersync"
	"github.com/geo-track/geotrack-home/internal/http/response"
	"github.com/geo-track/geotrack-home/internal/lib/sl"
	"github.com/geo-track/geotrack-home/internal/models"
)

// Request — тело запроса на регистрацию.
type Request struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Handler управляет HTTP-запросами на регистрацию клиента.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Клиент сервиса синхронизации
	tokens   TokenMaker          // Генератор сессионных токенов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс сервиса синхронизации клиентов.
type Service interface {
	Exists(ctx context.Context, email string) (bool, error)
	Sync(ctx context.Context, reqParams customersync.SyncCustomerRequest) error
}

// TokenMaker описывает генерацию сессионного токена.
type TokenMaker interface {
	GenerateToken(name, email string) (string, error)
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, service Service, tokens TokenMaker) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Зарегистрировать клиента
// @Description Создает клиента в сервисе синхронизации и возвращает сессионный токен.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Имя, email и пароль"
// @Success 200 {object} response.Response "Сессионный токен и данные клиента"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Клиент уже существует"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Сервис синхронизации недоступен"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"
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

	exists, err := h.service.Exists(r.Context(), req.Email)
	if err != nil {
		log.Error("failed to check customer existence", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("customer sync service unavailable"))
		return
	}
	if exists {
		log.Info("customer already exists", slog.String("email", req.Email))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("account already exists, sign in instead"))
		return
	}

	if err := h.service.Sync(r.Context(), customersync.SyncCustomerRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		log.Error("failed to sync customer", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not create account"))
		return
	}

	token, err := h.tokens.GenerateToken(req.Name, req.Email)
	if err != nil {
		log.Error("failed to generate session token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create session"))
		return
	}

	log.Info("customer registered", slog.String("email", req.Email))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token":              token,
		"user":               models.SessionUser{Name: req.Name, Email: req.Email},
		"has_active_license": false,
	}))
}
