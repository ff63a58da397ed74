// Package login реализует HTTP-обработчик входа клиента.
//
// Handler сначала проверяет существование аккаунта, затем выполняет
// вход через сервис синхронизации и возвращает сессионный токен.
// В ответе передаётся признак активной лицензии: по нему клиент
// попадает в дашборд или к выбору тарифа.
package login

import (
	"context"
	"encoding/json"
	"errors"
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

// Request — тело запроса на вход.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Handler управляет HTTP-запросами на вход клиента.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Клиент сервиса синхронизации
	licenses LicenseService      // Проверка активной лицензии
	tokens   TokenMaker          // Генератор сессионных токенов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс сервиса синхронизации клиентов.
type Service interface {
	Exists(ctx context.Context, email string) (bool, error)
	Login(ctx context.Context, email, password string) (*customersync.LoginResponse, error)
}

// LicenseService описывает проверку активной лицензии клиента.
type LicenseService interface {
	HasActiveLicense(ctx context.Context, email string) (bool, error)
}

// TokenMaker описывает генерацию сессионного токена.
type TokenMaker interface {
	GenerateToken(name, email string) (string, error)
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, service Service, licenses LicenseService, tokens TokenMaker) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		licenses: licenses,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Войти
// @Description Выполняет вход клиента и возвращает сессионный токен с признаком активной лицензии.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Email и пароль"
// @Success 200 {object} response.Response "Сессионный токен и данные клиента"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверный email или пароль"
// @Failure 404 {object} response.ErrorResponse "Аккаунт не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"
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
	if !exists {
		log.Info("account not found", slog.String("email", req.Email))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("account not found, sign up first"))
		return
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, customersync.ErrInvalidCredentials) {
			log.Info("invalid credentials", slog.String("email", req.Email))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid email or password"))
			return
		}
		log.Error("failed to login", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("customer sync service unavailable"))
		return
	}

	// Сервис обещает 401 на неверный пароль, но флаг в теле первичен:
	// success=false при HTTP 200 тоже означает отказ во входе.
	if !res.Success {
		log.Info("login rejected", slog.String("email", req.Email))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid email or password"))
		return
	}

	name := req.Email
	if res.Customer != nil && res.Customer.Name != "" {
		name = res.Customer.Name
	}

	token, err := h.tokens.GenerateToken(name, req.Email)
	if err != nil {
		log.Error("failed to generate session token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create session"))
		return
	}

	hasLicense, err := h.licenses.HasActiveLicense(r.Context(), req.Email)
	if err != nil {
		// Признак лицензии — навигационная подсказка, вход из-за неё не срываем.
		log.Warn("failed to check active license", sl.Err(err))
		hasLicense = false
	}

	log.Info("customer logged in", slog.String("email", req.Email))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token":              token,
		"user":               models.SessionUser{Name: name, Email: req.Email},
		"has_active_license": hasLicense,
	}))
}
