// Package middlewarectx содержит HTTP middleware воронки покупки:
// проверку сессионного JWT, ограничение частоты запросов и CORS для
// браузерного клиента.
//
// SessionMiddleware проверяет наличие и валидность сессионного токена
// в заголовке Authorization и кладёт данные клиента в контекст запроса.
// В случае ошибки проверки возвращает HTTP 401 Unauthorized.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/geo-track/geotrack-home/internal/http/response"
	"github.com/geo-track/geotrack-home/internal/lib/jwt"
	"github.com/geo-track/geotrack-home/internal/lib/sl"
	"github.com/geo-track/geotrack-home/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User — ключ для данных клиента сессии в контексте.
const User Key = "user"

// TokenParser описывает проверку сессионного токена.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.SessionClaims, error)
}

// SessionMiddleware возвращает HTTP middleware, который проверяет
// сессионный JWT в заголовке Authorization.
//
// Если токен валиден, добавляет имя и email клиента в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func SessionMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired session token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired session token"))
				return
			}

			user := models.SessionUser{Name: claims.Name, Email: claims.Email}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), User, user)))
		})
	}
}

// UserFromContext извлекает данные клиента сессии из контекста запроса.
func UserFromContext(ctx context.Context) (models.SessionUser, bool) {
	user, ok := ctx.Value(User).(models.SessionUser)
	return user, ok && user.Email != ""
}
