// Package routes реализует HTTP-обработчик манифеста маршрутов сайта.
// Браузерный клиент строит по нему навигацию: якорные секции главной
// страницы, страницы документов и воронку покупки. Неизвестные пути
// клиент перенаправляет на главную.
package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/geo-track/geotrack-home/internal/http/response"
)

// Route — запись манифеста маршрутов.
type Route struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Section  string `json:"section,omitempty"`  // Якорная секция главной страницы
	Redirect string `json:"redirect,omitempty"` // Перенаправление вместо собственной страницы
}

// Манифест повторяет структуру сайта: секции главной, туториалы,
// оформление покупки, документы и партнёрская программа.
var manifest = []Route{
	{Path: "/", Name: "home"},
	{Path: "/features", Name: "features", Section: "features"},
	{Path: "/product", Name: "product", Section: "product"},
	{Path: "/why-us", Name: "why-us", Section: "why-us"},
	{Path: "/pricing", Name: "pricing", Section: "pricing"},
	{Path: "/faqs", Name: "faqs", Section: "faqs"},
	{Path: "/tutorials", Name: "tutorials"},
	{Path: "/checkout/{planName}", Name: "checkout"},
	{Path: "/payment-success", Name: "payment-success"},
	{Path: "/privacy", Name: "privacy-policy"},
	{Path: "/terms", Name: "terms-of-service"},
	{Path: "/cookies", Name: "cookie-policy"},
	{Path: "/security", Name: "security"},
	{Path: "/contact", Name: "contact"},
	{Path: "/partners", Name: "partners"},
	{Path: "/become-partner", Name: "become-partner"},
	{Path: "*", Name: "fallback", Redirect: "/"},
}

// Handler обрабатывает запросы манифеста маршрутов.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler с переданным логгером.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Манифест маршрутов сайта
// @Description Возвращает маршруты сайта для браузерного клиента.
// @Tags Site
// @Produce json
// @Success 200 {object} response.Response "Манифест маршрутов"
// @Router /routes [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(map[string]any{
		"routes": manifest,
	}))
}
