// Package tutorials реализует HTTP-обработчик пошагового руководства
// по мобильному приложению. Контент статический и отдается как
// структурированные секции с шагами.
package tutorials

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/geo-track/geotrack-home/internal/http/response"
)

// Step — один шаг руководства.
type Step struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Note        string `json:"note,omitempty"`
}

// Section — секция руководства с шагами.
type Section struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Steps []Step `json:"steps"`
}

var sections = []Section{
	{
		ID:    "sign-in",
		Title: "Sign-In & Account Creation",
		Steps: []Step{
			{Title: "Launch the Application", Description: "Open the GeoTrack app on your mobile device."},
			{
				Title:       "Sign In / Sign Up",
				Description: "Enter the domain email ID provided by the admin (Example: username@companydomain.com) and password. Tap Sign In.",
				Note:        "Email & Domain Validation Rules: only company domain emails registered by the admin are accepted.",
			},
			{Title: "Background Location Access", Description: "After successful sign-in, the app will request background location permission."},
		},
	},
	{
		ID:    "permissions",
		Title: "Permission Setup",
		Steps: []Step{
			{
				Title:       "Allow Required Services",
				Description: "To ensure smooth functioning, allow the following permissions:",
				Note:        "Important: location, camera and storage access are required for tracking, business card scans and receipts.",
			},
		},
	},
	{
		ID:    "map",
		Title: "Map Screen & Client Tracking",
		Steps: []Step{
			{Title: "View Your Location & Nearby Clients", Description: "The map displays your current location. Nearby clients are shown using colored markers."},
			{Title: "Click on Client Marker", Description: "On tapping a client marker, you can view client details and start a meeting with the client."},
		},
	},
	{
		ID:    "meetings",
		Title: "Meeting Management",
		Steps: []Step{
			{Title: "Start Meeting", Description: "When Start Meeting is selected, view client location, phone number, meeting start time & duration."},
			{Title: "During the Meeting", Description: "Add meeting notes, attach documents, images, or files, and update meeting outcomes in real time."},
			{Title: "End Meeting", Description: "Tap End Meeting. Client status automatically updates from Active to Inactive/Completed. Notes and attachments are securely saved."},
		},
	},
	{
		ID:    "client-details",
		Title: "Client Detail View",
		Steps: []Step{
			{Title: "View Client Details", Description: "From the client screen or map, view client status, last visited date & history, contact information (Email, Address, Coordinates), meeting notes & attachments, and client location highlighted on the map."},
		},
	},
	{
		ID:    "trips",
		Title: "Trip & Expense Management",
		Steps: []Step{
			{Title: "Choose Trip Type", Description: "Select between Single Trip (one-way journey, single transport mode) or Multi-Leg Trip (multiple journeys, different transport modes in one trip)."},
			{Title: "Single Trip Entry", Description: "Fill in start location, end location, date & time, distance, transport mode (Bus/Train/Bike/Rickshaw), expense details, and upload receipts."},
			{Title: "Multi-Leg Trip Entry", Description: "Enter trip name, multiple journey legs with start/end location, distance, transport mode, amount spent, notes, and attach receipts. View total legs, distance, and expense amount."},
		},
	},
	{
		ID:    "visit-status",
		Title: "Client Focus & Visit Status",
		Steps: []Step{
			{Title: "Client Marker Status on Map", Description: "Client markers on map indicate visit status and priority."},
		},
	},
	{
		ID:    "clients",
		Title: "Client Screen",
		Steps: []Step{
			{Title: "View All Clients", Description: "Clients are categorized as All, Active, Inactive, and Completed. Search by name, sort by distance, and filter by status."},
			{Title: "Add New Client", Description: "Tap Add Client and choose Quick Fill (scan business card to auto-populate) or Manual Entry (client name, phone, email, address, pincode, notes)."},
		},
	},
	{
		ID:    "activity",
		Title: "Activity Screen",
		Steps: []Step{
			{Title: "View Activity Logs", Description: "Displays total number of activities, date & time, latitude & longitude, location coordinates, and distance traveled."},
		},
	},
	{
		ID:    "profile",
		Title: "Profile & Settings",
		Steps: []Step{
			{Title: "Profile Information", Description: "View & edit profile name, User/Employee ID, and view total expenses incurred."},
			{Title: "Account Settings", Description: "Enable/disable background location tracking, view registered email and member since date. Tap Sign Out to exit the app securely."},
		},
	},
}

// Handler обрабатывает запросы руководства.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler с переданным логгером.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Руководство по приложению
// @Description Возвращает пошаговое руководство по мобильному приложению.
// @Tags Site
// @Produce json
// @Success 200 {object} response.Response "Секции руководства"
// @Router /tutorials [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(map[string]any{
		"sections": sections,
	}))
}
