package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/geo-track/geotrack-home/internal/models"
)

// MockService реализует интерфейс list.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Plans(ctx context.Context) ([]models.Plan, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]models.Plan), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная загрузка каталога",
			setupMock: func(m *MockService) {
				m.On("Plans", mock.Anything).Return([]models.Plan{
					{Name: "Free", IncludedUsers: 2, IsFree: true},
					{Name: "Pro", PricePerUser: 900, IncludedUsers: 25, IsPopular: true},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"Pro"`,
		},
		{
			name: "система лицензий недоступна",
			setupMock: func(m *MockService) {
				m.On("Plans", mock.Anything).Return(nil, errors.New("upstream down"))
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `"error":"could not load plan catalog"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
