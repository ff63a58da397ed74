package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/geo-track/geotrack-home/internal/license"
)

// MockLicenseClient реализует интерфейс catalog.LicenseClient
type MockLicenseClient struct {
	mock.Mock
}

func (m *MockLicenseClient) Catalog(ctx context.Context) ([]license.License, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]license.License), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLicenseClient) ActiveLicense(ctx context.Context, email string) (*license.ActiveLicense, error) {
	args := m.Called(ctx, email)
	if res := args.Get(0); res != nil {
		return res.(*license.ActiveLicense), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCache реализует интерфейс catalog.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func testLicenses(t *testing.T) []license.License {
	t.Helper()
	raw := `[
		{"_id":"lic-1","licenseType":{"_id":"lt-1","name":"Free","price":{"amount":0,"billingPeriod":"monthly"},
			"features":{"user-limit":2}}},
		{"_id":"lic-2","licenseType":{"_id":"lt-2","name":"Pro","description":"For growing teams","price":{"amount":900,"billingPeriod":"monthly"},
			"features":[{"featureType":"limit","featureSlug":"user-limit","limitValue":25}]}},
		{"_id":"lic-3","licenseType":{"_id":"lt-3","name":"Enterprise","price":{"amount":2500,"billingPeriod":"monthly"},
			"features":[{"featureType":"limit","featureSlug":"storage-limit","limitValue":500}]}}
	]`
	var licenses []license.License
	require.NoError(t, json.Unmarshal([]byte(raw), &licenses))
	return licenses
}

func newService(client LicenseClient, cache Cache) *CatalogService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCatalogService(client, cache, time.Minute, logger)
}

func TestPlans(t *testing.T) {
	t.Run("загрузка и маппинг каталога", func(t *testing.T) {
		client := new(MockLicenseClient)
		cache := new(MockCache)
		cache.On("Get", catalogCacheKey, mock.Anything).Return(false, nil)
		cache.On("Set", catalogCacheKey, mock.Anything, time.Minute).Return(nil)
		client.On("Catalog", mock.Anything).Return(testLicenses(t), nil)

		plans, err := newService(client, cache).Plans(context.Background())
		require.NoError(t, err)
		require.Len(t, plans, 3)

		free := plans[0]
		assert.True(t, free.IsFree)
		assert.Equal(t, 2, free.IncludedUsers)
		assert.Equal(t, "Best for Free users", free.Description)

		pro := plans[1]
		assert.True(t, pro.IsPopular)
		assert.Equal(t, 25, pro.IncludedUsers)
		assert.Equal(t, "For growing teams", pro.Description)

		enterprise := plans[2]
		assert.True(t, enterprise.IsEnterprise)
		// Нет фичи с лимитом пользователей — дефолт.
		assert.Equal(t, 1, enterprise.IncludedUsers)

		client.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("попадание в кеш не трогает систему лицензий", func(t *testing.T) {
		client := new(MockLicenseClient)
		cache := new(MockCache)
		cache.On("Get", catalogCacheKey, mock.Anything).Return(true, nil)

		_, err := newService(client, cache).Plans(context.Background())
		require.NoError(t, err)

		client.AssertNotCalled(t, "Catalog", mock.Anything)
	})

	t.Run("ошибка системы лицензий пробрасывается", func(t *testing.T) {
		client := new(MockLicenseClient)
		cache := new(MockCache)
		cache.On("Get", catalogCacheKey, mock.Anything).Return(false, nil)
		client.On("Catalog", mock.Anything).Return(nil, errors.New("upstream down"))

		_, err := newService(client, cache).Plans(context.Background())
		assert.Error(t, err)
	})
}

func TestPlanBySelector(t *testing.T) {
	client := new(MockLicenseClient)
	cache := new(MockCache)
	cache.On("Get", catalogCacheKey, mock.Anything).Return(false, nil)
	cache.On("Set", catalogCacheKey, mock.Anything, time.Minute).Return(nil)
	client.On("Catalog", mock.Anything).Return(testLicenses(t), nil)

	svc := newService(client, cache)

	tests := []struct {
		name     string
		selector string
		wantPlan string
		wantErr  bool
	}{
		{name: "по идентификатору типа лицензии", selector: "lt-2", wantPlan: "Pro"},
		{name: "по идентификатору лицензии", selector: "lic-3", wantPlan: "Enterprise"},
		{name: "по слагу имени", selector: "free", wantPlan: "Free"},
		{name: "неизвестный план", selector: "ultimate", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := svc.PlanBySelector(context.Background(), tt.selector)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPlan, plan.Name)
		})
	}
}

func TestHasActiveLicense(t *testing.T) {
	tests := []struct {
		name    string
		lic     *license.ActiveLicense
		licErr  error
		want    bool
		wantErr bool
	}{
		{name: "активная лицензия", lic: &license.ActiveLicense{Status: "active"}, want: true},
		{name: "лицензия в другом статусе", lic: &license.ActiveLicense{Status: "expired"}, want: false},
		{name: "лицензии нет", lic: nil, want: false},
		{name: "ошибка запроса", licErr: errors.New("timeout"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockLicenseClient)
			cache := new(MockCache)
			client.On("ActiveLicense", mock.Anything, "ops@acme.in").Return(tt.lic, tt.licErr)

			got, err := newService(client, cache).HasActiveLicense(context.Background(), "ops@acme.in")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanSlug(t *testing.T) {
	assert.Equal(t, "starter", PlanSlug("Starter"))
	assert.Equal(t, "field-pro", PlanSlug(" Field Pro "))
}
