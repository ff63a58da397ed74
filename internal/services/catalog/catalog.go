// Package catalog содержит бизнес-логику каталога тарифов: загрузка
// лицензий из внешней системы, преобразование в тарифные планы с
// извлечённым количеством пользователей и кеширование результата.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geo-track/geotrack-home/internal/license"
	"github.com/geo-track/geotrack-home/internal/models"
)

const catalogCacheKey = "plan_catalog"

// LicenseClient определяет методы клиента системы лицензий,
// используемые каталогом.
type LicenseClient interface {
	// Catalog возвращает каталог лицензий продукта.
	Catalog(ctx context.Context) ([]license.License, error)
	// ActiveLicense возвращает активную лицензию клиента или nil.
	ActiveLicense(ctx context.Context, email string) (*license.ActiveLicense, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// CatalogService реализует бизнес-логику каталога тарифов.
type CatalogService struct {
	client LicenseClient
	cache  Cache
	ttl    time.Duration
	log    *slog.Logger
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(client LicenseClient, cache Cache, ttl time.Duration, log *slog.Logger) *CatalogService {
	if ttl == 0 {
		ttl = time.Minute
	}
	return &CatalogService{
		client: client,
		cache:  cache,
		ttl:    ttl,
		log:    log,
	}
}

// Plans возвращает каталог тарифных планов. Источник истины — система
// лицензий, кеш лишь гасит повторные обращения в пределах короткого TTL.
func (s *CatalogService) Plans(ctx context.Context) ([]models.Plan, error) {
	const op = "catalog.Plans"

	var cached []models.Plan
	found, err := s.cache.Get(catalogCacheKey, &cached)
	if err != nil {
		s.log.Warn("plan catalog cache read failed", slog.String("op", op), slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	licenses, err := s.client.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	plans := make([]models.Plan, 0, len(licenses))
	for _, lic := range licenses {
		plans = append(plans, s.mapPlan(lic))
	}

	if err := s.cache.Set(catalogCacheKey, plans, s.ttl); err != nil {
		s.log.Warn("plan catalog cache write failed", slog.String("op", op), slog.Any("err", err))
	}
	return plans, nil
}

// PlanBySelector находит план по идентификатору типа лицензии,
// идентификатору лицензии или слагу имени (маршрут /checkout/{planName}).
func (s *CatalogService) PlanBySelector(ctx context.Context, selector string) (*models.Plan, error) {
	const op = "catalog.PlanBySelector"

	plans, err := s.Plans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range plans {
		p := &plans[i]
		if p.LicenseTypeID == selector || p.LicenseID == selector || PlanSlug(p.Name) == selector {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%s: plan %q not found", op, selector)
}

// HasActiveLicense сообщает, есть ли у клиента активная лицензия.
// Используется после входа, чтобы направить клиента в дашборд или к
// выбору тарифа.
func (s *CatalogService) HasActiveLicense(ctx context.Context, email string) (bool, error) {
	const op = "catalog.HasActiveLicense"

	lic, err := s.client.ActiveLicense(ctx, email)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return lic != nil && lic.Status == "active", nil
}

func (s *CatalogService) mapPlan(lic license.License) models.Plan {
	lt := lic.LicenseType
	name := strings.ToLower(lt.Name)

	users, matched := license.ExtractIncludedUsers(lt.Features)
	if !matched {
		// Молчаливый дефолт занижает стоимость, если наверху сменили
		// схему фич, поэтому фиксируем его в логе.
		s.log.Warn("included users defaulted, no user-limit feature matched",
			slog.String("plan", lt.Name), slog.Int("default", users))
	}

	description := lt.Description
	if description == "" {
		description = fmt.Sprintf("Best for %s users", lt.Name)
	}

	return models.Plan{
		LicenseID:     lic.ID,
		LicenseTypeID: lt.ID,
		Name:          lt.Name,
		Description:   description,
		PricePerUser:  lt.Price.Amount,
		BillingPeriod: lt.Price.BillingPeriod,
		IncludedUsers: users,
		IsFree:        lt.Price.Amount == 0,
		IsEnterprise:  name == "enterprise",
		IsPopular:     name == "pro",
	}
}

// PlanSlug приводит имя плана к слагу маршрута оформления заказа.
func PlanSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
