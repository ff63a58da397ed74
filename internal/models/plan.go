// Package models содержит доменные структуры тарифных планов, оформления
// заказа и сессии покупателя, используемые в бизнес-логике и хранилище.
package models

// BillingCycle определяет период предоплаты, выбранный при покупке.
type BillingCycle string

// Поддерживаемые периоды оплаты.
const (
	BillingMonthly    BillingCycle = "monthly"
	BillingQuarterly  BillingCycle = "quarterly"
	BillingHalfYearly BillingCycle = "half-yearly"
	BillingYearly     BillingCycle = "yearly"
)

// Valid сообщает, входит ли значение в список поддерживаемых периодов.
func (c BillingCycle) Valid() bool {
	switch c {
	case BillingMonthly, BillingQuarterly, BillingHalfYearly, BillingYearly:
		return true
	}
	return false
}

// Upstream возвращает период в терминах системы лицензий.
// Система лицензий понимает только monthly и yearly, поэтому
// quarterly и half-yearly при создании покупки сводятся к monthly.
func (c BillingCycle) Upstream() BillingCycle {
	if c == BillingQuarterly || c == BillingHalfYearly {
		return BillingMonthly
	}
	return c
}

// Plan представляет тарифный план, собранный из ответа системы лицензий.
// Каталог загружается заново при каждом обращении (с коротким кешем)
// и нигде не сохраняется как источник истины.
type Plan struct {
	LicenseID     string `json:"license_id"`      // Идентификатор лицензии (запись покупки создаётся по нему)
	LicenseTypeID string `json:"license_type_id"` // Идентификатор типа лицензии (по нему план выбирают в UI)
	Name          string `json:"name"`            // Отображаемое имя плана
	Description   string `json:"description"`     // Описание плана
	PricePerUser  int    `json:"price_per_user"`  // Цена за пользователя в месяц
	BillingPeriod string `json:"billing_period"`  // Период цены, как его отдаёт система лицензий
	IncludedUsers int    `json:"included_users"`  // Количество пользователей, входящих в план
	IsFree        bool   `json:"is_free"`
	IsEnterprise  bool   `json:"is_enterprise"`
	IsPopular     bool   `json:"is_popular"`
}

// SessionUser представляет покупателя, вошедшего через сервис
// синхронизации клиентов. Данные живут в подписанном токене сессии.
type SessionUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
