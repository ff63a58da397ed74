// Package pricing реализует калькулятор стоимости подписки: базовая
// месячная стоимость, промежуточная сумма за период, скидка за период
// предоплаты, налог GST и итоговая сумма. Все функции чистые, без
// побочных эффектов — результат используется и для отображения, и как
// сумма при создании заказа в платёжном шлюзе.
package pricing

import (
	"math"

	"github.com/geo-track/geotrack-home/internal/models"
)

// GSTRate — фиксированная ставка налога GST, начисляется на сумму после скидки.
const GSTRate = 0.18

// Quote — расчёт стоимости для выбранного плана и периода оплаты.
type Quote struct {
	PricePerUser       int                 `json:"price_per_user"`
	IncludedUsers      int                 `json:"included_users"`
	BillingCycle       models.BillingCycle `json:"billing_cycle"`
	DurationMonths     int                 `json:"duration_months"`
	MonthlyBase        int                 `json:"monthly_base"`
	Subtotal           float64             `json:"subtotal"`
	DiscountPercent    int                 `json:"discount_percent"`
	Discount           float64             `json:"discount"`
	PriceAfterDiscount float64             `json:"price_after_discount"`
	Tax                int                 `json:"tax"`
	Total              int                 `json:"total"`
}

// DurationMonths возвращает длительность периода оплаты в месяцах.
func DurationMonths(c models.BillingCycle) int {
	switch c {
	case models.BillingQuarterly:
		return 3
	case models.BillingHalfYearly:
		return 6
	case models.BillingYearly:
		return 12
	default:
		return 1
	}
}

// DiscountRate возвращает долю скидки для периода оплаты:
// 0% / 5% / 10% / 20% для monthly / quarterly / half-yearly / yearly.
func DiscountRate(c models.BillingCycle) float64 {
	switch c {
	case models.BillingQuarterly:
		return 0.05
	case models.BillingHalfYearly:
		return 0.10
	case models.BillingYearly:
		return 0.20
	default:
		return 0
	}
}

// Calculate считает полную раскладку стоимости: pricePerUser — цена за
// пользователя в месяц, users — количество пользователей в плане.
// Бесплатный план (pricePerUser == 0) даёт нулевой итог при любом периоде.
func Calculate(pricePerUser, users int, cycle models.BillingCycle) Quote {
	monthlyBase := pricePerUser * users
	subtotal := float64(monthlyBase * DurationMonths(cycle))
	discount := subtotal * DiscountRate(cycle)
	afterDiscount := subtotal - discount
	tax := int(math.Round(afterDiscount * GSTRate))
	total := int(math.Round(afterDiscount + float64(tax)))

	return Quote{
		PricePerUser:       pricePerUser,
		IncludedUsers:      users,
		BillingCycle:       cycle,
		DurationMonths:     DurationMonths(cycle),
		MonthlyBase:        monthlyBase,
		Subtotal:           subtotal,
		DiscountPercent:    int(DiscountRate(cycle) * 100),
		Discount:           discount,
		PriceAfterDiscount: afterDiscount,
		Tax:                tax,
		Total:              total,
	}
}
