// Package metrics содержит счётчики Prometheus для воронки покупки.
// Метрики регистрируются в реестре по умолчанию и отдаются через
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckoutStarted — количество запущенных оформлений заказа.
	CheckoutStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geotrack_checkout_started_total",
			Help: "Количество запущенных оформлений заказа.",
		},
		[]string{"plan", "billing_cycle"},
	)

	// CheckoutCompleted — количество завершённых покупок.
	CheckoutCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geotrack_checkout_completed_total",
			Help: "Количество успешно завершённых покупок.",
		},
		[]string{"plan", "billing_cycle"},
	)

	// CheckoutFailed — количество сбоев оформления по стадиям автомата.
	CheckoutFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geotrack_checkout_failed_total",
			Help: "Количество сбоев оформления заказа по стадиям.",
		},
		[]string{"stage"},
	)

	// PartnerApplications — количество принятых партнёрских заявок.
	PartnerApplications = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geotrack_partner_applications_total",
			Help: "Количество принятых партнёрских заявок.",
		},
	)
)
