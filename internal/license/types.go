package license

// Price — цена типа лицензии: сумма за пользователя в месяц и период.
type Price struct {
	Amount        int    `json:"amount"`
	BillingPeriod string `json:"billingPeriod"`
}

// LicenseType описывает тарифный план в терминах системы лицензий.
type LicenseType struct {
	ID          string      `json:"_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       Price       `json:"price"`
	Features    FeatureList `json:"features"`
}

// License — запись лицензии, привязывающая тип лицензии к продукту.
type License struct {
	ID          string      `json:"_id"`
	LicenseType LicenseType `json:"licenseType"`
}

// CatalogResponse — ответ на запрос каталога лицензий продукта.
type CatalogResponse struct {
	Licenses []License `json:"licenses"`
}

// ActiveLicense — активная лицензия клиента, если она есть.
type ActiveLicense struct {
	Status    string `json:"status"`
	LicenseID string `json:"licenseId,omitempty"`
}

// ActiveLicenseResponse — ответ на запрос активной лицензии по email.
type ActiveLicenseResponse struct {
	ActiveLicense *ActiveLicense `json:"activeLicense"`
}

// PurchaseRequest — запрос на создание записи покупки лицензии.
type PurchaseRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	LicenseID    string `json:"licenseId"`
	BillingCycle string `json:"billingCycle"`
	Amount       int    `json:"amount"`
	Currency     string `json:"currency"`
}

// PurchaseData — идентификаторы, которые система лицензий возвращает
// после создания покупки. Отсутствие любого из них — жёсткая ошибка
// оформления заказа.
type PurchaseData struct {
	TransactionID string `json:"transactionId"`
	UserID        string `json:"userId"`
}

// PurchaseResponse — ответ на создание записи покупки.
type PurchaseResponse struct {
	Data PurchaseData `json:"data"`
}
