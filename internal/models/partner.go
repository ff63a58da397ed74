package models

import "time"

// PartnerApplication — заявка на участие в партнёрской программе.
// Заявка пересылается во внешний партнёрский сервис и дублируется
// в журнале, чтобы выполнить обещание ответа в течение 48 часов.
type PartnerApplication struct {
	ID              string    `json:"id"`
	CompanyName     string    `json:"company_name"`
	ContactPerson   string    `json:"contact_person"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Country         string    `json:"country"`
	City            string    `json:"city"`
	Website         string    `json:"website,omitempty"`
	BusinessType    string    `json:"business_type"`
	Employees       string    `json:"employees,omitempty"`
	Experience      string    `json:"experience,omitempty"`
	Specialization  []string  `json:"specialization,omitempty"`
	AnnualRevenue   string    `json:"annual_revenue,omitempty"`
	ExistingClients string    `json:"existing_clients,omitempty"`
	Certifications  string    `json:"certifications,omitempty"`
	Message         string    `json:"message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
