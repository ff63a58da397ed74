package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/geo-track/geotrack-home/internal/models"
)

// ErrAttemptNotFound возвращается, когда запись с таким transaction id
// в журнале отсутствует.
var ErrAttemptNotFound = errors.New("checkout attempt not found")

// CreateAttempt вставляет новую журнальную запись попытки покупки.
func (s *Storage) CreateAttempt(ctx context.Context, attempt models.CheckoutAttempt) error {
	const op = "storage.CreateAttempt"

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO checkout_attempts
			(id, transaction_id, order_id, email, company_name, license_id,
			 plan_name, billing_cycle, amount_total, currency, free, state, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		attempt.ID, attempt.TransactionID, attempt.OrderID, attempt.Email,
		attempt.CompanyName, attempt.LicenseID, attempt.PlanName,
		string(attempt.BillingCycle), attempt.AmountTotal, attempt.Currency,
		attempt.Free, attempt.State, attempt.FailureReason)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateAttemptState переводит запись в новое состояние по transaction id.
// orderID и failureReason записываются, только если непустые.
func (s *Storage) UpdateAttemptState(ctx context.Context, transactionID, state, orderID, failureReason string) error {
	const op = "storage.UpdateAttemptState"

	res, err := s.DB.ExecContext(ctx, `
		UPDATE checkout_attempts
		SET state = $2,
		    order_id = CASE WHEN $3 <> '' THEN $3 ELSE order_id END,
		    failure_reason = CASE WHEN $4 <> '' THEN $4 ELSE failure_reason END,
		    updated_at = now()
		WHERE transaction_id = $1`,
		transactionID, state, orderID, failureReason)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrAttemptNotFound)
	}
	return nil
}

// ReadAttempt возвращает журнальную запись по transaction id.
func (s *Storage) ReadAttempt(ctx context.Context, transactionID string) (*models.CheckoutAttempt, error) {
	const op = "storage.ReadAttempt"

	var attempt models.CheckoutAttempt
	var cycle string
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, transaction_id, order_id, email, company_name, license_id,
		       plan_name, billing_cycle, amount_total, currency, free, state,
		       failure_reason, created_at, updated_at
		FROM checkout_attempts
		WHERE transaction_id = $1`,
		transactionID).Scan(
		&attempt.ID, &attempt.TransactionID, &attempt.OrderID, &attempt.Email,
		&attempt.CompanyName, &attempt.LicenseID, &attempt.PlanName, &cycle,
		&attempt.AmountTotal, &attempt.Currency, &attempt.Free, &attempt.State,
		&attempt.FailureReason, &attempt.CreatedAt, &attempt.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrAttemptNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	attempt.BillingCycle = models.BillingCycle(cycle)
	return &attempt, nil
}

// CreatePartnerApplication сохраняет копию партнёрской заявки.
func (s *Storage) CreatePartnerApplication(ctx context.Context, app models.PartnerApplication) error {
	const op = "storage.CreatePartnerApplication"

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO partner_applications
			(id, company_name, contact_person, email, phone, country, city,
			 website, business_type, employees, experience, specialization,
			 annual_revenue, existing_clients, certifications, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		app.ID, app.CompanyName, app.ContactPerson, app.Email, app.Phone,
		app.Country, app.City, app.Website, app.BusinessType, app.Employees,
		app.Experience, strings.Join(app.Specialization, ", "), app.AnnualRevenue,
		app.ExistingClients, app.Certifications, app.Message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
