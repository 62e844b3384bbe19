package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
)

type PaymentRepository struct {
	DB *sql.DB
}

func (r *PaymentRepository) CreatePayment(ctx context.Context, p models.Payment) (models.Payment, error) {
	query := `
    INSERT INTO payments (id, application_id, kind, status, amount_cents, provider_ref, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.DB.ExecContext(ctx, query,
		p.ID.String(),
		p.ApplicationID.String(),
		p.Kind,
		p.Status,
		int64(p.AmountCents),
		p.ProviderRef,
		p.CreatedAt,
	)
	if err != nil {
		return models.Payment{}, err
	}
	return p, nil
}

// UpdateStatusByProviderRef applies a provider status change. Returns
// the stored payment so the caller can re-run allocation.
func (r *PaymentRepository) UpdateStatusByProviderRef(ctx context.Context, providerRef, status string) (models.Payment, error) {
	query := `
    UPDATE payments SET status = $1 WHERE provider_ref = $2
    RETURNING id, application_id, kind, status, amount_cents, provider_ref, created_at
    `
	return r.scanOne(r.DB.QueryRowContext(ctx, query, status, providerRef))
}

func (r *PaymentRepository) GetByProviderRef(ctx context.Context, providerRef string) (models.Payment, error) {
	query := `
    SELECT id, application_id, kind, status, amount_cents, provider_ref, created_at
    FROM payments
    WHERE provider_ref = $1
    `
	return r.scanOne(r.DB.QueryRowContext(ctx, query, providerRef))
}

// ListByApplication returns the full payment history, oldest first.
// The allocator re-sorts internally; this ordering is for display.
func (r *PaymentRepository) ListByApplication(ctx context.Context, appID models.ApplicationID) ([]models.Payment, error) {
	query := `
    SELECT id, application_id, kind, status, amount_cents, provider_ref, created_at
    FROM payments
    WHERE application_id = $1
    ORDER BY created_at ASC, id ASC
    `
	rows, err := r.DB.QueryContext(ctx, query, appID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Payment
	for rows.Next() {
		p, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *PaymentRepository) scanOne(row *sql.Row) (models.Payment, error) {
	p, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, models.ErrPaymentNotFound
		}
		return models.Payment{}, err
	}
	return p, nil
}

func (r *PaymentRepository) scanRow(row rowScanner) (models.Payment, error) {
	var (
		p      models.Payment
		idStr  string
		appStr string
		amount int64
		ref    sql.NullString
	)
	if err := row.Scan(&idStr, &appStr, &p.Kind, &p.Status, &amount, &ref, &p.CreatedAt); err != nil {
		return models.Payment{}, err
	}
	var err error
	p.ID, err = models.ParsePaymentID(idStr)
	if err != nil {
		return models.Payment{}, err
	}
	p.ApplicationID, err = models.ParseApplicationID(appStr)
	if err != nil {
		return models.Payment{}, err
	}
	p.AmountCents = models.Cents(amount)
	p.ProviderRef = ref.String
	return p, nil
}
