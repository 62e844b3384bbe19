package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
)

type ObligationRepository struct {
	DB *sql.DB
}

// BulkInsert materializes a generated obligation set. The insert is
// idempotency-guarded per (application, plan version): re-invocation
// for a version that already has obligations fails without writing
// anything, so a double-fired plan-set event cannot duplicate rows.
func (r *ObligationRepository) BulkInsert(ctx context.Context, obligations []models.Obligation) error {
	if len(obligations) == 0 {
		return nil
	}
	appID := obligations[0].ApplicationID
	version := obligations[0].PlanVersion

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existing int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM obligations WHERE application_id = $1 AND plan_version = $2`,
		appID.String(), version).Scan(&existing)
	if err != nil {
		return err
	}
	if existing > 0 {
		return models.ErrObligationsExist
	}

	query := `
    INSERT INTO obligations (id, application_id, lease_id, key, obligation_group, amount_cents, due_on, priority, pre_sign_gate, paid_cents, plan_version, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `
	for _, o := range obligations {
		var dueOn interface{}
		if o.DueOn != nil {
			dueOn = *o.DueOn
		}
		_, err = tx.ExecContext(ctx, query,
			o.ID.String(),
			o.ApplicationID.String(),
			o.LeaseID.String(),
			o.Key,
			string(o.Group),
			int64(o.AmountCents),
			dueOn,
			o.Priority,
			o.PreSignGate,
			int64(o.PaidCents),
			o.PlanVersion,
			o.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert obligation %s: %w", o.Key, err)
		}
	}
	return tx.Commit()
}

// ListByApplication returns the current plan version's obligations in
// priority order.
func (r *ObligationRepository) ListByApplication(ctx context.Context, appID models.ApplicationID, planVersion int) ([]models.Obligation, error) {
	query := `
    SELECT id, application_id, lease_id, key, obligation_group, amount_cents, due_on, priority, pre_sign_gate, paid_cents, plan_version, created_at
    FROM obligations
    WHERE application_id = $1 AND plan_version = $2
    ORDER BY priority ASC, key ASC
    `
	rows, err := r.DB.QueryContext(ctx, query, appID.String(), planVersion)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Obligation
	for rows.Next() {
		var (
			o        models.Obligation
			idStr    string
			appStr   string
			leaseStr string
			group    string
			amount   int64
			paid     int64
			dueOn    sql.NullTime
		)
		if err := rows.Scan(&idStr, &appStr, &leaseStr, &o.Key, &group, &amount, &dueOn, &o.Priority, &o.PreSignGate, &paid, &o.PlanVersion, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.ID, err = models.ParseObligationID(idStr)
		if err != nil {
			return nil, err
		}
		o.ApplicationID, err = models.ParseApplicationID(appStr)
		if err != nil {
			return nil, err
		}
		o.LeaseID, err = models.ParseLeaseID(leaseStr)
		if err != nil {
			return nil, err
		}
		o.Group = models.ObligationGroup(group)
		o.AmountCents = models.Cents(amount)
		o.PaidCents = models.Cents(paid)
		if dueOn.Valid {
			due := dueOn.Time
			o.DueOn = &due
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// SetPaidCents overwrites the materialized running total for one
// obligation with the allocator's posted amount. The value always
// comes from a full recomputation, never an increment.
func (r *ObligationRepository) SetPaidCents(ctx context.Context, id models.ObligationID, paid models.Cents) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE obligations SET paid_cents = $1 WHERE id = $2`,
		int64(paid), id.String())
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrObligationNotFound
	}
	return nil
}

// InsertScheduledPayments stores the dated rent drafts generated
// alongside an obligation set.
func (r *ObligationRepository) InsertScheduledPayments(ctx context.Context, drafts []models.ScheduledPayment) error {
	if len(drafts) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
    INSERT INTO scheduled_payments (id, application_id, lease_id, obligation_key, amount_cents, due_on, plan_version, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	for _, d := range drafts {
		_, err = tx.ExecContext(ctx, query,
			d.ID.String(),
			d.ApplicationID.String(),
			d.LeaseID.String(),
			d.ObligationKey,
			int64(d.AmountCents),
			d.DueOn,
			d.PlanVersion,
			d.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert scheduled payment %s: %w", d.ObligationKey, err)
		}
	}
	return tx.Commit()
}
