package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/lease/fsm"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
)

type ApplicationRepository struct {
	DB *sql.DB
}

func (r *ApplicationRepository) CreateApplication(ctx context.Context, app models.Application) (models.Application, error) {
	query := `
    INSERT INTO applications (id, lease_id, tenant_user_id, landlord_user_id, status, plan_version, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	if app.Status == "" {
		app.Status = fsm.StatusDraft
	}
	_, err := r.DB.ExecContext(ctx, query,
		app.ID.String(),
		app.LeaseID.String(),
		app.TenantUserID,
		app.LandlordUserID,
		app.Status,
		app.PlanVersion,
		app.CreatedAt,
	)
	if err != nil {
		return models.Application{}, fmt.Errorf("create application: %w", err)
	}
	return app, nil
}

func (r *ApplicationRepository) GetApplicationByID(ctx context.Context, id models.ApplicationID) (models.Application, error) {
	query := `
    SELECT id, lease_id, tenant_user_id, landlord_user_id, status, payment_plan, plan_version, created_at, updated_at
    FROM applications
    WHERE id = $1
    `
	var (
		app       models.Application
		idStr     string
		leaseStr  string
		planJSON  sql.NullString
		updatedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, id.String()).Scan(
		&idStr, &leaseStr, &app.TenantUserID, &app.LandlordUserID,
		&app.Status, &planJSON, &app.PlanVersion, &app.CreatedAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Application{}, models.ErrApplicationNotFound
		}
		return models.Application{}, err
	}
	app.ID, err = models.ParseApplicationID(idStr)
	if err != nil {
		return models.Application{}, fmt.Errorf("corrupt application id %q: %w", idStr, err)
	}
	app.LeaseID, err = models.ParseLeaseID(leaseStr)
	if err != nil {
		return models.Application{}, fmt.Errorf("corrupt lease id %q: %w", leaseStr, err)
	}
	if planJSON.Valid && planJSON.String != "" {
		var plan models.PaymentPlan
		if err := json.Unmarshal([]byte(planJSON.String), &plan); err != nil {
			return models.Application{}, fmt.Errorf("corrupt payment plan: %w", err)
		}
		app.PaymentPlan = &plan
	}
	if updatedAt.Valid {
		app.UpdatedAt = &updatedAt.Time
	}
	return app, nil
}

// SetPaymentPlan stores the canonical plan snapshot and bumps the plan
// version in one write.
func (r *ApplicationRepository) SetPaymentPlan(ctx context.Context, id models.ApplicationID, plan models.PaymentPlan) error {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	query := `
    UPDATE applications
    SET payment_plan = $1, plan_version = $2, updated_at = NOW()
    WHERE id = $3
    `
	res, err := r.DB.ExecContext(ctx, query, string(planJSON), plan.Version, id.String())
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrApplicationNotFound
	}
	return nil
}

// TransitionStatus performs the guarded status write and appends the
// timeline entry in one transaction. The update is filtered by the
// expected current status; a zero-row match surfaces as a conflict
// carrying the actual status (see fsm.Apply), never as a blind set.
func (r *ApplicationRepository) TransitionStatus(ctx context.Context, id models.ApplicationID, fromStatus, toStatus, note string, at time.Time) error {
	if fromStatus == toStatus {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fsm.Apply(ctx, tx, id, fromStatus, toStatus); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO application_timeline (application_id, status, note, at) VALUES ($1, $2, $3, $4)`,
		id.String(), toStatus, note, at)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ApplicationRepository) GetTimeline(ctx context.Context, id models.ApplicationID) ([]models.TimelineEntry, error) {
	query := `
    SELECT application_id, status, note, at
    FROM application_timeline
    WHERE application_id = $1
    ORDER BY at ASC, id ASC
    `
	rows, err := r.DB.QueryContext(ctx, query, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.TimelineEntry
	for rows.Next() {
		var (
			entry models.TimelineEntry
			idStr string
		)
		if err := rows.Scan(&idStr, &entry.Status, &entry.Note, &entry.At); err != nil {
			return nil, err
		}
		entry.ApplicationID, err = models.ParseApplicationID(idStr)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
