// Package fsm owns the application lifecycle: which statuses exist,
// which action moves an application between them, and the optimistic
// compare-and-swap write that makes concurrent decisions safe.
package fsm

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
)

// Status constants used by the application lifecycle state machine.
const (
	StatusDraft         = "draft"
	StatusSubmitted     = "submitted"
	StatusAdminScreened = "admin_screened"
	StatusRejected      = "rejected"
	StatusApprovedHigh  = "approved_high"
	StatusTermsSet      = "terms_set"
	StatusMinDue        = "min_due"
	StatusMinPaid       = "min_paid"
	StatusCountersigned = "countersigned"
	StatusOccupied      = "occupied"
	StatusWithdrawn     = "withdrawn"
)

// Action names every lifecycle decision. system_* actions are emitted
// by the engine itself after payment or plan facts change.
type Action string

const (
	ActionSubmit            Action = "submit"
	ActionPreliminaryAccept Action = "preliminary_accept"
	ActionApprove           Action = "approve"
	ActionReject            Action = "reject"
	ActionWithdraw          Action = "withdraw"
	ActionSetTerms          Action = "set_terms"
	ActionSystemMinReady    Action = "system_min_ready"
	ActionSystemMinPaid     Action = "system_min_paid"
	ActionCountersign       Action = "countersign"
	ActionOccupy            Action = "occupy"
)

var transitions = map[string]map[string]struct{}{
	StatusDraft:         {StatusSubmitted: {}, StatusWithdrawn: {}},
	StatusSubmitted:     {StatusAdminScreened: {}, StatusApprovedHigh: {}, StatusRejected: {}, StatusWithdrawn: {}},
	StatusAdminScreened: {StatusApprovedHigh: {}, StatusWithdrawn: {}},
	StatusApprovedHigh:  {StatusTermsSet: {}, StatusWithdrawn: {}},
	StatusTermsSet:      {StatusMinDue: {}, StatusCountersigned: {}, StatusWithdrawn: {}},
	StatusMinDue:        {StatusMinPaid: {}},
	StatusMinPaid:       {StatusCountersigned: {}},
	StatusCountersigned: {StatusOccupied: {}},
	StatusOccupied:      {},
	StatusRejected:      {},
	StatusWithdrawn:     {},
}

// CanTransition reports whether from → to is a legal lifecycle edge.
// Staying in place is always legal (idempotent retries).
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Facts are the derived inputs the guards consult. Posted amounts come
// from the allocator; thresholds are the plan's clamped values.
type Facts struct {
	Role                  string
	HasTerms              bool
	UpfrontThresholdCents models.Cents
	DepositThresholdCents models.Cents
	PostedUpfrontCents    models.Cents
	PostedDepositCents    models.Cents
}

// MinimumConfigured reports whether any countersign minimum is set.
func (f Facts) MinimumConfigured() bool {
	return f.UpfrontThresholdCents > 0 || f.DepositThresholdCents > 0
}

// MinimumsMet reports whether posted money covers both minimums.
func (f Facts) MinimumsMet() bool {
	return f.PostedUpfrontCents >= f.UpfrontThresholdCents &&
		f.PostedDepositCents >= f.DepositThresholdCents
}

func adminOrOwner(role string) bool {
	return role == models.RoleAdmin || role == models.RoleOwner
}

// Next computes the status an action leads to from the current one. It
// is total: every (status, action) pair yields either a status or an
// explicit error, never a panic. Re-issuing an action whose target
// already holds returns the current status with no error.
//
// Errors: *models.StateConflictError for pairs outside the guard table
// or unmet system guards, models.ErrForbidden for role failures.
func Next(current string, action Action, facts Facts) (string, error) {
	conflict := func() (string, error) {
		return "", &models.StateConflictError{Expected: string(action), Actual: current}
	}

	switch action {
	case ActionSubmit:
		if current == StatusSubmitted {
			return current, nil
		}
		if current != StatusDraft {
			return conflict()
		}
		return StatusSubmitted, nil

	case ActionPreliminaryAccept:
		if current == StatusAdminScreened {
			return current, nil
		}
		if current != StatusSubmitted {
			return conflict()
		}
		if !models.IsFirmRole(facts.Role) {
			return "", fmt.Errorf("%w: preliminary_accept requires a firm role", models.ErrForbidden)
		}
		return StatusAdminScreened, nil

	case ActionApprove:
		if current == StatusApprovedHigh {
			return current, nil
		}
		if current != StatusSubmitted && current != StatusAdminScreened {
			return conflict()
		}
		if !adminOrOwner(facts.Role) {
			return "", fmt.Errorf("%w: approve requires admin or owner", models.ErrForbidden)
		}
		return StatusApprovedHigh, nil

	case ActionReject:
		if current == StatusRejected {
			return current, nil
		}
		if current != StatusSubmitted {
			return conflict()
		}
		if !models.IsFirmRole(facts.Role) {
			return "", fmt.Errorf("%w: reject requires a firm role", models.ErrForbidden)
		}
		return StatusRejected, nil

	case ActionWithdraw:
		if current == StatusWithdrawn {
			return current, nil
		}
		switch current {
		case StatusDraft, StatusSubmitted, StatusAdminScreened, StatusApprovedHigh, StatusTermsSet:
			return StatusWithdrawn, nil
		}
		return conflict()

	case ActionSetTerms:
		if current == StatusTermsSet {
			return current, nil
		}
		if current != StatusApprovedHigh {
			return conflict()
		}
		if !facts.HasTerms {
			return "", fmt.Errorf("%w: set_terms requires a terms snapshot", models.ErrStateConflict)
		}
		return StatusTermsSet, nil

	case ActionSystemMinReady:
		if current == StatusMinDue || current == StatusCountersigned {
			return current, nil
		}
		if current != StatusTermsSet {
			return conflict()
		}
		if facts.MinimumConfigured() {
			return StatusMinDue, nil
		}
		return StatusCountersigned, nil

	case ActionSystemMinPaid:
		if current == StatusMinPaid {
			return current, nil
		}
		if current != StatusMinDue {
			return conflict()
		}
		if !facts.MinimumsMet() {
			return "", fmt.Errorf("%w: configured minimums not yet posted", models.ErrStateConflict)
		}
		return StatusMinPaid, nil

	case ActionCountersign:
		if current == StatusCountersigned {
			return current, nil
		}
		if current != StatusMinPaid {
			return conflict()
		}
		if !adminOrOwner(facts.Role) {
			return "", fmt.Errorf("%w: countersign requires admin or owner", models.ErrForbidden)
		}
		if !facts.MinimumsMet() {
			return "", fmt.Errorf("%w: configured minimums not yet posted", models.ErrStateConflict)
		}
		return StatusCountersigned, nil

	case ActionOccupy:
		if current == StatusOccupied {
			return current, nil
		}
		if current != StatusCountersigned {
			return conflict()
		}
		if !models.IsFirmRole(facts.Role) {
			return "", fmt.Errorf("%w: occupy requires a firm role", models.ErrForbidden)
		}
		return StatusOccupied, nil
	}

	return conflict()
}

// Apply updates an application status with an optimistic guard: the
// write only lands if the row still holds the status the caller read.
// A zero-row update is reported as a conflict carrying the status
// actually found, never silently retried.
func Apply(ctx context.Context, tx *sql.Tx, appID models.ApplicationID, fromStatus, toStatus string) error {
	if !CanTransition(fromStatus, toStatus) {
		return &models.StateConflictError{Expected: fromStatus, Actual: toStatus}
	}
	if fromStatus == toStatus {
		return nil
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE applications SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		toStatus, appID.String(), fromStatus)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var actual string
		if err := tx.QueryRowContext(ctx,
			`SELECT status FROM applications WHERE id = $1`, appID.String()).Scan(&actual); err != nil {
			if err == sql.ErrNoRows {
				return models.ErrApplicationNotFound
			}
			return err
		}
		return &models.StateConflictError{Expected: fromStatus, Actual: actual}
	}
	return nil
}
