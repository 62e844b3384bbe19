package fsm

import (
	"errors"
	"testing"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
)

var allStatuses = []string{
	StatusDraft, StatusSubmitted, StatusAdminScreened, StatusRejected,
	StatusApprovedHigh, StatusTermsSet, StatusMinDue, StatusMinPaid,
	StatusCountersigned, StatusOccupied, StatusWithdrawn,
}

var allActions = []Action{
	ActionSubmit, ActionPreliminaryAccept, ActionApprove, ActionReject,
	ActionWithdraw, ActionSetTerms, ActionSystemMinReady, ActionSystemMinPaid,
	ActionCountersign, ActionOccupy,
}

func TestNextIsTotal(t *testing.T) {
	facts := Facts{Role: models.RoleOwner, HasTerms: true}
	for _, status := range allStatuses {
		for _, action := range allActions {
			next, err := Next(status, action, facts)
			if err == nil && next == "" {
				t.Errorf("(%s, %s) returned neither status nor error", status, action)
			}
			if err != nil && !errors.Is(err, models.ErrStateConflict) && !errors.Is(err, models.ErrForbidden) {
				t.Errorf("(%s, %s) returned unexpected error type: %v", status, action, err)
			}
		}
	}
	// Unknown action on any state is a conflict, not a panic.
	if _, err := Next(StatusDraft, Action("frobnicate"), facts); !errors.Is(err, models.ErrStateConflict) {
		t.Errorf("unknown action should conflict, got %v", err)
	}
}

func TestApproveScenario(t *testing.T) {
	facts := Facts{Role: models.RoleAdmin}

	next, err := Next(StatusSubmitted, ActionApprove, facts)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if next != StatusApprovedHigh {
		t.Fatalf("expected approved_high, got %s", next)
	}

	// Re-issuing approve is a no-op success.
	again, err := Next(StatusApprovedHigh, ActionApprove, facts)
	if err != nil {
		t.Fatalf("repeat approve should be a no-op: %v", err)
	}
	if again != StatusApprovedHigh {
		t.Fatalf("repeat approve returned %s", again)
	}

	// A late reject conflicts and cites the actual status.
	_, err = Next(StatusApprovedHigh, ActionReject, facts)
	var conflict *models.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if conflict.Actual != StatusApprovedHigh {
		t.Fatalf("conflict must cite current status, got %q", conflict.Actual)
	}
}

func TestRoleGuards(t *testing.T) {
	if _, err := Next(StatusSubmitted, ActionApprove, Facts{Role: models.RoleMember}); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("member must not approve, got %v", err)
	}
	if _, err := Next(StatusSubmitted, ActionApprove, Facts{Role: models.RoleTenant}); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("tenant must not approve, got %v", err)
	}
	if _, err := Next(StatusSubmitted, ActionPreliminaryAccept, Facts{Role: models.RoleMember}); err != nil {
		t.Errorf("member may preliminary_accept: %v", err)
	}
	if _, err := Next(StatusSubmitted, ActionReject, Facts{Role: models.RoleMember}); err != nil {
		t.Errorf("any firm role may reject: %v", err)
	}
	if _, err := Next(StatusMinPaid, ActionCountersign, Facts{Role: models.RoleMember}); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("member must not countersign, got %v", err)
	}
}

func TestSetTermsRequiresSnapshot(t *testing.T) {
	if _, err := Next(StatusApprovedHigh, ActionSetTerms, Facts{Role: models.RoleOwner}); err == nil {
		t.Error("set_terms without a terms snapshot must fail")
	}
	next, err := Next(StatusApprovedHigh, ActionSetTerms, Facts{Role: models.RoleOwner, HasTerms: true})
	if err != nil || next != StatusTermsSet {
		t.Errorf("set_terms: %s, %v", next, err)
	}
}

func TestSystemMinReadyBranches(t *testing.T) {
	// With a configured minimum the application waits in min_due.
	next, err := Next(StatusTermsSet, ActionSystemMinReady, Facts{UpfrontThresholdCents: 10000})
	if err != nil || next != StatusMinDue {
		t.Errorf("expected min_due, got %s, %v", next, err)
	}
	// With no minimums configured it skips straight to countersigned.
	next, err = Next(StatusTermsSet, ActionSystemMinReady, Facts{})
	if err != nil || next != StatusCountersigned {
		t.Errorf("expected countersigned, got %s, %v", next, err)
	}
}

func TestSystemMinPaidGuard(t *testing.T) {
	facts := Facts{
		UpfrontThresholdCents: 210000,
		DepositThresholdCents: 150000,
		PostedUpfrontCents:    210000,
		PostedDepositCents:    149999,
	}
	if _, err := Next(StatusMinDue, ActionSystemMinPaid, facts); !errors.Is(err, models.ErrStateConflict) {
		t.Errorf("short deposit must not satisfy the gate, got %v", err)
	}
	facts.PostedDepositCents = 150000
	next, err := Next(StatusMinDue, ActionSystemMinPaid, facts)
	if err != nil || next != StatusMinPaid {
		t.Errorf("expected min_paid, got %s, %v", next, err)
	}
}

func TestCountersignGate(t *testing.T) {
	facts := Facts{
		Role:                  models.RoleOwner,
		UpfrontThresholdCents: 50000,
		PostedUpfrontCents:    50000,
	}
	next, err := Next(StatusMinPaid, ActionCountersign, facts)
	if err != nil || next != StatusCountersigned {
		t.Fatalf("countersign: %s, %v", next, err)
	}
	facts.PostedUpfrontCents = 49999
	if _, err := Next(StatusMinPaid, ActionCountersign, facts); !errors.Is(err, models.ErrStateConflict) {
		t.Errorf("countersign below minimum must conflict, got %v", err)
	}
}

func TestWithdrawReachability(t *testing.T) {
	early := []string{StatusDraft, StatusSubmitted, StatusAdminScreened, StatusApprovedHigh, StatusTermsSet}
	for _, s := range early {
		next, err := Next(s, ActionWithdraw, Facts{Role: models.RoleTenant})
		if err != nil || next != StatusWithdrawn {
			t.Errorf("withdraw from %s: %s, %v", s, next, err)
		}
	}
	for _, s := range []string{StatusMinDue, StatusMinPaid, StatusCountersigned, StatusOccupied, StatusRejected} {
		if _, err := Next(s, ActionWithdraw, Facts{Role: models.RoleTenant}); !errors.Is(err, models.ErrStateConflict) {
			t.Errorf("withdraw from %s should conflict, got %v", s, err)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, terminal := range []string{StatusRejected, StatusWithdrawn} {
		for _, to := range allStatuses {
			if to == terminal {
				continue
			}
			if CanTransition(terminal, to) {
				t.Errorf("terminal %s must not reach %s", terminal, to)
			}
		}
	}
}
