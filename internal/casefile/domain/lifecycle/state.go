// Package lifecycle implements the case lifecycle state machine: the closed
// set of case states, the guard table of permitted transitions, and the
// decision logic consulted by every workflow command and by read-side
// "which actions are available" queries.
package lifecycle

import "fmt"

// State is a case lifecycle state. The set is closed; unknown values are
// rejected at the boundary.
type State string

const (
	StateFIRRegistered          State = "FIR_REGISTERED"
	StateCaseAssigned           State = "CASE_ASSIGNED"
	StateUnderInvestigation     State = "UNDER_INVESTIGATION"
	StateInvestigationPaused    State = "INVESTIGATION_PAUSED"
	StateInvestigationCompleted State = "INVESTIGATION_COMPLETED"
	StateChargeSheetPrepared    State = "CHARGE_SHEET_PREPARED"
	StateClosureReportPrepared  State = "CLOSURE_REPORT_PREPARED"
	StateSubmittedToCourt       State = "SUBMITTED_TO_COURT"
	StateReturnedForDefects     State = "RETURNED_FOR_DEFECTS"
	StateResubmittedToCourt     State = "RESUBMITTED_TO_COURT"
	StateCourtAccepted          State = "COURT_ACCEPTED"
	StateTrialOngoing           State = "TRIAL_ONGOING"
	StateJudgmentReserved       State = "JUDGMENT_RESERVED"
	StateDisposed               State = "DISPOSED"
	StateAppealed               State = "APPEALED"
	StateArchived               State = "ARCHIVED"
)

// InitialState is the state every case is created in, atomically with the FIR.
const InitialState = StateFIRRegistered

var allStates = map[State]struct{}{
	StateFIRRegistered:          {},
	StateCaseAssigned:           {},
	StateUnderInvestigation:     {},
	StateInvestigationPaused:    {},
	StateInvestigationCompleted: {},
	StateChargeSheetPrepared:    {},
	StateClosureReportPrepared:  {},
	StateSubmittedToCourt:       {},
	StateReturnedForDefects:     {},
	StateResubmittedToCourt:     {},
	StateCourtAccepted:          {},
	StateTrialOngoing:           {},
	StateJudgmentReserved:       {},
	StateDisposed:               {},
	StateAppealed:               {},
	StateArchived:               {},
}

// ParseState validates a raw string against the closed state set.
func ParseState(raw string) (State, error) {
	s := State(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown case state %q", raw)
	}
	return s, nil
}

// IsValid reports whether the state belongs to the closed set.
func (s State) IsValid() bool {
	_, ok := allStates[s]
	return ok
}

func (s State) String() string {
	return string(s)
}

// IsInCourt reports whether the case is currently before a court.
func (s State) IsInCourt() bool {
	switch s {
	case StateSubmittedToCourt, StateResubmittedToCourt, StateCourtAccepted,
		StateTrialOngoing, StateJudgmentReserved:
		return true
	}
	return false
}

// IsClosable reports whether a judge may archive the case from this state.
func (s State) IsClosable() bool {
	switch s {
	case StateCourtAccepted, StateTrialOngoing, StateJudgmentReserved, StateDisposed:
		return true
	}
	return false
}

// AcceptsIntake reports whether a court clerk may intake the case.
func (s State) AcceptsIntake() bool {
	return s == StateSubmittedToCourt || s == StateResubmittedToCourt
}
