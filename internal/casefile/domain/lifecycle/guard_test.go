package lifecycle

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actor(role Role) Actor {
	return Actor{ID: uuid.New(), Role: role, OrganizationID: uuid.New()}
}

func TestParseState(t *testing.T) {
	t.Run("accepts every known state", func(t *testing.T) {
		for raw := range allStates {
			s, err := ParseState(string(raw))
			require.NoError(t, err)
			assert.Equal(t, raw, s)
		}
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		_, err := ParseState("PENDING")
		assert.Error(t, err)

		_, err = ParseState("")
		assert.Error(t, err)

		_, err = ParseState("fir_registered")
		assert.Error(t, err, "states are case sensitive")
	})
}

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"POLICE", "SHO", "COURT_CLERK", "JUDGE"} {
		r, err := ParseRole(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, r.String())
	}

	_, err := ParseRole("ADMIN")
	assert.Error(t, err)
}

func TestDecide_EdgeExistence(t *testing.T) {
	tests := []struct {
		name    string
		current State
		to      State
	}{
		{"no skipping assignment", StateFIRRegistered, StateUnderInvestigation},
		{"no direct closure from registration", StateFIRRegistered, StateArchived},
		{"no backwards move", StateUnderInvestigation, StateCaseAssigned},
		{"archived is terminal except reopen", StateArchived, StateDisposed},
		{"disposed cannot resume trial", StateDisposed, StateTrialOngoing},
		{"no inbound edge to appealed", StateDisposed, StateAppealed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Decide(Request{
				CaseID:            uuid.New(),
				FromStateExpected: tt.current,
				ToState:           tt.to,
				Actor:             actor(RoleJudge),
			}, Snapshot{Current: tt.current})

			require.Error(t, err)
			assert.True(t, IsKind(err, KindInvalidEdge))
		})
	}

	t.Run("rejects unknown target state", func(t *testing.T) {
		err := Decide(Request{
			FromStateExpected: StateFIRRegistered,
			ToState:           State("DELETED"),
			Actor:             actor(RoleSHO),
		}, Snapshot{Current: StateFIRRegistered})

		assert.True(t, IsKind(err, KindInvalidEdge))
	})
}

func TestDecide_RoleAuthorization(t *testing.T) {
	tests := []struct {
		name    string
		current State
		to      State
		allowed []Role
	}{
		{"assignment is SHO only", StateFIRRegistered, StateCaseAssigned, []Role{RoleSHO}},
		{"charge sheet is SHO only", StateInvestigationCompleted, StateChargeSheetPrepared, []Role{RoleSHO}},
		{"intake is clerk only", StateSubmittedToCourt, StateCourtAccepted, []Role{RoleCourtClerk}},
		{"trial start is judge only", StateCourtAccepted, StateTrialOngoing, []Role{RoleJudge}},
	}

	all := []Role{RolePolice, RoleSHO, RoleCourtClerk, RoleJudge}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, role := range all {
				permitted := false
				for _, a := range tt.allowed {
					if a == role {
						permitted = true
					}
				}

				err := Decide(Request{
					FromStateExpected: tt.current,
					ToState:           tt.to,
					Actor:             actor(role),
					Reason:            "r",
					CourtID:           uuid.New(),
					ArtifactURL:       "s3://bucket/report.pdf",
					ReopenRequestID:   uuid.New(),
				}, Snapshot{Current: tt.current})

				if permitted {
					assert.NoError(t, err, "role %s should pass", role)
				} else {
					assert.True(t, IsKind(err, KindUnauthorized), "role %s should be rejected", role)
				}
			}
		})
	}
}

func TestDecide_AssigneeIdentity(t *testing.T) {
	assignee := uuid.New()
	other := uuid.New()

	t.Run("assigned officer may complete investigation", func(t *testing.T) {
		err := Decide(Request{
			FromStateExpected: StateUnderInvestigation,
			ToState:           StateInvestigationCompleted,
			Actor:             Actor{ID: assignee, Role: RolePolice},
		}, Snapshot{Current: StateUnderInvestigation, AssigneeID: assignee})

		assert.NoError(t, err)
	})

	t.Run("other officer may not", func(t *testing.T) {
		err := Decide(Request{
			FromStateExpected: StateUnderInvestigation,
			ToState:           StateInvestigationCompleted,
			Actor:             Actor{ID: other, Role: RolePolice},
		}, Snapshot{Current: StateUnderInvestigation, AssigneeID: assignee})

		assert.True(t, IsKind(err, KindUnauthorized))
	})

	t.Run("unassigned case rejects assignee-only edge", func(t *testing.T) {
		err := Decide(Request{
			FromStateExpected: StateInvestigationPaused,
			ToState:           StateUnderInvestigation,
			Actor:             Actor{ID: other, Role: RolePolice},
		}, Snapshot{Current: StateInvestigationPaused, AssigneeID: uuid.Nil})

		assert.True(t, IsKind(err, KindUnauthorized))
	})

	t.Run("SHO may start investigation for any officer", func(t *testing.T) {
		err := Decide(Request{
			FromStateExpected: StateCaseAssigned,
			ToState:           StateUnderInvestigation,
			Actor:             Actor{ID: other, Role: RoleSHO},
		}, Snapshot{Current: StateCaseAssigned, AssigneeID: assignee})

		assert.NoError(t, err)
	})

	t.Run("police starting investigation must hold the assignment", func(t *testing.T) {
		err := Decide(Request{
			FromStateExpected: StateCaseAssigned,
			ToState:           StateUnderInvestigation,
			Actor:             Actor{ID: other, Role: RolePolice},
		}, Snapshot{Current: StateCaseAssigned, AssigneeID: assignee})

		assert.True(t, IsKind(err, KindUnauthorized))
	})
}

func TestDecide_Preconditions(t *testing.T) {
	t.Run("submission requires a court", func(t *testing.T) {
		req := Request{
			FromStateExpected: StateChargeSheetPrepared,
			ToState:           StateSubmittedToCourt,
			Actor:             actor(RoleSHO),
		}
		err := Decide(req, Snapshot{Current: StateChargeSheetPrepared})
		require.True(t, IsKind(err, KindPreconditionFailed))

		req.CourtID = uuid.New()
		assert.NoError(t, Decide(req, Snapshot{Current: StateChargeSheetPrepared}))
	})

	t.Run("return for defects requires a reason", func(t *testing.T) {
		req := Request{
			FromStateExpected: StateSubmittedToCourt,
			ToState:           StateReturnedForDefects,
			Actor:             actor(RoleCourtClerk),
		}
		err := Decide(req, Snapshot{Current: StateSubmittedToCourt})
		require.True(t, IsKind(err, KindPreconditionFailed))

		req.Reason = "missing witness statements"
		assert.NoError(t, Decide(req, Snapshot{Current: StateSubmittedToCourt}))
	})

	t.Run("disposal requires a reason", func(t *testing.T) {
		req := Request{
			FromStateExpected: StateJudgmentReserved,
			ToState:           StateDisposed,
			Actor:             actor(RoleJudge),
		}
		err := Decide(req, Snapshot{Current: StateJudgmentReserved})
		require.True(t, IsKind(err, KindPreconditionFailed))

		req.Reason = "convicted on all counts"
		assert.NoError(t, Decide(req, Snapshot{Current: StateJudgmentReserved}))
	})

	t.Run("archiving requires the closure artifact", func(t *testing.T) {
		req := Request{
			FromStateExpected: StateDisposed,
			ToState:           StateArchived,
			Actor:             actor(RoleJudge),
		}
		err := Decide(req, Snapshot{Current: StateDisposed})
		require.True(t, IsKind(err, KindPreconditionFailed))

		req.ArtifactURL = "s3://casetrack/closures/case.pdf"
		assert.NoError(t, Decide(req, Snapshot{Current: StateDisposed}))
	})

	t.Run("reopening requires reason and approved request", func(t *testing.T) {
		req := Request{
			FromStateExpected: StateArchived,
			ToState:           StateUnderInvestigation,
			Actor:             actor(RoleJudge),
			Reason:            "new evidence surfaced",
		}
		err := Decide(req, Snapshot{Current: StateArchived})
		require.True(t, IsKind(err, KindPreconditionFailed))

		req.ReopenRequestID = uuid.New()
		assert.NoError(t, Decide(req, Snapshot{Current: StateArchived}))
	})

	t.Run("role check precedes precondition check", func(t *testing.T) {
		err := Decide(Request{
			FromStateExpected: StateChargeSheetPrepared,
			ToState:           StateSubmittedToCourt,
			Actor:             actor(RolePolice),
		}, Snapshot{Current: StateChargeSheetPrepared})

		assert.True(t, IsKind(err, KindUnauthorized))
	})
}

func TestDecide_Reassignment(t *testing.T) {
	err := Decide(Request{
		FromStateExpected: StateCaseAssigned,
		ToState:           StateCaseAssigned,
		Actor:             actor(RoleSHO),
	}, Snapshot{Current: StateCaseAssigned, AssigneeID: uuid.New()})

	assert.NoError(t, err, "SHO may reassign without leaving CASE_ASSIGNED")
}

func TestAllowedTransitions(t *testing.T) {
	t.Run("SHO from investigation completed", func(t *testing.T) {
		got := AllowedTransitions(actor(RoleSHO), Snapshot{Current: StateInvestigationCompleted})
		assert.Equal(t, []State{StateChargeSheetPrepared, StateClosureReportPrepared}, got)
	})

	t.Run("clerk from submitted", func(t *testing.T) {
		got := AllowedTransitions(actor(RoleCourtClerk), Snapshot{Current: StateSubmittedToCourt})
		assert.Equal(t, []State{StateCourtAccepted, StateReturnedForDefects}, got)
	})

	t.Run("non-assignee officer has no moves from under investigation", func(t *testing.T) {
		got := AllowedTransitions(actor(RolePolice), Snapshot{
			Current:    StateUnderInvestigation,
			AssigneeID: uuid.New(),
		})
		assert.Empty(t, got)
	})

	t.Run("assigned officer may pause or complete", func(t *testing.T) {
		a := actor(RolePolice)
		got := AllowedTransitions(a, Snapshot{
			Current:    StateUnderInvestigation,
			AssigneeID: a.ID,
		})
		assert.Equal(t, []State{StateInvestigationCompleted, StateInvestigationPaused}, got)
	})

	t.Run("archived offers nothing to non-judges", func(t *testing.T) {
		got := AllowedTransitions(actor(RoleSHO), Snapshot{Current: StateArchived})
		assert.Empty(t, got)
	})

	t.Run("ignores field preconditions", func(t *testing.T) {
		got := AllowedTransitions(actor(RoleJudge), Snapshot{Current: StateArchived})
		assert.Equal(t, []State{StateUnderInvestigation}, got)
	})
}

func TestStatePredicates(t *testing.T) {
	assert.True(t, StateTrialOngoing.IsInCourt())
	assert.False(t, StateArchived.IsInCourt())
	assert.False(t, StateChargeSheetPrepared.IsInCourt())

	assert.True(t, StateDisposed.IsClosable())
	assert.False(t, StateSubmittedToCourt.IsClosable())

	assert.True(t, StateSubmittedToCourt.AcceptsIntake())
	assert.True(t, StateResubmittedToCourt.AcceptsIntake())
	assert.False(t, StateCourtAccepted.AcceptsIntake())
}

func TestErrorHelpers(t *testing.T) {
	t.Run("stale state carries actual", func(t *testing.T) {
		err := NewStaleState(StateTrialOngoing)
		assert.Equal(t, StateTrialOngoing, err.ActualState)

		kind, ok := KindOf(err)
		require.True(t, ok)
		assert.Equal(t, KindStaleState, kind)
	})

	t.Run("foreign errors are not lifecycle errors", func(t *testing.T) {
		_, ok := KindOf(assert.AnError)
		assert.False(t, ok)
		assert.False(t, IsKind(assert.AnError, KindStaleState))
	})

	t.Run("downstream failure preserves its cause", func(t *testing.T) {
		err := NewDownstreamFailure("save message", assert.AnError)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "downstream_failure")
	})
}

// TestAllowedTransitionsAgreeWithDecide checks that the read side never
// offers a move the write side would reject, and never hides one it would
// accept, for every state and role. The actor holds the active assignment
// and the request carries every auxiliary field, so only edge existence and
// authorization can differ.
func TestAllowedTransitionsAgreeWithDecide(t *testing.T) {
	reopenID := uuid.New()

	for current := range allStates {
		for _, role := range []Role{RolePolice, RoleSHO, RoleCourtClerk, RoleJudge} {
			a := actor(role)
			snap := Snapshot{Current: current, AssigneeID: a.ID}

			offered := make(map[State]bool)
			for _, s := range AllowedTransitions(a, snap) {
				offered[s] = true
			}

			for target := range allStates {
				err := Decide(Request{
					CaseID:            uuid.New(),
					FromStateExpected: current,
					ToState:           target,
					Actor:             a,
					Reason:            "cross-check",
					CourtID:           uuid.New(),
					ArtifactURL:       "s3://casetrack/closures/x.pdf",
					ReopenRequestID:   reopenID,
				}, snap)

				if offered[target] {
					assert.NoError(t, err, "%s -> %s offered to %s but rejected", current, target, role)
				} else {
					assert.Error(t, err, "%s -> %s hidden from %s but accepted", current, target, role)
				}
			}
		}
	}
}
