package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
)

func TestSubmission(t *testing.T) {
	caseID := uuid.New()
	courtID := uuid.New()
	sho := uuid.New()

	t.Run("opens pending at the given version", func(t *testing.T) {
		s := NewSubmission(caseID, courtID, sho, SubmissionChargeSheet, 1)

		assert.Equal(t, SubmissionPending, s.Status())
		assert.True(t, s.IsPending())
		assert.Equal(t, 1, s.Version())
		assert.Equal(t, SubmissionChargeSheet, s.Type())
		assert.False(t, s.SubmittedAt().IsZero())
	})

	t.Run("accept settles once", func(t *testing.T) {
		s := NewSubmission(caseID, courtID, sho, SubmissionChargeSheet, 1)

		require.NoError(t, s.Accept())
		assert.Equal(t, SubmissionAccepted, s.Status())
		assert.False(t, s.IsPending())

		assert.ErrorIs(t, s.Accept(), ErrSubmissionSettled)
		assert.ErrorIs(t, s.Return("late"), ErrSubmissionSettled)
	})

	t.Run("return records the defects note", func(t *testing.T) {
		s := NewSubmission(caseID, courtID, sho, SubmissionClosureReport, 2)

		require.NoError(t, s.Return("unsigned annexure"))
		assert.Equal(t, SubmissionReturned, s.Status())
		assert.Equal(t, "unsigned annexure", s.DefectsNote())

		assert.ErrorIs(t, s.Accept(), ErrSubmissionSettled)
	})
}

func TestParseSubmissionType(t *testing.T) {
	st, err := ParseSubmissionType("CHARGE_SHEET")
	require.NoError(t, err)
	assert.Equal(t, SubmissionChargeSheet, st)

	st, err = ParseSubmissionType("CLOSURE_REPORT")
	require.NoError(t, err)
	assert.Equal(t, SubmissionClosureReport, st)

	_, err = ParseSubmissionType("FINAL_REPORT")
	assert.Error(t, err)
}

func TestParseActionType(t *testing.T) {
	for _, raw := range []string{"COGNIZANCE", "JUDGMENT", "DISPOSAL", "APPEAL"} {
		at, err := ParseActionType(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, string(at))
	}

	_, err := ParseActionType("SUMMONS")
	assert.Error(t, err)
}

func TestActionType_TargetState(t *testing.T) {
	tests := []struct {
		action ActionType
		target lifecycle.State
		moves  bool
	}{
		{ActionCognizance, lifecycle.StateTrialOngoing, true},
		{ActionJudgment, lifecycle.StateJudgmentReserved, true},
		{ActionDisposal, lifecycle.StateDisposed, true},
		{ActionAppeal, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			target, moves := tt.action.TargetState()
			assert.Equal(t, tt.moves, moves)
			assert.Equal(t, tt.target, target)
		})
	}
}

func TestAcknowledgement(t *testing.T) {
	submissionID := uuid.New()
	clerk := uuid.New()

	a := NewAcknowledgement(submissionID, clerk, "ACK/2026/117")

	assert.Equal(t, submissionID, a.SubmissionID())
	assert.Equal(t, clerk, a.AcknowledgedBy())
	assert.Equal(t, "ACK/2026/117", a.AckNumber())
	assert.False(t, a.AcknowledgedAt().IsZero())
}
