package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/casetrack/casetrack/internal/audit"
	"github.com/casetrack/casetrack/internal/casefile/application/services"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	"github.com/casetrack/casetrack/internal/casefile/infrastructure/cache"
	courtDomain "github.com/casetrack/casetrack/internal/court/domain"
	"github.com/casetrack/casetrack/internal/shared/infrastructure/outbox"
)

// mockStore is a mock implementation of lifecycle.Store.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) CaseExists(ctx context.Context, caseID uuid.UUID) (bool, error) {
	args := m.Called(ctx, caseID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) CurrentState(ctx context.Context, caseID uuid.UUID) (lifecycle.State, error) {
	args := m.Called(ctx, caseID)
	return args.Get(0).(lifecycle.State), args.Error(1)
}

func (m *mockStore) ActiveAssignee(ctx context.Context, caseID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, caseID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockStore) SwapState(ctx context.Context, caseID uuid.UUID, expected, next lifecycle.State) (lifecycle.State, bool, error) {
	args := m.Called(ctx, caseID, expected, next)
	return args.Get(0).(lifecycle.State), args.Bool(1), args.Error(2)
}

func (m *mockStore) AppendHistory(ctx context.Context, entry lifecycle.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// mockOutboxRepo is a mock implementation of outbox.Repository.
type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

// mockSubmissionRepo is a mock implementation of courtDomain.SubmissionRepository.
type mockSubmissionRepo struct {
	mock.Mock
}

func (m *mockSubmissionRepo) Save(ctx context.Context, s *courtDomain.Submission) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSubmissionRepo) FindByID(ctx context.Context, id uuid.UUID) (*courtDomain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*courtDomain.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) FindPending(ctx context.Context, caseID uuid.UUID) (*courtDomain.Submission, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*courtDomain.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) FindByCase(ctx context.Context, caseID uuid.UUID) ([]*courtDomain.Submission, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*courtDomain.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) LatestVersion(ctx context.Context, caseID uuid.UUID) (int, error) {
	args := m.Called(ctx, caseID)
	return args.Int(0), args.Error(1)
}

func (m *mockSubmissionRepo) SaveAcknowledgement(ctx context.Context, a *courtDomain.Acknowledgement) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockSubmissionRepo) FindAcknowledgements(ctx context.Context, submissionID uuid.UUID) ([]*courtDomain.Acknowledgement, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*courtDomain.Acknowledgement), args.Error(1)
}

// passthroughUoW hands the context through unchanged; the engine joins the
// handler's unit of work the same way nested pgx transactions do.
type passthroughUoW struct{}

func (passthroughUoW) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (passthroughUoW) Commit(ctx context.Context) error                   { return nil }
func (passthroughUoW) Rollback(ctx context.Context) error                 { return nil }

func TestSubmitToCourtHandler_Handle(t *testing.T) {
	caseID := uuid.New()
	courtID := uuid.New()
	sho := lifecycle.Actor{ID: uuid.New(), Role: lifecycle.RoleSHO}

	newHandler := func(store *mockStore, outboxRepo *mockOutboxRepo, subRepo *mockSubmissionRepo) *SubmitToCourtHandler {
		engine := services.NewEngine(store, outboxRepo, passthroughUoW{}, nil)
		return NewSubmitToCourtHandler(subRepo, engine, audit.NoopRecorder{}, cache.NoopCaseCache{}, passthroughUoW{})
	}

	t.Run("submits a charge sheet at the next version", func(t *testing.T) {
		store := new(mockStore)
		outboxRepo := new(mockOutboxRepo)
		subRepo := new(mockSubmissionRepo)
		handler := newHandler(store, outboxRepo, subRepo)

		store.On("CaseExists", mock.Anything, caseID).Return(true, nil)
		store.On("CurrentState", mock.Anything, caseID).Return(lifecycle.StateChargeSheetPrepared, nil)
		store.On("ActiveAssignee", mock.Anything, caseID).Return(uuid.Nil, nil)
		store.On("SwapState", mock.Anything, caseID, lifecycle.StateChargeSheetPrepared, lifecycle.StateSubmittedToCourt).
			Return(lifecycle.StateSubmittedToCourt, true, nil)
		store.On("AppendHistory", mock.Anything, mock.Anything).Return(nil)
		outboxRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		subRepo.On("LatestVersion", mock.Anything, caseID).Return(0, nil)
		subRepo.On("Save", mock.Anything, mock.MatchedBy(func(s *courtDomain.Submission) bool {
			return s.CaseID() == caseID &&
				s.Type() == courtDomain.SubmissionChargeSheet &&
				s.Version() == 1 &&
				s.IsPending()
		})).Return(nil)

		result, err := handler.Handle(context.Background(), SubmitToCourtCommand{
			CaseID:            caseID,
			FromStateExpected: lifecycle.StateChargeSheetPrepared,
			CourtID:           courtID,
			Actor:             sho,
		})

		require.NoError(t, err)
		assert.Equal(t, lifecycle.StateSubmittedToCourt, result.State)
		assert.Equal(t, 1, result.SubmissionVersion)
		assert.NotEqual(t, uuid.Nil, result.SubmissionID)

		subRepo.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("resubmission continues the version sequence", func(t *testing.T) {
		store := new(mockStore)
		outboxRepo := new(mockOutboxRepo)
		subRepo := new(mockSubmissionRepo)
		handler := newHandler(store, outboxRepo, subRepo)

		store.On("CaseExists", mock.Anything, caseID).Return(true, nil)
		store.On("CurrentState", mock.Anything, caseID).Return(lifecycle.StateClosureReportPrepared, nil)
		store.On("ActiveAssignee", mock.Anything, caseID).Return(uuid.Nil, nil)
		store.On("SwapState", mock.Anything, caseID, lifecycle.StateClosureReportPrepared, lifecycle.StateSubmittedToCourt).
			Return(lifecycle.StateSubmittedToCourt, true, nil)
		store.On("AppendHistory", mock.Anything, mock.Anything).Return(nil)
		outboxRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		subRepo.On("LatestVersion", mock.Anything, caseID).Return(2, nil)
		subRepo.On("Save", mock.Anything, mock.MatchedBy(func(s *courtDomain.Submission) bool {
			return s.Version() == 3 && s.Type() == courtDomain.SubmissionClosureReport
		})).Return(nil)

		result, err := handler.Handle(context.Background(), SubmitToCourtCommand{
			CaseID:            caseID,
			FromStateExpected: lifecycle.StateClosureReportPrepared,
			CourtID:           courtID,
			Actor:             sho,
		})

		require.NoError(t, err)
		assert.Equal(t, 3, result.SubmissionVersion)
	})

	t.Run("rejects submission from a non-prepared state", func(t *testing.T) {
		store := new(mockStore)
		subRepo := new(mockSubmissionRepo)
		handler := newHandler(store, new(mockOutboxRepo), subRepo)

		_, err := handler.Handle(context.Background(), SubmitToCourtCommand{
			CaseID:            caseID,
			FromStateExpected: lifecycle.StateUnderInvestigation,
			CourtID:           courtID,
			Actor:             sho,
		})

		assert.True(t, lifecycle.IsKind(err, lifecycle.KindInvalidEdge))
		store.AssertNotCalled(t, "CaseExists", mock.Anything, mock.Anything)
		subRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("engine rejection leaves no submission", func(t *testing.T) {
		store := new(mockStore)
		subRepo := new(mockSubmissionRepo)
		handler := newHandler(store, new(mockOutboxRepo), subRepo)

		store.On("CaseExists", mock.Anything, caseID).Return(true, nil)
		store.On("CurrentState", mock.Anything, caseID).Return(lifecycle.StateSubmittedToCourt, nil)

		_, err := handler.Handle(context.Background(), SubmitToCourtCommand{
			CaseID:            caseID,
			FromStateExpected: lifecycle.StateChargeSheetPrepared,
			CourtID:           courtID,
			Actor:             sho,
		})

		require.True(t, lifecycle.IsKind(err, lifecycle.KindStaleState))
		subRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
