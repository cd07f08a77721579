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
	"github.com/casetrack/casetrack/internal/casefile/domain/casefile"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	"github.com/casetrack/casetrack/internal/casefile/infrastructure/cache"
	courtDomain "github.com/casetrack/casetrack/internal/court/domain"
	reopenDomain "github.com/casetrack/casetrack/internal/reopen/domain"
	sharedDomain "github.com/casetrack/casetrack/internal/shared/domain"
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

// mockReopenRepo is a mock implementation of reopenDomain.Repository.
type mockReopenRepo struct {
	mock.Mock
}

func (m *mockReopenRepo) Save(ctx context.Context, r *reopenDomain.Request) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReopenRepo) FindByID(ctx context.Context, id uuid.UUID) (*reopenDomain.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reopenDomain.Request), args.Error(1)
}

func (m *mockReopenRepo) FindPendingByCase(ctx context.Context, caseID uuid.UUID) (*reopenDomain.Request, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reopenDomain.Request), args.Error(1)
}

func (m *mockReopenRepo) FindByCase(ctx context.Context, caseID uuid.UUID) ([]*reopenDomain.Request, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reopenDomain.Request), args.Error(1)
}

// mockCaseRepo is a mock implementation of casefile.Repository.
type mockCaseRepo struct {
	mock.Mock
}

func (m *mockCaseRepo) Save(ctx context.Context, c *casefile.Case) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*casefile.Case, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*casefile.Case), args.Error(1)
}

func (m *mockCaseRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// mockAssignmentRepo is a mock implementation of casefile.AssignmentRepository.
type mockAssignmentRepo struct {
	mock.Mock
}

func (m *mockAssignmentRepo) Save(ctx context.Context, a *casefile.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAssignmentRepo) FindActive(ctx context.Context, caseID uuid.UUID) (*casefile.Assignment, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*casefile.Assignment), args.Error(1)
}

func (m *mockAssignmentRepo) FindByCase(ctx context.Context, caseID uuid.UUID) ([]*casefile.Assignment, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*casefile.Assignment), args.Error(1)
}

func (m *mockAssignmentRepo) CloseActive(ctx context.Context, caseID uuid.UUID, at time.Time) (int64, error) {
	args := m.Called(ctx, caseID, at)
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

// passthroughUoW hands the context through unchanged.
type passthroughUoW struct{}

func (passthroughUoW) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (passthroughUoW) Commit(ctx context.Context) error                   { return nil }
func (passthroughUoW) Rollback(ctx context.Context) error                 { return nil }

func pendingRequest(caseID, requestedBy uuid.UUID) *reopenDomain.Request {
	return reopenDomain.RehydrateRequest(
		sharedDomain.NewBaseEntity(),
		caseID, requestedBy,
		"new forensic evidence surfaced",
		reopenDomain.StatusPending,
		"", uuid.Nil, nil,
	)
}

func courtSubmission(caseID, courtID uuid.UUID) *courtDomain.Submission {
	return courtDomain.RehydrateSubmission(
		sharedDomain.NewBaseEntity(),
		caseID, courtID, uuid.New(),
		courtDomain.SubmissionChargeSheet, 1,
		courtDomain.SubmissionAccepted, "",
		time.Now().UTC(),
	)
}

func TestApproveReopenHandler_Handle(t *testing.T) {
	caseID := uuid.New()
	requester := uuid.New()
	courtID := uuid.New()
	judge := lifecycle.Actor{ID: uuid.New(), Role: lifecycle.RoleJudge, OrganizationID: courtID}

	newHandler := func(store *mockStore, reopenRepo *mockReopenRepo, caseRepo *mockCaseRepo,
		assignmentRepo *mockAssignmentRepo, subRepo *mockSubmissionRepo) *ApproveReopenHandler {
		engine := services.NewEngine(store, newQuietOutbox(), passthroughUoW{}, nil)
		return NewApproveReopenHandler(reopenRepo, caseRepo, assignmentRepo, subRepo, engine,
			audit.NoopRecorder{}, cache.NoopCaseCache{}, passthroughUoW{})
	}

	t.Run("approval reopens the case and reassigns the requester", func(t *testing.T) {
		store := new(mockStore)
		reopenRepo := new(mockReopenRepo)
		caseRepo := new(mockCaseRepo)
		assignmentRepo := new(mockAssignmentRepo)
		subRepo := new(mockSubmissionRepo)
		handler := newHandler(store, reopenRepo, caseRepo, assignmentRepo, subRepo)

		req := pendingRequest(caseID, requester)
		reopenRepo.On("FindByID", mock.Anything, req.ID()).Return(req, nil)
		subRepo.On("FindByCase", mock.Anything, caseID).
			Return([]*courtDomain.Submission{courtSubmission(caseID, courtID)}, nil)

		store.On("CaseExists", mock.Anything, caseID).Return(true, nil)
		store.On("CurrentState", mock.Anything, caseID).Return(lifecycle.StateArchived, nil)
		store.On("ActiveAssignee", mock.Anything, caseID).Return(uuid.Nil, nil)
		store.On("SwapState", mock.Anything, caseID, lifecycle.StateArchived, lifecycle.StateUnderInvestigation).
			Return(lifecycle.StateUnderInvestigation, true, nil)
		store.On("AppendHistory", mock.Anything, mock.MatchedBy(func(e lifecycle.HistoryEntry) bool {
			return e.FromState == lifecycle.StateArchived &&
				e.ToState == lifecycle.StateUnderInvestigation &&
				e.ChangeReason == "evidence warrants reinvestigation"
		})).Return(nil)

		reopenRepo.On("Save", mock.Anything, mock.MatchedBy(func(r *reopenDomain.Request) bool {
			return r.Status() == reopenDomain.StatusApproved
		})).Return(nil)

		c := casefile.RehydrateCase(sharedDomain.NewBaseEntityWithID(caseID), 3, uuid.New(), "CASE/FIR/2025/0007/2025", true, "s3://casetrack/closures/7.pdf")
		caseRepo.On("FindByID", mock.Anything, caseID).Return(c, nil)
		caseRepo.On("Save", mock.Anything, mock.MatchedBy(func(c *casefile.Case) bool {
			return !c.IsArchived()
		})).Return(nil)

		assignmentRepo.On("CloseActive", mock.Anything, caseID, mock.Anything).Return(int64(0), nil)
		assignmentRepo.On("Save", mock.Anything, mock.MatchedBy(func(a *casefile.Assignment) bool {
			return a.AssignedTo() == requester && a.IsActive()
		})).Return(nil)

		result, err := handler.Handle(context.Background(), ApproveReopenCommand{
			RequestID: req.ID(),
			Actor:     judge,
			JudgeNote: "evidence warrants reinvestigation",
		})

		require.NoError(t, err)
		assert.Equal(t, lifecycle.StateUnderInvestigation, result.State)
		assert.Equal(t, caseID, result.CaseID)
		assignmentRepo.AssertExpectations(t)
		reopenRepo.AssertExpectations(t)
		caseRepo.AssertExpectations(t)
	})

	t.Run("already decided request is rejected", func(t *testing.T) {
		store := new(mockStore)
		reopenRepo := new(mockReopenRepo)
		handler := newHandler(store, reopenRepo, new(mockCaseRepo), new(mockAssignmentRepo), new(mockSubmissionRepo))

		decided := reopenDomain.RehydrateRequest(
			sharedDomain.NewBaseEntity(), caseID, requester,
			"new forensic evidence surfaced",
			reopenDomain.StatusRejected, "insufficient grounds", judge.ID, nil,
		)
		reopenRepo.On("FindByID", mock.Anything, decided.ID()).Return(decided, nil)

		_, err := handler.Handle(context.Background(), ApproveReopenCommand{RequestID: decided.ID(), Actor: judge})

		assert.ErrorIs(t, err, reopenDomain.ErrRequestDecided)
		store.AssertNotCalled(t, "SwapState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("judge of another court may not decide", func(t *testing.T) {
		store := new(mockStore)
		reopenRepo := new(mockReopenRepo)
		subRepo := new(mockSubmissionRepo)
		handler := newHandler(store, reopenRepo, new(mockCaseRepo), new(mockAssignmentRepo), subRepo)

		req := pendingRequest(caseID, requester)
		reopenRepo.On("FindByID", mock.Anything, req.ID()).Return(req, nil)
		subRepo.On("FindByCase", mock.Anything, caseID).
			Return([]*courtDomain.Submission{courtSubmission(caseID, uuid.New())}, nil)

		_, err := handler.Handle(context.Background(), ApproveReopenCommand{RequestID: req.ID(), Actor: judge})

		assert.True(t, lifecycle.IsKind(err, lifecycle.KindUnauthorized))
		store.AssertNotCalled(t, "SwapState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRejectReopenHandler_Handle(t *testing.T) {
	caseID := uuid.New()
	courtID := uuid.New()
	judge := lifecycle.Actor{ID: uuid.New(), Role: lifecycle.RoleJudge, OrganizationID: courtID}

	t.Run("rejection settles the request without touching case state", func(t *testing.T) {
		reopenRepo := new(mockReopenRepo)
		subRepo := new(mockSubmissionRepo)
		handler := NewRejectReopenHandler(reopenRepo, subRepo, audit.NoopRecorder{}, passthroughUoW{})

		req := pendingRequest(caseID, uuid.New())
		reopenRepo.On("FindByID", mock.Anything, req.ID()).Return(req, nil)
		subRepo.On("FindByCase", mock.Anything, caseID).
			Return([]*courtDomain.Submission{courtSubmission(caseID, courtID)}, nil)
		reopenRepo.On("Save", mock.Anything, mock.MatchedBy(func(r *reopenDomain.Request) bool {
			return r.Status() == reopenDomain.StatusRejected && r.JudgeNote() == "insufficient grounds"
		})).Return(nil)

		err := handler.Handle(context.Background(), RejectReopenCommand{
			RequestID: req.ID(),
			Actor:     judge,
			JudgeNote: "insufficient grounds",
		})

		require.NoError(t, err)
		reopenRepo.AssertExpectations(t)
	})

	t.Run("rejection requires a note", func(t *testing.T) {
		reopenRepo := new(mockReopenRepo)
		handler := NewRejectReopenHandler(reopenRepo, new(mockSubmissionRepo), audit.NoopRecorder{}, passthroughUoW{})

		err := handler.Handle(context.Background(), RejectReopenCommand{RequestID: uuid.New(), Actor: judge})

		assert.True(t, lifecycle.IsKind(err, lifecycle.KindPreconditionFailed))
		reopenRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("only a judge may reject", func(t *testing.T) {
		reopenRepo := new(mockReopenRepo)
		handler := NewRejectReopenHandler(reopenRepo, new(mockSubmissionRepo), audit.NoopRecorder{}, passthroughUoW{})

		err := handler.Handle(context.Background(), RejectReopenCommand{
			RequestID: uuid.New(),
			Actor:     lifecycle.Actor{ID: uuid.New(), Role: lifecycle.RoleSHO},
			JudgeNote: "not yours to ask",
		})

		assert.True(t, lifecycle.IsKind(err, lifecycle.KindUnauthorized))
	})
}

// newQuietOutbox returns an outbox mock that accepts every Save.
func newQuietOutbox() *mockOutboxRepo {
	m := new(mockOutboxRepo)
	m.On("Save", mock.Anything, mock.Anything).Return(nil)
	return m
}
