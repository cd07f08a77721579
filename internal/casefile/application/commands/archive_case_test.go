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

// fakeGenerator returns a fixed URL or error.
type fakeGenerator struct {
	url   string
	err   error
	calls int
}

func (g *fakeGenerator) GenerateClosureReport(ctx context.Context, caseID uuid.UUID) (string, error) {
	g.calls++
	return g.url, g.err
}

// passthroughUoW hands the context through unchanged.
type passthroughUoW struct{}

func (passthroughUoW) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (passthroughUoW) Commit(ctx context.Context) error                   { return nil }
func (passthroughUoW) Rollback(ctx context.Context) error                 { return nil }

func TestArchiveCaseHandler_Handle(t *testing.T) {
	caseID := uuid.New()
	judge := lifecycle.Actor{ID: uuid.New(), Role: lifecycle.RoleJudge, OrganizationID: uuid.New()}

	newHandler := func(store *mockStore, outboxRepo *mockOutboxRepo, caseRepo *mockCaseRepo, gen *fakeGenerator) *ArchiveCaseHandler {
		engine := services.NewEngine(store, outboxRepo, passthroughUoW{}, nil)
		return NewArchiveCaseHandler(caseRepo, gen, engine, audit.NoopRecorder{}, cache.NoopCaseCache{}, passthroughUoW{})
	}

	t.Run("archives with the generated artifact", func(t *testing.T) {
		store := new(mockStore)
		outboxRepo := new(mockOutboxRepo)
		caseRepo := new(mockCaseRepo)
		gen := &fakeGenerator{url: "s3://casetrack/closures/final.pdf"}
		handler := newHandler(store, outboxRepo, caseRepo, gen)

		store.On("CaseExists", mock.Anything, caseID).Return(true, nil)
		store.On("CurrentState", mock.Anything, caseID).Return(lifecycle.StateDisposed, nil)
		store.On("ActiveAssignee", mock.Anything, caseID).Return(uuid.Nil, nil)
		store.On("SwapState", mock.Anything, caseID, lifecycle.StateDisposed, lifecycle.StateArchived).
			Return(lifecycle.StateArchived, true, nil)
		store.On("AppendHistory", mock.Anything, mock.MatchedBy(func(e lifecycle.HistoryEntry) bool {
			return e.FromState == lifecycle.StateDisposed && e.ToState == lifecycle.StateArchived && e.ChangedBy == judge.ID
		})).Return(nil)
		outboxRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		c := casefile.RehydrateCase(sharedDomain.NewBaseEntityWithID(caseID), 1, uuid.New(), "CASE/FIR/2026/0001/2026", false, "")
		caseRepo.On("FindByID", mock.Anything, caseID).Return(c, nil)
		caseRepo.On("Save", mock.Anything, mock.MatchedBy(func(c *casefile.Case) bool {
			return c.IsArchived() && c.ClosureReportURL() == "s3://casetrack/closures/final.pdf"
		})).Return(nil)

		result, err := handler.Handle(context.Background(), ArchiveCaseCommand{
			CaseID:            caseID,
			FromStateExpected: lifecycle.StateDisposed,
			Actor:             judge,
		})

		require.NoError(t, err)
		assert.Equal(t, lifecycle.StateArchived, result.State)
		assert.Equal(t, "s3://casetrack/closures/final.pdf", result.ClosureReportURL)
		caseRepo.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("generation failure aborts before any transition", func(t *testing.T) {
		store := new(mockStore)
		caseRepo := new(mockCaseRepo)
		gen := &fakeGenerator{err: assert.AnError}
		handler := newHandler(store, new(mockOutboxRepo), caseRepo, gen)

		_, err := handler.Handle(context.Background(), ArchiveCaseCommand{
			CaseID:            caseID,
			FromStateExpected: lifecycle.StateDisposed,
			Actor:             judge,
		})

		require.Error(t, err)
		assert.True(t, lifecycle.IsKind(err, lifecycle.KindDownstreamFailure))
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 1, gen.calls)
		store.AssertNotCalled(t, "CaseExists", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "SwapState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		caseRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("engine rejection does not archive the aggregate", func(t *testing.T) {
		store := new(mockStore)
		caseRepo := new(mockCaseRepo)
		gen := &fakeGenerator{url: "s3://casetrack/closures/final.pdf"}
		handler := newHandler(store, new(mockOutboxRepo), caseRepo, gen)

		store.On("CaseExists", mock.Anything, caseID).Return(true, nil)
		store.On("CurrentState", mock.Anything, caseID).Return(lifecycle.StateTrialOngoing, nil)

		_, err := handler.Handle(context.Background(), ArchiveCaseCommand{
			CaseID:            caseID,
			FromStateExpected: lifecycle.StateDisposed,
			Actor:             judge,
		})

		require.True(t, lifecycle.IsKind(err, lifecycle.KindStaleState))
		caseRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
