package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
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

// fakeUnitOfWork passes the context through and records the outcome.
type fakeUnitOfWork struct {
	beginErr   error
	commitErr  error
	commits    int
	rollbacks  int
	beginCalls int
}

func (f *fakeUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	f.beginCalls++
	return ctx, f.beginErr
}

func (f *fakeUnitOfWork) Commit(ctx context.Context) error {
	f.commits++
	return f.commitErr
}

func (f *fakeUnitOfWork) Rollback(ctx context.Context) error {
	f.rollbacks++
	return nil
}

func newTestEngine(store *mockStore, repo *mockOutboxRepo, uow *fakeUnitOfWork) *Engine {
	return NewEngine(store, repo, uow, nil)
}

func TestEngine_AttemptTransition_Success(t *testing.T) {
	store := new(mockStore)
	repo := new(mockOutboxRepo)
	uow := &fakeUnitOfWork{}

	caseID := uuid.New()
	sho := lifecycle.Actor{ID: uuid.New(), Role: lifecycle.RoleSHO}
	changedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	engine := newTestEngine(store, repo, uow).WithClock(func() time.Time { return changedAt })

	store.On("CaseExists", mock.Anything, caseID).Return(true, nil)
	store.On("CurrentState", mock.Anything, caseID).Return(lifecycle.StateFIRRegistered, nil)
	store.On("ActiveAssignee", mock.Anything, caseID).Return(uuid.Nil, nil)
	store.On("SwapState", mock.Anything, caseID, lifecycle.StateFIRRegistered, lifecycle.StateCaseAssigned).
		Return(lifecycle.StateCaseAssigned, true, nil)
	store.On("AppendHistory", mock.Anything, lifecycle.HistoryEntry{
		CaseID:       caseID,
		FromState:    lifecycle.StateFIRRegistered,
		ToState:      lifecycle.StateCaseAssigned,
		ChangedBy:    sho.ID,
		ChangeReason: "assigning to IO Sharma",
		ChangedAt:    changedAt,
	}).Return(nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(msg *outbox.Message) bool {
		return msg.AggregateID == caseID && msg.RoutingKey == "casefile.case.transitioned"
	})).Return(nil)

	state, err := engine.AttemptTransition(context.Background(), lifecycle.Request{
		CaseID:            caseID,
		FromStateExpected: lifecycle.StateFIRRegistered,
		ToState:           lifecycle.StateCaseAssigned,
		Actor:             sho,
		Reason:            "assigning to IO Sharma",
	})

	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateCaseAssigned, state)
	assert.Equal(t, 1, uow.commits)
	assert.Equal(t, 0, uow.rollbacks)

	store.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestEngine_AttemptTransition_CaseNotFound(t *testing.T) {
	store := new(mockStore)
	repo := new(mockOutboxRepo)
	uow := &fakeUnitOfWork{}
	engine := newTestEngine(store, repo, uow)

	caseID := uuid.New()
	store.On("CaseExists", mock.Anything, caseID).Return(false, nil)

	_, err := engine.AttemptTransition(context.Background(), lifecycle.Request{
		CaseID:            caseID,
		FromStateExpected: lifecycle.StateFIRRegistered,
		ToState:           lifecycle.StateCaseAssigned,
		Actor:             lifecycle.Actor{ID: uuid.New(), Role: lifecycle.RoleSHO},
	})

	assert.True(t, lifecycle.IsKind(err, lifecycle.KindCaseNotFound))
	assert.Equal(t, 1, uow.rollbacks)
	assert.Equal(t, 0, uow.commits)
	store.AssertNotCalled(t, "SwapState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_AttemptTransition_StaleRead(t *testing.T) {
	store := new(mockStore)
	repo := new(mockOutboxRepo)
	uow := &fakeUnitOfWork{}
	engine := newTestEngine(store, repo, uow)

	caseID := uuid.New()
	store.On("CaseExists", mock.Anything, caseID).Return(true, nil)
	store.On("CurrentState", mock.Anything, caseID).Return(lifecycle.StateUnderInvestigation, nil)

	_, err := engine.AttemptTransition(context.Background(), lifecycle.Request{
		CaseID:            caseID,
		FromStateExpected: lifecycle.StateCaseAssigned,
		ToState:           lifecycle.StateUnderInvestigation,
		Actor:             lifecycle.Actor{ID: uuid.New(), Role: lifecycle.RoleSHO},
	})

	require.True(t, lifecycle.IsKind(err, lifecycle.KindStaleState))

	var le *lifecycle.Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, lifecycle.StateUnderInvestigation, le.ActualState)
	assert.Equal(t, 1, uow.rollbacks)
}

func TestEngine_AttemptTransition_SwapRace(t *testing.T) {
	store := new(mockStore)
	repo := new(mockOutboxRepo)
	uow := &fakeUnitOfWork{}
	engine := newTestEngine(store, repo, uow)

	caseID := uuid.New()
	sho := lifecycle.Actor{ID: uuid.New(), Role: lifecycle.RoleSHO}

	store.On("CaseExists", mock.Anything, caseID).Return(true, nil)
	store.On("CurrentState", mock.Anything, caseID).Return(lifecycle.StateFIRRegistered, nil)
	store.On("ActiveAssignee", mock.Anything, caseID).Return(uuid.Nil, nil)
	// A concurrent writer moved the case between our read and the swap.
	store.On("SwapState", mock.Anything, caseID, lifecycle.StateFIRRegistered, lifecycle.StateCaseAssigned).
		Return(lifecycle.StateCaseAssigned, false, nil)

	_, err := engine.AttemptTransition(context.Background(), lifecycle.Request{
		CaseID:            caseID,
		FromStateExpected: lifecycle.StateFIRRegistered,
		ToState:           lifecycle.StateCaseAssigned,
		Actor:             sho,
	})

	require.True(t, lifecycle.IsKind(err, lifecycle.KindStaleState))

	var le *lifecycle.Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, lifecycle.StateCaseAssigned, le.ActualState)
	assert.Equal(t, 1, uow.rollbacks)
	store.AssertNotCalled(t, "AppendHistory", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestEngine_AttemptTransition_Unauthorized(t *testing.T) {
	store := new(mockStore)
	repo := new(mockOutboxRepo)
	uow := &fakeUnitOfWork{}
	engine := newTestEngine(store, repo, uow)

	caseID := uuid.New()
	assignee := uuid.New()

	store.On("CaseExists", mock.Anything, caseID).Return(true, nil)
	store.On("CurrentState", mock.Anything, caseID).Return(lifecycle.StateUnderInvestigation, nil)
	store.On("ActiveAssignee", mock.Anything, caseID).Return(assignee, nil)

	_, err := engine.AttemptTransition(context.Background(), lifecycle.Request{
		CaseID:            caseID,
		FromStateExpected: lifecycle.StateUnderInvestigation,
		ToState:           lifecycle.StateInvestigationCompleted,
		Actor:             lifecycle.Actor{ID: uuid.New(), Role: lifecycle.RolePolice},
	})

	assert.True(t, lifecycle.IsKind(err, lifecycle.KindUnauthorized))
	assert.Equal(t, 1, uow.rollbacks)
	store.AssertNotCalled(t, "SwapState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_AttemptTransition_OutboxFailureRollsBack(t *testing.T) {
	store := new(mockStore)
	repo := new(mockOutboxRepo)
	uow := &fakeUnitOfWork{}
	engine := newTestEngine(store, repo, uow)

	caseID := uuid.New()
	sho := lifecycle.Actor{ID: uuid.New(), Role: lifecycle.RoleSHO}

	store.On("CaseExists", mock.Anything, caseID).Return(true, nil)
	store.On("CurrentState", mock.Anything, caseID).Return(lifecycle.StateFIRRegistered, nil)
	store.On("ActiveAssignee", mock.Anything, caseID).Return(uuid.Nil, nil)
	store.On("SwapState", mock.Anything, caseID, lifecycle.StateFIRRegistered, lifecycle.StateCaseAssigned).
		Return(lifecycle.StateCaseAssigned, true, nil)
	store.On("AppendHistory", mock.Anything, mock.Anything).Return(nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := engine.AttemptTransition(context.Background(), lifecycle.Request{
		CaseID:            caseID,
		FromStateExpected: lifecycle.StateFIRRegistered,
		ToState:           lifecycle.StateCaseAssigned,
		Actor:             sho,
	})

	require.True(t, lifecycle.IsKind(err, lifecycle.KindDownstreamFailure))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, uow.rollbacks)
	assert.Equal(t, 0, uow.commits)
}

func TestEngine_AttemptTransition_CommitFailure(t *testing.T) {
	store := new(mockStore)
	repo := new(mockOutboxRepo)
	uow := &fakeUnitOfWork{commitErr: assert.AnError}
	engine := newTestEngine(store, repo, uow)

	caseID := uuid.New()
	sho := lifecycle.Actor{ID: uuid.New(), Role: lifecycle.RoleSHO}

	store.On("CaseExists", mock.Anything, caseID).Return(true, nil)
	store.On("CurrentState", mock.Anything, caseID).Return(lifecycle.StateFIRRegistered, nil)
	store.On("ActiveAssignee", mock.Anything, caseID).Return(uuid.Nil, nil)
	store.On("SwapState", mock.Anything, caseID, lifecycle.StateFIRRegistered, lifecycle.StateCaseAssigned).
		Return(lifecycle.StateCaseAssigned, true, nil)
	store.On("AppendHistory", mock.Anything, mock.Anything).Return(nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	_, err := engine.AttemptTransition(context.Background(), lifecycle.Request{
		CaseID:            caseID,
		FromStateExpected: lifecycle.StateFIRRegistered,
		ToState:           lifecycle.StateCaseAssigned,
		Actor:             sho,
	})

	assert.True(t, lifecycle.IsKind(err, lifecycle.KindDownstreamFailure))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestEngine_AttemptTransition_BeginFailure(t *testing.T) {
	store := new(mockStore)
	repo := new(mockOutboxRepo)
	uow := &fakeUnitOfWork{beginErr: assert.AnError}
	engine := newTestEngine(store, repo, uow)

	_, err := engine.AttemptTransition(context.Background(), lifecycle.Request{
		CaseID:            uuid.New(),
		FromStateExpected: lifecycle.StateFIRRegistered,
		ToState:           lifecycle.StateCaseAssigned,
		Actor:             lifecycle.Actor{ID: uuid.New(), Role: lifecycle.RoleSHO},
	})

	assert.True(t, lifecycle.IsKind(err, lifecycle.KindDownstreamFailure))
	store.AssertNotCalled(t, "CaseExists", mock.Anything, mock.Anything)
}

func TestEngine_AllowedTransitions(t *testing.T) {
	t.Run("returns current state and reachable targets", func(t *testing.T) {
		store := new(mockStore)
		engine := newTestEngine(store, new(mockOutboxRepo), &fakeUnitOfWork{})

		caseID := uuid.New()
		judge := lifecycle.Actor{ID: uuid.New(), Role: lifecycle.RoleJudge}

		store.On("CaseExists", mock.Anything, caseID).Return(true, nil)
		store.On("CurrentState", mock.Anything, caseID).Return(lifecycle.StateCourtAccepted, nil)
		store.On("ActiveAssignee", mock.Anything, caseID).Return(uuid.Nil, nil)

		current, allowed, err := engine.AllowedTransitions(context.Background(), caseID, judge)

		require.NoError(t, err)
		assert.Equal(t, lifecycle.StateCourtAccepted, current)
		assert.Equal(t, []lifecycle.State{
			lifecycle.StateArchived,
			lifecycle.StateDisposed,
			lifecycle.StateTrialOngoing,
		}, allowed)
	})

	t.Run("unknown case", func(t *testing.T) {
		store := new(mockStore)
		engine := newTestEngine(store, new(mockOutboxRepo), &fakeUnitOfWork{})

		caseID := uuid.New()
		store.On("CaseExists", mock.Anything, caseID).Return(false, nil)

		_, _, err := engine.AllowedTransitions(context.Background(), caseID, lifecycle.Actor{Role: lifecycle.RoleSHO})
		assert.True(t, lifecycle.IsKind(err, lifecycle.KindCaseNotFound))
	})
}

// memStore is an in-memory lifecycle.Store for scenario tests.
type memStore struct {
	states    map[uuid.UUID]lifecycle.State
	assignees map[uuid.UUID]uuid.UUID
	history   []lifecycle.HistoryEntry
}

func newMemStore() *memStore {
	return &memStore{
		states:    make(map[uuid.UUID]lifecycle.State),
		assignees: make(map[uuid.UUID]uuid.UUID),
	}
}

func (s *memStore) CaseExists(ctx context.Context, caseID uuid.UUID) (bool, error) {
	_, ok := s.states[caseID]
	return ok, nil
}

func (s *memStore) CurrentState(ctx context.Context, caseID uuid.UUID) (lifecycle.State, error) {
	return s.states[caseID], nil
}

func (s *memStore) ActiveAssignee(ctx context.Context, caseID uuid.UUID) (uuid.UUID, error) {
	return s.assignees[caseID], nil
}

func (s *memStore) SwapState(ctx context.Context, caseID uuid.UUID, expected, next lifecycle.State) (lifecycle.State, bool, error) {
	actual := s.states[caseID]
	if actual != expected {
		return actual, false, nil
	}
	s.states[caseID] = next
	return next, true, nil
}

func (s *memStore) AppendHistory(ctx context.Context, entry lifecycle.HistoryEntry) error {
	s.history = append(s.history, entry)
	return nil
}

// memOutbox collects staged messages.
type memOutbox struct {
	mockOutboxRepo
	saved []*outbox.Message
}

func (m *memOutbox) Save(ctx context.Context, msg *outbox.Message) error {
	m.saved = append(m.saved, msg)
	return nil
}

// TestEngine_FullLifecycleScenario walks one case from registration to court
// acceptance and checks the resulting history chain: each row's FromState is
// the previous row's ToState, and one outbox message is staged per accepted
// transition.
func TestEngine_FullLifecycleScenario(t *testing.T) {
	caseID := uuid.New()
	officer := lifecycle.Actor{ID: uuid.New(), Role: lifecycle.RolePolice}
	sho := lifecycle.Actor{ID: uuid.New(), Role: lifecycle.RoleSHO}
	clerk := lifecycle.Actor{ID: uuid.New(), Role: lifecycle.RoleCourtClerk}
	courtID := uuid.New()

	store := newMemStore()
	store.states[caseID] = lifecycle.StateFIRRegistered

	repo := new(memOutbox)
	engine := NewEngine(store, repo, &fakeUnitOfWork{}, nil)

	steps := []struct {
		req lifecycle.Request
	}{
		{lifecycle.Request{CaseID: caseID, FromStateExpected: lifecycle.StateFIRRegistered, ToState: lifecycle.StateCaseAssigned, Actor: sho}},
		{lifecycle.Request{CaseID: caseID, FromStateExpected: lifecycle.StateCaseAssigned, ToState: lifecycle.StateUnderInvestigation, Actor: officer}},
		{lifecycle.Request{CaseID: caseID, FromStateExpected: lifecycle.StateUnderInvestigation, ToState: lifecycle.StateInvestigationCompleted, Actor: officer}},
		{lifecycle.Request{CaseID: caseID, FromStateExpected: lifecycle.StateInvestigationCompleted, ToState: lifecycle.StateChargeSheetPrepared, Actor: sho}},
		{lifecycle.Request{CaseID: caseID, FromStateExpected: lifecycle.StateChargeSheetPrepared, ToState: lifecycle.StateSubmittedToCourt, Actor: sho, CourtID: courtID}},
		{lifecycle.Request{CaseID: caseID, FromStateExpected: lifecycle.StateSubmittedToCourt, ToState: lifecycle.StateCourtAccepted, Actor: clerk}},
	}

	// The officer holds the assignment for the investigation edges.
	store.assignees[caseID] = officer.ID

	for _, step := range steps {
		state, err := engine.AttemptTransition(context.Background(), step.req)
		require.NoError(t, err, "%s -> %s", step.req.FromStateExpected, step.req.ToState)
		assert.Equal(t, step.req.ToState, state)
	}

	assert.Equal(t, lifecycle.StateCourtAccepted, store.states[caseID])

	require.Len(t, store.history, len(steps))
	for i, entry := range store.history {
		assert.Equal(t, steps[i].req.FromStateExpected, entry.FromState)
		assert.Equal(t, steps[i].req.ToState, entry.ToState)
		if i > 0 {
			assert.Equal(t, store.history[i-1].ToState, entry.FromState)
		}
	}

	assert.Len(t, repo.saved, len(steps))
	for _, msg := range repo.saved {
		assert.Equal(t, "casefile.case.transitioned", msg.RoutingKey)
		assert.Equal(t, caseID, msg.AggregateID)
	}

	// A replay of an already-applied step is rejected without new rows.
	_, err := engine.AttemptTransition(context.Background(), steps[len(steps)-1].req)
	assert.True(t, lifecycle.IsKind(err, lifecycle.KindStaleState))
	assert.Len(t, store.history, len(steps))
	assert.Len(t, repo.saved, len(steps))
}
