package lifecycle

import (
	"sort"

	"github.com/google/uuid"
)

// Request describes a transition attempt. FromStateExpected is the caller's
// belief about the current state and doubles as the optimistic-concurrency
// check. The auxiliary fields are consumed by edge-specific preconditions.
type Request struct {
	CaseID            uuid.UUID
	FromStateExpected State
	ToState           State
	Actor             Actor
	Reason            string

	CourtID               uuid.UUID
	AcknowledgementNumber string
	ArtifactURL           string
	ReopenRequestID       uuid.UUID
}

// Snapshot is the per-case context the guards evaluate against.
type Snapshot struct {
	Current State
	// AssigneeID is the holder of the active assignment; uuid.Nil when none.
	AssigneeID uuid.UUID
}

type edge struct {
	from State
	to   State
}

type rule struct {
	roles map[Role]struct{}

	// assigneeOnly requires the actor to hold the active assignment.
	assigneeOnly bool
	// assigneeOnlyForPolice applies the assignment check only to POLICE
	// actors (an SHO may perform the edge for any officer).
	assigneeOnlyForPolice bool

	needCourt     bool
	needReason    bool
	needArtifact  bool
	needReopenRef bool
}

func roles(rs ...Role) map[Role]struct{} {
	m := make(map[Role]struct{}, len(rs))
	for _, r := range rs {
		m[r] = struct{}{}
	}
	return m
}

// guardTable is the single source of truth for permitted transitions.
// Edges not present are rejected unconditionally. APPEALED is kept in the
// state set for schema parity but has no inbound edge yet; appeals are
// recorded as court actions without a lifecycle move.
var guardTable = map[edge]rule{
	{StateFIRRegistered, StateCaseAssigned}: {roles: roles(RoleSHO)},

	// Reassignment keeps the case in CASE_ASSIGNED; assignment identity is a
	// separate entity and only the active-assignment swap changes.
	{StateCaseAssigned, StateCaseAssigned}: {roles: roles(RoleSHO)},
	{StateCaseAssigned, StateUnderInvestigation}: {
		roles:                 roles(RolePolice, RoleSHO),
		assigneeOnlyForPolice: true,
	},

	{StateUnderInvestigation, StateInvestigationCompleted}: {
		roles:        roles(RolePolice),
		assigneeOnly: true,
	},
	{StateUnderInvestigation, StateInvestigationPaused}: {
		roles:        roles(RolePolice),
		assigneeOnly: true,
	},
	{StateInvestigationPaused, StateUnderInvestigation}: {
		roles:        roles(RolePolice),
		assigneeOnly: true,
	},

	{StateInvestigationCompleted, StateChargeSheetPrepared}:   {roles: roles(RoleSHO)},
	{StateInvestigationCompleted, StateClosureReportPrepared}: {roles: roles(RoleSHO)},

	{StateChargeSheetPrepared, StateSubmittedToCourt}:   {roles: roles(RoleSHO), needCourt: true},
	{StateClosureReportPrepared, StateSubmittedToCourt}: {roles: roles(RoleSHO), needCourt: true},

	{StateSubmittedToCourt, StateCourtAccepted}:      {roles: roles(RoleCourtClerk)},
	{StateSubmittedToCourt, StateReturnedForDefects}: {roles: roles(RoleCourtClerk), needReason: true},

	{StateReturnedForDefects, StateResubmittedToCourt}: {roles: roles(RoleSHO), needCourt: true},

	{StateResubmittedToCourt, StateCourtAccepted}:      {roles: roles(RoleCourtClerk)},
	{StateResubmittedToCourt, StateReturnedForDefects}: {roles: roles(RoleCourtClerk), needReason: true},

	{StateCourtAccepted, StateTrialOngoing}: {roles: roles(RoleJudge)},
	{StateCourtAccepted, StateDisposed}:     {roles: roles(RoleJudge), needReason: true},

	{StateTrialOngoing, StateJudgmentReserved}: {roles: roles(RoleJudge)},
	{StateTrialOngoing, StateDisposed}:         {roles: roles(RoleJudge), needReason: true},

	{StateJudgmentReserved, StateDisposed}: {roles: roles(RoleJudge), needReason: true},

	// Judicial closure: the closure artifact must be generated before the
	// transition commits, so the artifact URL is required here.
	{StateCourtAccepted, StateArchived}:    {roles: roles(RoleJudge), needArtifact: true},
	{StateTrialOngoing, StateArchived}:     {roles: roles(RoleJudge), needArtifact: true},
	{StateJudgmentReserved, StateArchived}: {roles: roles(RoleJudge), needArtifact: true},
	{StateDisposed, StateArchived}:         {roles: roles(RoleJudge), needArtifact: true},

	// Only an approved reopen request moves a case out of ARCHIVED.
	{StateArchived, StateUnderInvestigation}: {
		roles:         roles(RoleJudge),
		needReason:    true,
		needReopenRef: true,
	},
}

// EdgeExists reports whether the guard table contains the transition.
func EdgeExists(from, to State) bool {
	_, ok := guardTable[edge{from, to}]
	return ok
}

func (r rule) roleAllowed(role Role) bool {
	_, ok := r.roles[role]
	return ok
}

func (r rule) identityAllowed(actor Actor, snap Snapshot) bool {
	needsAssignment := r.assigneeOnly ||
		(r.assigneeOnlyForPolice && actor.Role == RolePolice)
	if !needsAssignment {
		return true
	}
	return snap.AssigneeID != uuid.Nil && snap.AssigneeID == actor.ID
}

// Decide evaluates guard steps 3-5 for a request: edge existence, role and
// identity authorization, then edge-specific preconditions. Existence and
// staleness (steps 1-2) are checked against the store by the engine.
// The first failing step wins.
func Decide(req Request, snap Snapshot) error {
	if !req.ToState.IsValid() {
		return NewInvalidEdge(snap.Current, req.ToState)
	}

	r, ok := guardTable[edge{snap.Current, req.ToState}]
	if !ok {
		return NewInvalidEdge(snap.Current, req.ToState)
	}

	if !r.roleAllowed(req.Actor.Role) {
		return NewUnauthorized("role " + req.Actor.Role.String() + " may not perform this transition")
	}
	if !r.identityAllowed(req.Actor, snap) {
		return NewUnauthorized("only the assigned investigating officer may perform this transition")
	}

	if r.needCourt && req.CourtID == uuid.Nil {
		return NewPreconditionFailed("target court id is required")
	}
	if r.needReason && req.Reason == "" {
		return NewPreconditionFailed("a reason is required for this transition")
	}
	if r.needArtifact && req.ArtifactURL == "" {
		return NewPreconditionFailed("closure report artifact is required before archiving")
	}
	if r.needReopenRef && req.ReopenRequestID == uuid.Nil {
		return NewPreconditionFailed("an approved reopen request is required to reopen an archived case")
	}

	return nil
}

// AllowedTransitions returns the target states the actor could move the case
// to from its current state, ignoring field preconditions (those depend on
// request payload, not on who is asking). This backs the read-side "which
// actions can the UI offer" query so it can never drift from the write side.
func AllowedTransitions(actor Actor, snap Snapshot) []State {
	var out []State
	for e, r := range guardTable {
		if e.from != snap.Current {
			continue
		}
		if !r.roleAllowed(actor.Role) || !r.identityAllowed(actor, snap) {
			continue
		}
		out = append(out, e.to)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
