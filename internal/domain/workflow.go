package domain

// Action names a workflow transition.
type Action string

const (
	ActionSubmit   Action = "submit"
	ActionWithdraw Action = "withdraw"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionResubmit Action = "resubmit"
)

// ActorKind tells who may perform a transition.
type ActorKind string

const (
	ActorOwner ActorKind = "owner"
	ActorAdmin ActorKind = "admin"
)

// Transition is one row of the product workflow table.
type Transition struct {
	From             WorkflowState
	Action           Action
	To               WorkflowState
	Actor            ActorKind
	RequiresFeedback bool
}

// transitions is the only definition of the product lifecycle.
var transitions = []Transition{
	{From: StateDraft, Action: ActionSubmit, To: StatePendingReview, Actor: ActorOwner},
	{From: StatePendingReview, Action: ActionWithdraw, To: StateDraft, Actor: ActorOwner},
	{From: StatePendingReview, Action: ActionApprove, To: StatePublished, Actor: ActorAdmin},
	{From: StatePendingReview, Action: ActionReject, To: StateNeedsRevision, Actor: ActorAdmin, RequiresFeedback: true},
	{From: StateNeedsRevision, Action: ActionResubmit, To: StatePendingReview, Actor: ActorOwner},
}

// FindTransition looks up the transition moving from into to.
func FindTransition(from, to WorkflowState) (Transition, bool) {
	for _, t := range transitions {
		if t.From == from && t.To == to {
			return t, true
		}
	}
	return Transition{}, false
}

// ActorKindForTarget returns who may move a product into target.
// Every transition into a given state shares the same actor kind.
func ActorKindForTarget(target WorkflowState) (ActorKind, bool) {
	for _, t := range transitions {
		if t.To == target {
			return t.Actor, true
		}
	}
	return "", false
}

// ActorKindFor maps an active role to the workflow actor kind it acts as.
func ActorKindFor(role Role) (ActorKind, bool) {
	switch {
	case role.IsAdmin():
		return ActorAdmin, true
	case role == RoleSupplier:
		return ActorOwner, true
	default:
		return "", false
	}
}
