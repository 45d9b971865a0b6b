// Package negotiation owns the task lifecycle: who may move a task between
// proposed, accepted, declined and done, and the re-proposal rule for edits to
// declined tasks. Every write path that can change state goes through Apply so
// the rules cannot be bypassed by a caller.
package negotiation

import (
	"github.com/google/uuid"

	"github.com/homesync/homesync-backend/internal/apierr"
	"github.com/homesync/homesync-backend/internal/types"
)

func ValidState(s string) bool {
	switch s {
	case types.StateProposed, types.StateAccepted, types.StateDeclined, types.StateDone:
		return true
	}
	return false
}

// Transition checks one explicit state change against the transition table and
// its actor constraints, and mutates task.State on success. A member can never
// accept or decline their own proposal; only the proposer re-opens a declined
// task.
func Transition(task *types.Task, to string, actor uuid.UUID) error {
	if !ValidState(to) {
		return apierr.Validation("unknown task state %q", to)
	}
	from := task.State
	if from == to {
		return nil
	}
	switch {
	case from == types.StateProposed && (to == types.StateAccepted || to == types.StateDeclined):
		if actor == task.ProposedBy {
			return apierr.Forbidden("proposer cannot accept or decline their own task")
		}
	case from == types.StateDeclined && to == types.StateProposed:
		if actor != task.ProposedBy {
			return apierr.Forbidden("only the proposer can re-propose a declined task")
		}
	case from == types.StateAccepted && to == types.StateDone:
		// any member
	default:
		return apierr.Forbidden("illegal transition %s -> %s", from, to)
	}
	task.State = to
	return nil
}

// Apply is the patch entry point. titleChanged reports whether the patch
// rewrites the title; requestedState is the explicit state change, if any.
// Editing the title of a declined task is a counter-proposal: it implicitly
// transitions declined -> proposed, subject to the same actor constraint as an
// explicit re-proposal.
func Apply(task *types.Task, titleChanged bool, requestedState *string, actor uuid.UUID) error {
	if titleChanged && task.State == types.StateDeclined {
		if err := Transition(task, types.StateProposed, actor); err != nil {
			return err
		}
	}
	if requestedState != nil {
		if err := Transition(task, *requestedState, actor); err != nil {
			return err
		}
	}
	return nil
}

// CanDelete enforces that only the proposer removes a task.
func CanDelete(task *types.Task, actor uuid.UUID) error {
	if actor != task.ProposedBy {
		return apierr.Forbidden("only the proposer can delete a task")
	}
	return nil
}
