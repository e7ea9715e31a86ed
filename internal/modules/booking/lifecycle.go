// README: Booking lifecycle: transition table, guards and the pure Apply function.
package booking

import (
	"fmt"

	"vtc/internal/modules/role"
	"vtc/internal/types"
)

// Trigger is a lifecycle event requested by an actor.
type Trigger string

const (
	TriggerAssign   Trigger = "assign"
	TriggerStart    Trigger = "start"
	TriggerComplete Trigger = "complete"
	TriggerCancel   Trigger = "cancel"
)

// AllowedTransitions represents the booking state flow as code. Anything not
// listed is rejected.
var AllowedTransitions = map[Status]map[Trigger]Status{
	StatusConfirmed: {
		TriggerAssign: StatusAssigned,
		TriggerCancel: StatusCancelled,
	},
	StatusAssigned: {
		TriggerStart:  StatusInProgress,
		TriggerCancel: StatusCancelled,
	},
	StatusInProgress: {
		TriggerComplete: StatusCompleted,
	},
}

// Guard names carried by rejections.
var (
	ErrTerminalState     = types.GuardViolation{Guard: "terminal state"}
	ErrIllegalTransition = types.GuardViolation{Guard: "illegal transition"}
	ErrDriverInactive    = types.GuardViolation{Guard: "driver inactive"}
	ErrNotAssignedDriver = types.GuardViolation{Guard: "actor is not the assigned driver or admin"}
	ErrNotRequester      = types.GuardViolation{Guard: "actor is not the requester or admin"}
)

// Transition is everything the guards need to judge one trigger.
type Transition struct {
	Trigger        Trigger
	Actor          role.Actor
	RequesterID    types.ID
	AssignedDriver *types.ID
	// DriverActive is only consulted for TriggerAssign.
	DriverActive bool
}

// CanTransition reports whether the table has an edge for trigger out of
// current. Guards are not evaluated.
func CanTransition(current Status, trigger Trigger) bool {
	_, ok := AllowedTransitions[current][trigger]
	return ok
}

// Apply returns the status reached by t from current, or a GuardViolation
// naming the guard that rejected it. It never mutates anything.
func Apply(current Status, t Transition) (Status, error) {
	if current.IsTerminal() {
		return current, withDetail(ErrTerminalState, fmt.Sprintf("%s accepts no %s", current, t.Trigger))
	}
	next, ok := AllowedTransitions[current][t.Trigger]
	if !ok {
		return current, withDetail(ErrIllegalTransition, fmt.Sprintf("cannot %s from %s", t.Trigger, current))
	}

	switch t.Trigger {
	case TriggerAssign:
		if !t.DriverActive {
			return current, ErrDriverInactive
		}
	case TriggerStart, TriggerComplete:
		if !t.Actor.IsAdmin() && (t.AssignedDriver == nil || *t.AssignedDriver != t.Actor.ID) {
			return current, ErrNotAssignedDriver
		}
	case TriggerCancel:
		if !t.Actor.IsAdmin() && t.Actor.ID != t.RequesterID {
			return current, ErrNotRequester
		}
	}
	return next, nil
}

// TransitionFor builds the guard input for trigger on b.
func (b *Booking) TransitionFor(trigger Trigger, actor role.Actor) Transition {
	return Transition{
		Trigger:        trigger,
		Actor:          actor,
		RequesterID:    b.RequesterID,
		AssignedDriver: b.DriverID,
	}
}

func eventName(to Status) string {
	switch to {
	case StatusConfirmed:
		return EventBookingConfirmed
	case StatusAssigned:
		return EventBookingAssigned
	case StatusInProgress:
		return EventBookingStarted
	case StatusCompleted:
		return EventBookingCompleted
	case StatusCancelled:
		return EventBookingCancelled
	default:
		return "booking." + string(to)
	}
}

func withDetail(g types.GuardViolation, detail string) types.GuardViolation {
	g.Detail = detail
	return g
}
