package production

import (
	"context"

	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
)

// Transition describes one order status change
type Transition struct {
	OrderID  string
	Target   Target
	Priority int
	From     OrderStatus
	To       OrderStatus
	Frame    int
	Unit     shared.UnitID
	Reason   string
}

// TransitionObserver is notified after every order status change.
// Implementations must not call back into the scheduler.
type TransitionObserver interface {
	OnTransition(ctx context.Context, t Transition)
}

// TransitionObserverFunc adapts a function to TransitionObserver
type TransitionObserverFunc func(ctx context.Context, t Transition)

func (f TransitionObserverFunc) OnTransition(ctx context.Context, t Transition) {
	f(ctx, t)
}
