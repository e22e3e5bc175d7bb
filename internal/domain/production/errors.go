package production

import "fmt"

// ErrInvalidOrderTransition indicates an illegal order state transition
type ErrInvalidOrderTransition struct {
	OrderID     string
	From        OrderStatus
	To          OrderStatus
	Description string
}

func (e *ErrInvalidOrderTransition) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("invalid order transition for %s: %s -> %s: %s",
			e.OrderID, e.From, e.To, e.Description)
	}
	return fmt.Sprintf("invalid order transition for %s: %s -> %s",
		e.OrderID, e.From, e.To)
}

// ErrInvalidTarget indicates a malformed order target
type ErrInvalidTarget struct {
	Target Target
	Reason string
}

func (e *ErrInvalidTarget) Error() string {
	return fmt.Sprintf("invalid target %s: %s", e.Target, e.Reason)
}

// ErrOrderNotFound indicates an order id is not in the queue
type ErrOrderNotFound struct {
	OrderID string
}

func (e *ErrOrderNotFound) Error() string {
	return fmt.Sprintf("order not found: %s", e.OrderID)
}

// ErrCircularRequirement indicates the tech tree requires a type through itself
type ErrCircularRequirement struct {
	Type  string
	Chain []string
}

func (e *ErrCircularRequirement) Error() string {
	return fmt.Sprintf("circular requirement detected for %s: chain %v", e.Type, e.Chain)
}
