package production

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	// StatusCommissioned - queued, waiting for its gates to pass
	StatusCommissioned OrderStatus = "COMMISSIONED"

	// StatusOrdered - handed to the dispatcher, waiting for the game to confirm the start
	StatusOrdered OrderStatus = "ORDERED"

	// StatusStarted - the game confirmed production is underway
	StatusStarted OrderStatus = "STARTED"

	// StatusFinished - produced; removed on the next tick
	StatusFinished OrderStatus = "FINISHED"

	// StatusAborted - interrupted or cancelled while in flight
	StatusAborted OrderStatus = "ABORTED"
)

// Reasons recorded on interruptions
const (
	ReasonCancelled         = "cancelled"
	ReasonUnitLost          = "started unit no longer exists"
	ReasonProducerDestroyed = "producer destroyed"
	ReasonDispatchFailed    = "dispatch failed"
)

// Order is one queued request to produce a unit, research a tech or reach an
// upgrade level. Target, priority and submission sequence never change after
// construction; only the status and the bound handles do.
type Order struct {
	id             string
	target         Target
	priority       int
	submittedAt    int64
	submittedFrame int
	status         OrderStatus
	startedUnit    shared.UnitID
	producer       shared.UnitID
	interruptions  int
	lastReason     string
}

// NewOrder creates a commissioned order. submittedAt must be unique per
// scheduler; it breaks priority ties in submission order.
func NewOrder(target Target, priority int, submittedAt int64, submittedFrame int) (*Order, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	return &Order{
		id:             uuid.New().String(),
		target:         target,
		priority:       priority,
		submittedAt:    submittedAt,
		submittedFrame: submittedFrame,
		status:         StatusCommissioned,
	}, nil
}

// Getters

func (o *Order) ID() string                  { return o.id }
func (o *Order) Target() Target              { return o.target }
func (o *Order) Kind() OrderKind             { return o.target.Kind }
func (o *Order) Priority() int               { return o.priority }
func (o *Order) SubmittedAt() int64          { return o.submittedAt }
func (o *Order) SubmittedFrame() int         { return o.submittedFrame }
func (o *Order) Status() OrderStatus         { return o.status }
func (o *Order) StartedUnit() shared.UnitID  { return o.startedUnit }
func (o *Order) Producer() shared.UnitID     { return o.producer }
func (o *Order) Interruptions() int          { return o.interruptions }
func (o *Order) LastReason() string          { return o.lastReason }
func (o *Order) IsStatus(s OrderStatus) bool { return o.status == s }
func (o *Order) InFlight() bool              { return o.status == StatusOrdered || o.status == StatusStarted }

// State transitions

// MarkOrdered transitions a commissioned order to ORDERED
func (o *Order) MarkOrdered() error {
	if o.status != StatusCommissioned {
		return &ErrInvalidOrderTransition{
			OrderID: o.id,
			From:    o.status,
			To:      StatusOrdered,
		}
	}
	o.status = StatusOrdered
	return nil
}

// BindProducer records which unit the dispatcher chose to carry out the order
func (o *Order) BindProducer(producer shared.UnitID) error {
	if o.status != StatusOrdered {
		return &ErrInvalidOrderTransition{
			OrderID:     o.id,
			From:        o.status,
			To:          o.status,
			Description: "producer can only be bound while ORDERED",
		}
	}
	o.producer = producer
	return nil
}

// MarkStarted confirms production began. unit is the unit being produced and
// is required for PRODUCE_UNIT orders; other kinds ignore it.
func (o *Order) MarkStarted(unit shared.UnitID) error {
	if o.status != StatusOrdered {
		return &ErrInvalidOrderTransition{
			OrderID:     o.id,
			From:        o.status,
			To:          StatusStarted,
			Description: "can only start from ORDERED state",
		}
	}
	if o.target.Kind == KindProduceUnit {
		if unit.IsZero() {
			return &ErrInvalidOrderTransition{
				OrderID:     o.id,
				From:        o.status,
				To:          StatusStarted,
				Description: "produce-unit orders must bind the started unit",
			}
		}
		o.startedUnit = unit
	}
	o.status = StatusStarted
	return nil
}

// MarkFinished marks a started order as produced
func (o *Order) MarkFinished() error {
	if o.status != StatusStarted {
		return &ErrInvalidOrderTransition{
			OrderID:     o.id,
			From:        o.status,
			To:          StatusFinished,
			Description: "can only finish from STARTED state",
		}
	}
	o.status = StatusFinished
	return nil
}

// Abort interrupts an in-flight order
func (o *Order) Abort(reason string) error {
	if !o.InFlight() {
		return &ErrInvalidOrderTransition{
			OrderID:     o.id,
			From:        o.status,
			To:          StatusAborted,
			Description: "can only abort ORDERED or STARTED orders",
		}
	}
	o.status = StatusAborted
	o.lastReason = reason
	return nil
}

// Recommission returns an interrupted order to the queue so it is retried.
// Bound handles are released and the interruption is counted.
func (o *Order) Recommission(reason string) error {
	if o.status != StatusAborted && !o.InFlight() {
		return &ErrInvalidOrderTransition{
			OrderID:     o.id,
			From:        o.status,
			To:          StatusCommissioned,
			Description: "can only recommission ABORTED, ORDERED or STARTED orders",
		}
	}
	o.status = StatusCommissioned
	o.startedUnit = shared.NoUnit
	o.producer = shared.NoUnit
	o.interruptions++
	o.lastReason = reason
	return nil
}

func (o *Order) String() string {
	s := fmt.Sprintf("%s [p%d #%d] %s", o.target, o.priority, o.submittedAt, o.status)
	if !o.startedUnit.IsZero() {
		s += " unit " + o.startedUnit.String()
	}
	if !o.producer.IsZero() {
		s += " at " + o.producer.String()
	}
	return s
}
