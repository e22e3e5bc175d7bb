package production

import (
	"context"
	"fmt"
	"strings"

	"github.com/andrescamacho/rtsbot-go/internal/adapters/metrics"
	"github.com/andrescamacho/rtsbot-go/internal/application/common"
	"github.com/andrescamacho/rtsbot-go/internal/domain/production"
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
)

// Scheduler is the production queue. Orders are kept sorted by
// production.Less; at most one order is ORDERED at any time, so the
// dispatcher is handed one new order per tick at most.
//
// The scheduler is not safe for concurrent use: it is driven from the game's
// frame callback together with the event handlers.
type Scheduler struct {
	catalog   *techtree.Catalog
	resolver  *production.PrerequisiteResolver
	admission *production.AdmissionSpecification
	observers []production.TransitionObserver

	orders []*production.Order
	seq    int64
	frame  int
}

// NewScheduler creates an empty scheduler over a tech tree
func NewScheduler(catalog *techtree.Catalog, observers ...production.TransitionObserver) *Scheduler {
	resolver := production.NewPrerequisiteResolver(catalog)
	return &Scheduler{
		catalog:   catalog,
		resolver:  resolver,
		admission: production.NewAdmissionSpecification(catalog, resolver),
		observers: observers,
	}
}

// AddObserver registers a transition observer
func (s *Scheduler) AddObserver(o production.TransitionObserver) {
	s.observers = append(s.observers, o)
}

// Tick advances the queue by one frame and returns the order the dispatcher
// should act on now, or nil.
func (s *Scheduler) Tick(ctx context.Context, w world.Queries) *production.Order {
	s.frame = w.FrameCount()

	s.checkStarted(ctx, w)
	s.removeFinished()
	defer s.reportDepth()

	if pending := s.InFlight(); pending != nil {
		if !s.confirmStart(ctx, pending, w) {
			return nil
		}
	}

	return s.admitNext(ctx, w)
}

// checkStarted finishes started orders whose product is done, and silently
// requeues unit orders whose started unit disappeared.
func (s *Scheduler) checkStarted(ctx context.Context, w world.Queries) {
	logger := common.LoggerFromContext(ctx)

	for _, o := range s.orders {
		if !o.IsStatus(production.StatusStarted) {
			continue
		}

		target := o.Target()
		switch target.Kind {
		case production.KindProduceUnit:
			u, ok := w.Unit(o.StartedUnit())
			if !ok || !u.Exists {
				unit := o.StartedUnit()
				if err := o.Recommission(production.ReasonUnitLost); err == nil {
					s.notify(ctx, o, production.StatusStarted, unit, production.ReasonUnitLost)
				}
				continue
			}
			if u.Completed {
				s.finish(ctx, o)
			}
		case production.KindResearch:
			if w.HasResearched(target.Tech) {
				s.finish(ctx, o)
			}
		case production.KindUpgrade:
			if w.UpgradeLevel(target.Upgrade) >= target.Level {
				s.finish(ctx, o)
			}
		default:
			logger.Log(common.LevelError, fmt.Sprintf("Order %s has unknown kind %q", o.ID(), target.Kind), nil)
		}
	}
}

func (s *Scheduler) finish(ctx context.Context, o *production.Order) {
	if err := o.MarkFinished(); err != nil {
		return
	}
	s.notify(ctx, o, production.StatusStarted, o.StartedUnit(), "")
	metrics.RecordOrderCompleted(string(o.Kind()), s.frame-o.SubmittedFrame())
	common.LoggerFromContext(ctx).Log(common.LevelInfo, fmt.Sprintf("Finished %s", o.Target()), map[string]interface{}{
		"order_id": o.ID(),
		"frame":    s.frame,
	})
}

func (s *Scheduler) removeFinished() {
	kept := s.orders[:0]
	removed := false
	for _, o := range s.orders {
		if o.IsStatus(production.StatusFinished) {
			removed = true
			continue
		}
		kept = append(kept, o)
	}
	s.orders = kept
	if removed {
		production.SortOrders(s.orders)
	}
}

// confirmStart polls the game for research and upgrade starts. Unit orders
// are only confirmed through OnUnitStarted.
func (s *Scheduler) confirmStart(ctx context.Context, o *production.Order, w world.Queries) bool {
	target := o.Target()
	var started bool
	switch target.Kind {
	case production.KindResearch:
		started = w.IsResearching(target.Tech) || w.HasResearched(target.Tech)
	case production.KindUpgrade:
		started = w.IsUpgrading(target.Upgrade) || w.UpgradeLevel(target.Upgrade) >= target.Level
	}
	if !started {
		return false
	}
	if err := o.MarkStarted(shared.NoUnit); err != nil {
		return false
	}
	s.notify(ctx, o, production.StatusOrdered, shared.NoUnit, "")
	return true
}

// admitNext scans commissioned orders in queue order and promotes the first
// one whose gates pass. An unaffordable order stops the scan so that cheaper,
// lower-ranked orders cannot starve it of resources.
func (s *Scheduler) admitNext(ctx context.Context, w world.Queries) *production.Order {
	logger := common.LoggerFromContext(ctx)

	for _, o := range s.orders {
		if !o.IsStatus(production.StatusCommissioned) {
			continue
		}

		gate := s.admission.Evaluate(o, w)
		if gate.Passed() {
			if err := o.MarkOrdered(); err != nil {
				logger.Log(common.LevelError, fmt.Sprintf("Failed to promote %s: %v", o.Target(), err), nil)
				return nil
			}
			s.notify(ctx, o, production.StatusCommissioned, shared.NoUnit, "")
			logger.Log(common.LevelInfo, fmt.Sprintf("Ordered %s", o.Target()), map[string]interface{}{
				"order_id": o.ID(),
				"priority": o.Priority(),
				"frame":    s.frame,
			})
			return o
		}

		if gate.HaltsScan() {
			metrics.RecordAdmissionBlocked(string(o.Kind()), string(gate))
			logger.Log(common.LevelDebug, fmt.Sprintf("Saving up for %s", o.Target()), map[string]interface{}{
				"minerals":   w.Minerals(),
				"gas":        w.Gas(),
				"blocked_by": s.blockedBy(o, w),
			})
			return nil
		}
	}
	return nil
}

// blockedBy names every gate the order currently fails
func (s *Scheduler) blockedBy(o *production.Order, w world.Queries) []string {
	gates := s.admission.Assess(o, w)
	names := make([]string, 0, len(gates))
	for _, g := range gates {
		names = append(names, string(g))
	}
	return names
}

// SubmitUnit queues one unit or building. Missing prerequisites are queued
// first at the same priority unless WithoutPrerequisites is given. Unit
// orders are never deduplicated: submitting twice produces two units.
func (s *Scheduler) SubmitUnit(ctx context.Context, w world.Queries, t techtree.UnitType, priority int, opts ...SubmitOption) ([]*production.Order, error) {
	if _, err := s.catalog.Unit(t); err != nil {
		return nil, fmt.Errorf("failed to submit unit: %w", err)
	}
	return s.submit(ctx, w, production.UnitTarget(t), priority, opts)
}

// SubmitResearch queues a tech unless it is already researched, in progress
// or queued.
func (s *Scheduler) SubmitResearch(ctx context.Context, w world.Queries, t techtree.TechType, priority int, opts ...SubmitOption) ([]*production.Order, error) {
	if _, err := s.catalog.Tech(t); err != nil {
		return nil, fmt.Errorf("failed to submit research: %w", err)
	}
	target := production.ResearchTarget(t)
	if w.HasResearched(t) || w.IsResearching(t) || s.HasQueued(target) {
		return nil, nil
	}
	return s.submit(ctx, w, target, priority, opts)
}

// SubmitUpgrade queues an upgrade level unless it is already reached or
// queued. Lower levels that are neither reached nor queued are queued first
// when prerequisites are resolved.
func (s *Scheduler) SubmitUpgrade(ctx context.Context, w world.Queries, u techtree.UpgradeType, level, priority int, opts ...SubmitOption) ([]*production.Order, error) {
	spec, err := s.catalog.Upgrade(u)
	if err != nil {
		return nil, fmt.Errorf("failed to submit upgrade: %w", err)
	}
	if _, err := spec.Level(level); err != nil {
		return nil, fmt.Errorf("failed to submit upgrade: %w", err)
	}

	target := production.UpgradeTarget(u, level)
	if w.UpgradeLevel(u) >= level || s.HasQueued(target) {
		return nil, nil
	}

	options := defaultSubmitOptions()
	for _, opt := range opts {
		opt(&options)
	}

	var added []*production.Order
	if options.resolvePrerequisites {
		for lower := w.UpgradeLevel(u) + 1; lower < level; lower++ {
			lowerTarget := production.UpgradeTarget(u, lower)
			if s.HasQueued(lowerTarget) {
				continue
			}
			orders, err := s.submit(ctx, w, lowerTarget, priority, opts)
			if err != nil {
				return added, err
			}
			added = append(added, orders...)
		}
	}

	orders, err := s.submit(ctx, w, target, priority, opts)
	return append(added, orders...), err
}

func (s *Scheduler) submit(ctx context.Context, w world.Queries, target production.Target, priority int, opts []SubmitOption) ([]*production.Order, error) {
	options := defaultSubmitOptions()
	for _, opt := range opts {
		opt(&options)
	}

	var targets []production.Target
	if options.resolvePrerequisites {
		backfill, err := s.resolver.Backfill(target, world.Ownership{Q: w}, s.hasQueuedUnit)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve prerequisites of %s: %w", target, err)
		}
		for _, t := range backfill {
			targets = append(targets, production.UnitTarget(t))
		}
	}
	targets = append(targets, target)

	added := make([]*production.Order, 0, len(targets))
	for _, t := range targets {
		s.seq++
		o, err := production.NewOrder(t, priority, s.seq, w.FrameCount())
		if err != nil {
			return added, err
		}
		s.orders = append(s.orders, o)
		added = append(added, o)
	}
	production.SortOrders(s.orders)

	logger := common.LoggerFromContext(ctx)
	for _, o := range added {
		logger.Log(common.LevelInfo, fmt.Sprintf("Queued %s at priority %d", o.Target(), priority), map[string]interface{}{
			"order_id": o.ID(),
			"backfill": o.Target() != target,
		})
	}
	s.reportDepth()
	return added, nil
}

func (s *Scheduler) hasQueuedUnit(t techtree.UnitType) bool {
	return s.HasQueued(production.UnitTarget(t))
}

// Cancel removes the oldest matching order, or every matching order.
// In-flight orders are aborted before removal. Returns the number removed.
func (s *Scheduler) Cancel(ctx context.Context, target production.Target, scope CancelScope) int {
	victims := s.Matching(target, scope)
	if len(victims) == 0 {
		return 0
	}

	doomed := make(map[string]bool, len(victims))
	for _, o := range victims {
		doomed[o.ID()] = true
		if o.InFlight() {
			from := o.Status()
			if err := o.Abort(production.ReasonCancelled); err == nil {
				s.notify(ctx, o, from, o.StartedUnit(), production.ReasonCancelled)
			}
		}
	}

	kept := s.orders[:0]
	for _, o := range s.orders {
		if !doomed[o.ID()] {
			kept = append(kept, o)
		}
	}
	s.orders = kept
	production.SortOrders(s.orders)
	s.reportDepth()

	common.LoggerFromContext(ctx).Log(common.LevelInfo, fmt.Sprintf("Cancelled %d order(s) for %s", len(victims), target), nil)
	return len(victims)
}

// Matching returns the orders Cancel would remove for target and scope
func (s *Scheduler) Matching(target production.Target, scope CancelScope) []*production.Order {
	var matched []*production.Order
	for _, o := range s.orders {
		if !o.Target().Equals(target) {
			continue
		}
		if scope == CancelOldest {
			if len(matched) == 0 || o.SubmittedAt() < matched[0].SubmittedAt() {
				matched = []*production.Order{o}
			}
			continue
		}
		matched = append(matched, o)
	}
	return matched
}

// OnUnitStarted binds a newly created or morphing unit to the ORDERED unit
// order of the same type.
func (s *Scheduler) OnUnitStarted(ctx context.Context, w world.Queries, u world.Unit) {
	if !world.IsOwn(w, u) {
		return
	}
	for _, o := range s.orders {
		if !o.IsStatus(production.StatusOrdered) || o.Kind() != production.KindProduceUnit || o.Target().Unit != u.Type {
			continue
		}
		if err := o.MarkStarted(u.ID); err != nil {
			continue
		}
		s.notify(ctx, o, production.StatusOrdered, u.ID, "")
		return
	}
}

// OnUnitDestroyed requeues in-flight orders that depended on the destroyed
// unit: the unit being produced, the producer bound by the dispatcher, or a
// building that was researching or upgrading the order's target.
func (s *Scheduler) OnUnitDestroyed(ctx context.Context, w world.Queries, u world.Unit) {
	if !world.IsOwn(w, u) {
		return
	}
	logger := common.LoggerFromContext(ctx)

	for _, o := range s.orders {
		if !o.InFlight() {
			continue
		}
		reason := s.interruption(o, u)
		if reason == "" {
			continue
		}

		from := o.Status()
		unit := o.StartedUnit()
		if err := o.Abort(reason); err != nil {
			continue
		}
		s.notify(ctx, o, from, unit, reason)
		if err := o.Recommission(reason); err != nil {
			continue
		}
		s.notify(ctx, o, production.StatusAborted, shared.NoUnit, reason)

		logger.Log(common.LevelWarn, fmt.Sprintf("Requeued %s: %s", o.Target(), reason), map[string]interface{}{
			"order_id":      o.ID(),
			"destroyed":     int(u.ID),
			"interruptions": o.Interruptions(),
		})
	}
}

func (s *Scheduler) interruption(o *production.Order, u world.Unit) string {
	target := o.Target()
	switch {
	case o.StartedUnit() == u.ID:
		return production.ReasonUnitLost
	case !o.Producer().IsZero() && o.Producer() == u.ID:
		return production.ReasonProducerDestroyed
	case target.Kind == production.KindResearch && u.Researching == target.Tech:
		return production.ReasonProducerDestroyed
	case target.Kind == production.KindUpgrade && u.Upgrading == target.Upgrade:
		return production.ReasonProducerDestroyed
	}
	return ""
}

// BindProducer records the unit the dispatcher used for an ORDERED order
func (s *Scheduler) BindProducer(orderID string, producer shared.UnitID) error {
	o := s.Find(orderID)
	if o == nil {
		return &production.ErrOrderNotFound{OrderID: orderID}
	}
	return o.BindProducer(producer)
}

// Requeue returns an ORDERED order to the queue after the dispatcher failed
// to act on it
func (s *Scheduler) Requeue(ctx context.Context, orderID, reason string) error {
	o := s.Find(orderID)
	if o == nil {
		return &production.ErrOrderNotFound{OrderID: orderID}
	}
	if !o.IsStatus(production.StatusOrdered) {
		return &production.ErrInvalidOrderTransition{
			OrderID:     orderID,
			From:        o.Status(),
			To:          production.StatusCommissioned,
			Description: "only ORDERED orders can be requeued",
		}
	}
	if err := o.Recommission(reason); err != nil {
		return err
	}
	s.notify(ctx, o, production.StatusOrdered, shared.NoUnit, reason)
	common.LoggerFromContext(ctx).Log(common.LevelWarn, fmt.Sprintf("Requeued %s: %s", o.Target(), reason), map[string]interface{}{
		"order_id": orderID,
	})
	return nil
}

func (s *Scheduler) notify(ctx context.Context, o *production.Order, from production.OrderStatus, unit shared.UnitID, reason string) {
	metrics.RecordOrderTransition(string(o.Kind()), string(from), string(o.Status()))
	if len(s.observers) == 0 {
		return
	}
	t := production.Transition{
		OrderID:  o.ID(),
		Target:   o.Target(),
		Priority: o.Priority(),
		From:     from,
		To:       o.Status(),
		Frame:    s.frame,
		Unit:     unit,
		Reason:   reason,
	}
	for _, obs := range s.observers {
		obs.OnTransition(ctx, t)
	}
}

func (s *Scheduler) reportDepth() {
	if !metrics.IsEnabled() {
		return
	}
	counts := map[production.OrderStatus]int{
		production.StatusCommissioned: 0,
		production.StatusOrdered:      0,
		production.StatusStarted:      0,
	}
	for _, o := range s.orders {
		counts[o.Status()]++
	}
	for status, n := range counts {
		metrics.SetQueueDepth(string(status), n)
	}
}

// Queries

// Orders returns a snapshot of the queue in scheduling order
func (s *Scheduler) Orders() []*production.Order {
	out := make([]*production.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Len returns the number of queued orders
func (s *Scheduler) Len() int {
	return len(s.orders)
}

// Find returns the order with the given id, or nil
func (s *Scheduler) Find(orderID string) *production.Order {
	for _, o := range s.orders {
		if o.ID() == orderID {
			return o
		}
	}
	return nil
}

// InFlight returns the order waiting for the game to confirm its start, or nil
func (s *Scheduler) InFlight() *production.Order {
	for _, o := range s.orders {
		if o.IsStatus(production.StatusOrdered) {
			return o
		}
	}
	return nil
}

// HasQueued reports whether any order targets t
func (s *Scheduler) HasQueued(t production.Target) bool {
	for _, o := range s.orders {
		if o.Target().Equals(t) {
			return true
		}
	}
	return false
}

// CountQueued returns how many orders of unit type t are queued or in production
func (s *Scheduler) CountQueued(t techtree.UnitType) int {
	n := 0
	target := production.UnitTarget(t)
	for _, o := range s.orders {
		if o.Target().Equals(target) {
			n++
		}
	}
	return n
}

// Describe renders the queue one order per line for debug logging
func (s *Scheduler) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "production queue (%d):", len(s.orders))
	for i, o := range s.orders {
		fmt.Fprintf(&b, "\n  %2d. %s", i+1, o)
	}
	return b.String()
}
