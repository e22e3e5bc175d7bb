package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/rtsbot-go/internal/application/common"
	"github.com/andrescamacho/rtsbot-go/internal/application/construction"
	appproduction "github.com/andrescamacho/rtsbot-go/internal/application/production"
	"github.com/andrescamacho/rtsbot-go/internal/domain/production"
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
)

// Options tunes the coordinator
type Options struct {
	// DescribeEvery logs the production queue at DEBUG every n frames; 0 disables it
	DescribeEvery int
}

// Coordinator is the per-frame glue between the production scheduler, the
// construction tracker and the game. It dispatches the order the scheduler
// admits and routes game events to both.
type Coordinator struct {
	catalog   *techtree.Catalog
	scheduler *appproduction.Scheduler
	tracker   *construction.JobTracker
	locator   BuildSiteLocator
	opts      Options
}

// NewCoordinator wires a scheduler and a tracker over one tech tree
func NewCoordinator(catalog *techtree.Catalog, locator BuildSiteLocator, opts Options, observers ...production.TransitionObserver) *Coordinator {
	return &Coordinator{
		catalog:   catalog,
		scheduler: appproduction.NewScheduler(catalog, observers...),
		tracker:   construction.NewJobTracker(catalog),
		locator:   locator,
		opts:      opts,
	}
}

func (c *Coordinator) Scheduler() *appproduction.Scheduler { return c.scheduler }
func (c *Coordinator) Tracker() *construction.JobTracker   { return c.tracker }

// Start puts every completed worker the player owns into the worker pool
func (c *Coordinator) Start(ctx context.Context, w world.Queries) {
	workers := w.MyUnits(world.UnitFilter{Types: []techtree.UnitType{c.catalog.WorkerType()}, CompletedOnly: true})
	for _, u := range workers {
		c.tracker.AddWorker(u.ID)
	}
	common.LoggerFromContext(ctx).Log(common.LevelInfo, fmt.Sprintf("Agent started with %d workers", len(workers)), map[string]interface{}{
		"frame": w.FrameCount(),
	})
}

// OnFrame runs one agent frame: construction upkeep, then scheduling, then
// dispatch of the admitted order, if any.
func (c *Coordinator) OnFrame(ctx context.Context, w world.World) {
	c.tracker.Tick(ctx, w)

	if o := c.scheduler.Tick(ctx, w); o != nil {
		c.dispatch(ctx, w, o)
	}

	if c.opts.DescribeEvery > 0 && w.FrameCount()%c.opts.DescribeEvery == 0 {
		common.LoggerFromContext(ctx).Log(common.LevelDebug, c.scheduler.Describe(), nil)
	}
}

func (c *Coordinator) dispatch(ctx context.Context, w world.World, o *production.Order) {
	if err := c.issue(ctx, w, o); err != nil {
		reason := production.ReasonDispatchFailed
		var notFound *shared.UnitNotFoundError
		if errors.As(err, &notFound) {
			reason = production.ReasonProducerDestroyed
		}
		common.LoggerFromContext(ctx).Log(common.LevelWarn, fmt.Sprintf("Dispatch of %s failed: %v", o.Target(), err), map[string]interface{}{
			"order_id": o.ID(),
			"reason":   reason,
		})
		if err := c.scheduler.Requeue(ctx, o.ID(), reason); err != nil {
			common.LoggerFromContext(ctx).Log(common.LevelError, fmt.Sprintf("Failed to requeue %s: %v", o.ID(), err), nil)
		}
	}
}

func (c *Coordinator) issue(ctx context.Context, w world.World, o *production.Order) error {
	target := o.Target()
	switch target.Kind {
	case production.KindProduceUnit:
		if c.catalog.IsWorkerBuilt(target.Unit) {
			return c.build(ctx, w, o)
		}
		spec, err := c.catalog.Unit(target.Unit)
		if err != nil {
			return err
		}
		producer, ok := world.FirstIdleCompleted(w, spec.BuiltBy)
		if !ok {
			return fmt.Errorf("no idle %s", spec.BuiltBy)
		}
		if err := w.Train(producer.ID, target.Unit); err != nil {
			return err
		}
		return c.scheduler.BindProducer(o.ID(), producer.ID)

	case production.KindResearch:
		spec, err := c.catalog.Tech(target.Tech)
		if err != nil {
			return err
		}
		producer, ok := world.FirstIdleCompleted(w, spec.ResearchedAt)
		if !ok {
			return fmt.Errorf("no idle %s", spec.ResearchedAt)
		}
		if err := w.Research(producer.ID, target.Tech); err != nil {
			return err
		}
		return c.scheduler.BindProducer(o.ID(), producer.ID)

	case production.KindUpgrade:
		spec, err := c.catalog.Upgrade(target.Upgrade)
		if err != nil {
			return err
		}
		producer, ok := world.FirstIdleCompleted(w, spec.UpgradedAt)
		if !ok {
			return fmt.Errorf("no idle %s", spec.UpgradedAt)
		}
		if err := w.Upgrade(producer.ID, target.Upgrade); err != nil {
			return err
		}
		return c.scheduler.BindProducer(o.ID(), producer.ID)
	}
	return target.Validate()
}

// build hands a structure to the construction tracker. The builder is not
// bound as the order's producer: the tracker replaces dead builders itself.
func (c *Coordinator) build(ctx context.Context, w world.World, o *production.Order) error {
	t := o.Target().Unit
	site, ok := c.locator.Locate(ctx, w, t)
	if !ok {
		return fmt.Errorf("no build site for %s", t)
	}
	_, err := c.tracker.AddJob(ctx, w, t, site, o.ID())
	return err
}

// HandleEvent routes one game event to the scheduler and the tracker
func (c *Coordinator) HandleEvent(ctx context.Context, w world.World, ev world.UnitEvent) {
	switch ev.Type {
	case world.UnitCreated, world.UnitMorphStarted:
		c.scheduler.OnUnitStarted(ctx, w, ev.Unit)
		c.tracker.OnUnitStarted(ctx, w, ev.Unit)
	case world.UnitCompleted:
		c.tracker.OnUnitCompleted(ctx, w, ev.Unit)
	case world.UnitDestroyed:
		c.scheduler.OnUnitDestroyed(ctx, w, ev.Unit)
		c.tracker.OnUnitDestroyed(ctx, w, ev.Unit)
	case world.UnitDiscovered:
		common.LoggerFromContext(ctx).Log(common.LevelDebug, fmt.Sprintf("Discovered %s %s", ev.Unit.Type, ev.Unit.ID), map[string]interface{}{
			"owner": int(ev.Unit.Owner),
		})
	}
}

// HandleEvents routes events in order
func (c *Coordinator) HandleEvents(ctx context.Context, w world.World, events []world.UnitEvent) {
	for _, ev := range events {
		c.HandleEvent(ctx, w, ev)
	}
}

// CancelOrder cancels matching orders and any construction job backing them.
// Returns the number of orders removed.
func (c *Coordinator) CancelOrder(ctx context.Context, w world.World, target production.Target, scope appproduction.CancelScope) int {
	for _, o := range c.scheduler.Matching(target, scope) {
		c.tracker.RemoveJobsForOrder(ctx, w, o.ID())
	}
	return c.scheduler.Cancel(ctx, target, scope)
}

// Submit queues any kind of target at priority
func (c *Coordinator) Submit(ctx context.Context, w world.Queries, target production.Target, priority int, opts ...appproduction.SubmitOption) ([]*production.Order, error) {
	switch target.Kind {
	case production.KindProduceUnit:
		return c.scheduler.SubmitUnit(ctx, w, target.Unit, priority, opts...)
	case production.KindResearch:
		return c.scheduler.SubmitResearch(ctx, w, target.Tech, priority, opts...)
	case production.KindUpgrade:
		return c.scheduler.SubmitUpgrade(ctx, w, target.Upgrade, target.Level, priority, opts...)
	}
	return nil, target.Validate()
}
