package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/rtsbot-go/internal/adapters/sandbox"
	appproduction "github.com/andrescamacho/rtsbot-go/internal/application/production"
	"github.com/andrescamacho/rtsbot-go/internal/domain/production"
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
)

type harness struct {
	ctx   context.Context
	world *sandbox.World
	agent *Coordinator
	log   []production.Transition
}

func newHarness(t *testing.T, minerals, gas int) *harness {
	t.Helper()
	catalog := techtree.DefaultCatalog()
	cfg := sandbox.DefaultConfig()
	cfg.Minerals, cfg.Gas = minerals, gas
	w, _ := sandbox.NewStandardStart(catalog, cfg)

	h := &harness{ctx: context.Background(), world: w}
	h.agent = NewCoordinator(catalog, NewRingSiteLocator(catalog), Options{}, production.TransitionObserverFunc(
		func(_ context.Context, tr production.Transition) { h.log = append(h.log, tr) },
	))
	h.agent.Start(h.ctx, w)
	return h
}

func (h *harness) run(frames int) {
	for i := 0; i < frames; i++ {
		h.agent.OnFrame(h.ctx, h.world)
		h.world.Step(1)
		h.agent.HandleEvents(h.ctx, h.world, h.world.DrainEvents())
	}
}

func (h *harness) owned(t techtree.UnitType) int {
	return len(h.world.MyUnits(world.UnitFilter{Types: []techtree.UnitType{t}, CompletedOnly: true}))
}

func TestStart_SeedsWorkerPool(t *testing.T) {
	h := newHarness(t, 0, 0)
	assert.Equal(t, 4, h.agent.Tracker().Pool().Size())
}

func TestCoordinator_BuildsPrerequisitesThenUnit(t *testing.T) {
	h := newHarness(t, 2000, 0)

	orders, err := h.agent.Scheduler().SubmitUnit(h.ctx, h.world, "Terran_Marine", 3)
	require.NoError(t, err)
	require.Len(t, orders, 2, "barracks is backfilled")

	h.run(2400)

	assert.Equal(t, 1, h.owned("Terran_Barracks"))
	assert.Equal(t, 1, h.owned("Terran_Marine"))
	assert.Equal(t, 0, h.agent.Scheduler().Len())
	assert.Empty(t, h.agent.Tracker().Jobs())

	var finished int
	for _, tr := range h.log {
		if tr.To == production.StatusFinished {
			finished++
		}
	}
	assert.Equal(t, 2, finished)
}

func TestCoordinator_ResearchAndUpgradeUseIdleProducers(t *testing.T) {
	h := newHarness(t, 1000, 1000)
	h.world.Spawn("Terran_Academy", shared.NewTilePosition(30, 30), true)
	h.world.Spawn("Terran_Engineering_Bay", shared.NewTilePosition(40, 30), true)

	_, err := h.agent.Scheduler().SubmitResearch(h.ctx, h.world, "Stim_Packs", 2)
	require.NoError(t, err)
	_, err = h.agent.Scheduler().SubmitUpgrade(h.ctx, h.world, "Terran_Infantry_Armor", 1, 1)
	require.NoError(t, err)

	h.run(5)
	assert.True(t, h.world.IsResearching("Stim_Packs"))
	assert.True(t, h.world.IsUpgrading("Terran_Infantry_Armor"))

	h.run(4000)
	assert.True(t, h.world.HasResearched("Stim_Packs"))
	assert.Equal(t, 1, h.world.UpgradeLevel("Terran_Infantry_Armor"))
	assert.Equal(t, 0, h.agent.Scheduler().Len())
}

func TestCoordinator_RejectedCommandRequeuesOrder(t *testing.T) {
	h := newHarness(t, 50, 0)
	orders, err := h.agent.Scheduler().SubmitUnit(h.ctx, h.world, "Terran_SCV", 1)
	require.NoError(t, err)

	h.world.FailNextCommand(errors.New("lag"))
	h.agent.OnFrame(h.ctx, h.world)

	o := orders[0]
	assert.Equal(t, production.StatusCommissioned, o.Status())
	assert.Equal(t, production.ReasonDispatchFailed, o.LastReason())

	h.run(2)
	assert.Equal(t, production.StatusStarted, o.Status(), "retried on the next frame")
}

func TestCoordinator_VanishedProducerRequeuesAsDestroyed(t *testing.T) {
	h := newHarness(t, 50, 0)
	orders, err := h.agent.Scheduler().SubmitUnit(h.ctx, h.world, "Terran_SCV", 1)
	require.NoError(t, err)

	h.world.FailNextCommand(shared.NewUnitNotFoundError(7))
	h.agent.OnFrame(h.ctx, h.world)

	o := orders[0]
	assert.Equal(t, production.StatusCommissioned, o.Status())
	assert.Equal(t, production.ReasonProducerDestroyed, o.LastReason())
	require.NotEmpty(t, h.log)
	assert.Equal(t, production.ReasonProducerDestroyed, h.log[len(h.log)-1].Reason)
}

func TestCoordinator_CancelOrderStopsItsJob(t *testing.T) {
	h := newHarness(t, 1000, 0)
	orders, err := h.agent.Scheduler().SubmitUnit(h.ctx, h.world, "Terran_Supply_Depot", 1)
	require.NoError(t, err)

	h.run(1)
	require.Len(t, h.agent.Tracker().Jobs(), 1)
	assert.Equal(t, orders[0].ID(), h.agent.Tracker().Jobs()[0].OrderID())

	n := h.agent.CancelOrder(h.ctx, h.world, production.UnitTarget("Terran_Supply_Depot"), appproduction.CancelOldest)

	assert.Equal(t, 1, n)
	assert.Empty(t, h.agent.Tracker().Jobs())
	assert.Equal(t, 0, h.agent.Scheduler().Len())
	assert.Equal(t, 0, h.agent.Tracker().Pool().ReservedCount())
}

func TestRingSiteLocator_SkipsBlockedTiles(t *testing.T) {
	catalog := techtree.DefaultCatalog()
	w, _ := sandbox.NewStandardStart(catalog, sandbox.DefaultConfig())
	locator := NewRingSiteLocator(catalog)

	first, ok := locator.Locate(context.Background(), w, "Terran_Supply_Depot")
	require.True(t, ok)
	assert.True(t, w.CanBuildHere("Terran_Supply_Depot", first))

	w.Spawn("Terran_Supply_Depot", first, true)
	second, ok := locator.Locate(context.Background(), w, "Terran_Supply_Depot")
	require.True(t, ok)
	assert.False(t, second.Equals(first))
}

func TestRingSiteLocator_NeedsADepot(t *testing.T) {
	catalog := techtree.DefaultCatalog()
	w := sandbox.New(catalog, sandbox.DefaultConfig())

	_, ok := NewRingSiteLocator(catalog).Locate(context.Background(), w, "Terran_Supply_Depot")
	assert.False(t, ok)
}
