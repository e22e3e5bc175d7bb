package production

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/rtsbot-go/internal/adapters/sandbox"
	"github.com/andrescamacho/rtsbot-go/internal/application/common"
	"github.com/andrescamacho/rtsbot-go/internal/domain/production"
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
)

type fixture struct {
	ctx       context.Context
	world     *sandbox.World
	cc        shared.UnitID
	scheduler *Scheduler
	log       []production.Transition
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog := techtree.DefaultCatalog()
	cfg := sandbox.DefaultConfig()
	cfg.TravelFrames = 0
	w, cc := sandbox.NewStandardStart(catalog, cfg)

	f := &fixture{ctx: context.Background(), world: w, cc: cc}
	f.scheduler = NewScheduler(catalog, production.TransitionObserverFunc(func(_ context.Context, tr production.Transition) {
		f.log = append(f.log, tr)
	}))
	return f
}

// route delivers pending world events the way the agent does
func (f *fixture) route() {
	for _, ev := range f.world.DrainEvents() {
		switch ev.Type {
		case world.UnitCreated, world.UnitMorphStarted:
			f.scheduler.OnUnitStarted(f.ctx, f.world, ev.Unit)
		case world.UnitDestroyed:
			f.scheduler.OnUnitDestroyed(f.ctx, f.world, ev.Unit)
		}
	}
}

func (f *fixture) spawn(t techtree.UnitType, x, y int) shared.UnitID {
	return f.world.Spawn(t, shared.NewTilePosition(x, y), true)
}

func TestTick_HigherPriorityWinsWhenOnlyOneIsAffordable(t *testing.T) {
	f := newFixture(t)
	f.spawn("Terran_Barracks", 30, 30)
	f.spawn("Terran_Barracks", 40, 30)
	f.world.SetResources(50, 0)

	low, err := f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_Marine", 3)
	require.NoError(t, err)
	high, err := f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_Marine", 5)
	require.NoError(t, err)

	got := f.scheduler.Tick(f.ctx, f.world)

	require.NotNil(t, got)
	assert.Equal(t, high[0].ID(), got.ID())
	assert.Equal(t, production.StatusOrdered, high[0].Status())
	assert.Equal(t, production.StatusCommissioned, low[0].Status())
}

func TestTick_SingleFlight(t *testing.T) {
	f := newFixture(t)
	f.spawn("Terran_Barracks", 30, 30)
	f.spawn("Terran_Barracks", 40, 30)
	f.world.SetResources(1000, 0)

	for i := 0; i < 3; i++ {
		_, err := f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_Marine", 1)
		require.NoError(t, err)
	}

	require.NotNil(t, f.scheduler.Tick(f.ctx, f.world))
	for i := 0; i < 5; i++ {
		assert.Nil(t, f.scheduler.Tick(f.ctx, f.world), "nothing new while an order awaits its start")
	}

	ordered := 0
	for _, o := range f.scheduler.Orders() {
		if o.IsStatus(production.StatusOrdered) {
			ordered++
		}
	}
	assert.Equal(t, 1, ordered)
}

func TestTick_UnaffordableHeadHaltsScan(t *testing.T) {
	f := newFixture(t)
	f.spawn("Terran_Barracks", 30, 30)
	f.world.SetResources(60, 0)

	_, err := f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_Command_Center", 9, WithoutPrerequisites())
	require.NoError(t, err)
	_, err = f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_Marine", 1)
	require.NoError(t, err)

	assert.Nil(t, f.scheduler.Tick(f.ctx, f.world), "the marine must not spend the command center's minerals")
}

type logEntry struct {
	level    string
	message  string
	metadata map[string]interface{}
}

type recordingLogger struct {
	entries []logEntry
}

func (l *recordingLogger) Log(level, message string, metadata map[string]interface{}) {
	l.entries = append(l.entries, logEntry{level: level, message: message, metadata: metadata})
}

func TestTick_BlockedHeadLogsFailingGates(t *testing.T) {
	f := newFixture(t)
	logger := &recordingLogger{}
	f.ctx = common.WithLogger(f.ctx, logger)
	f.world.SetResources(60, 0)

	_, err := f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_Command_Center", 9, WithoutPrerequisites())
	require.NoError(t, err)
	require.Nil(t, f.scheduler.Tick(f.ctx, f.world))

	var saving *logEntry
	for i := range logger.entries {
		if logger.entries[i].message == "Saving up for "+production.UnitTarget("Terran_Command_Center").String() {
			saving = &logger.entries[i]
		}
	}
	require.NotNil(t, saving)
	assert.Equal(t, common.LevelDebug, saving.level)
	assert.Equal(t, []string{string(production.GateUnaffordable)}, saving.metadata["blocked_by"])
	assert.Equal(t, 60, saving.metadata["minerals"])
}

func TestTick_MissingPrerequisiteIsSkipped(t *testing.T) {
	f := newFixture(t)
	f.world.SetResources(1000, 1000)

	_, err := f.scheduler.SubmitResearch(f.ctx, f.world, "Stim_Packs", 9, WithoutPrerequisites())
	require.NoError(t, err)
	scv, err := f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_SCV", 1)
	require.NoError(t, err)

	got := f.scheduler.Tick(f.ctx, f.world)

	require.NotNil(t, got)
	assert.Equal(t, scv[0].ID(), got.ID(), "research without an academy does not hold back the queue")
}

func TestTick_UnitOrderStartsOnEventAndFinishesOnCompletion(t *testing.T) {
	f := newFixture(t)
	orders, err := f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_SCV", 1)
	require.NoError(t, err)
	o := orders[0]

	require.Equal(t, o, f.scheduler.Tick(f.ctx, f.world))
	require.NoError(t, f.world.Train(f.cc, "Terran_SCV"))
	require.NoError(t, f.scheduler.BindProducer(o.ID(), f.cc))
	f.route()

	assert.Equal(t, production.StatusStarted, o.Status())
	assert.False(t, o.StartedUnit().IsZero())

	f.world.Step(300)
	f.scheduler.Tick(f.ctx, f.world)

	assert.Equal(t, production.StatusFinished, o.Status())
	assert.Equal(t, 0, f.scheduler.Len(), "finished orders are removed")
}

func TestTick_LostStartedUnitIsRecommissioned(t *testing.T) {
	f := newFixture(t)
	orders, err := f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_SCV", 1)
	require.NoError(t, err)
	o := orders[0]
	f.scheduler.Tick(f.ctx, f.world)
	require.NoError(t, f.world.Train(f.cc, "Terran_SCV"))
	f.route()
	trainee := o.StartedUnit()

	f.world.Kill(trainee)
	f.world.DrainEvents() // lost without the agent hearing about it

	f.scheduler.Tick(f.ctx, f.world)

	assert.Equal(t, production.StatusCommissioned, o.Status())
	assert.Equal(t, 1, f.scheduler.Len())
	assert.Equal(t, 1, o.Interruptions())
}

func TestTick_InterruptedStartedOrderIsPromotedAgain(t *testing.T) {
	f := newFixture(t)
	orders, err := f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_SCV", 1)
	require.NoError(t, err)
	o := orders[0]
	id := o.ID()

	require.Equal(t, o, f.scheduler.Tick(f.ctx, f.world))
	require.NoError(t, f.world.Train(f.cc, "Terran_SCV"))
	f.route()
	require.Equal(t, production.StatusStarted, o.Status())

	f.world.Kill(o.StartedUnit())
	f.route()
	require.Equal(t, production.StatusCommissioned, o.Status())

	assert.Nil(t, f.scheduler.Tick(f.ctx, f.world), "nothing left to pay for the retry")

	f.world.SetResources(50, 0)
	got := f.scheduler.Tick(f.ctx, f.world)

	require.NotNil(t, got, "the interrupted order is admitted again once its gates pass")
	assert.Equal(t, id, got.ID())
	assert.Equal(t, production.StatusOrdered, got.Status())
	assert.Equal(t, 1, got.Interruptions())

	require.NoError(t, f.world.Train(f.cc, "Terran_SCV"))
	f.route()
	f.world.Step(300)
	f.scheduler.Tick(f.ctx, f.world)
	assert.Equal(t, production.StatusFinished, o.Status())
}

func TestOnUnitDestroyed_ProducerLossRecommissions(t *testing.T) {
	f := newFixture(t)
	f.world.SetResources(1000, 1000)
	academy := f.spawn("Terran_Academy", 30, 30)

	orders, err := f.scheduler.SubmitResearch(f.ctx, f.world, "Stim_Packs", 1)
	require.NoError(t, err)
	o := orders[0]
	require.Equal(t, o, f.scheduler.Tick(f.ctx, f.world))
	require.NoError(t, f.world.Research(academy, "Stim_Packs"))
	f.scheduler.Tick(f.ctx, f.world)
	require.Equal(t, production.StatusStarted, o.Status())

	f.world.Kill(academy)
	f.route()

	assert.Equal(t, production.StatusCommissioned, o.Status())
	assert.Equal(t, production.ReasonProducerDestroyed, o.LastReason())
	assert.Equal(t, 1, f.scheduler.Len(), "interrupted orders are never dropped")

	var sawAbort bool
	for _, tr := range f.log {
		if tr.To == production.StatusAborted {
			sawAbort = true
		}
	}
	assert.True(t, sawAbort)
}

func TestUpgradeLevelTwo_FinishesWhenLevelReached(t *testing.T) {
	f := newFixture(t)
	f.world.SetResources(1000, 1000)
	bay := f.spawn("Terran_Engineering_Bay", 30, 30)
	f.spawn("Terran_Science_Facility", 40, 30)
	f.world.SetUpgradeLevel("Terran_Infantry_Weapons", 1)

	orders, err := f.scheduler.SubmitUpgrade(f.ctx, f.world, "Terran_Infantry_Weapons", 2, 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	o := orders[0]

	require.Equal(t, o, f.scheduler.Tick(f.ctx, f.world))
	require.NoError(t, f.world.Upgrade(bay, "Terran_Infantry_Weapons"))

	f.scheduler.Tick(f.ctx, f.world)
	assert.Equal(t, production.StatusStarted, o.Status())

	f.world.Step(4480)
	require.Equal(t, 2, f.world.UpgradeLevel("Terran_Infantry_Weapons"))
	f.scheduler.Tick(f.ctx, f.world)

	assert.Equal(t, production.StatusFinished, o.Status())
	assert.Equal(t, 0, f.scheduler.Len())
}

func TestSubmitUpgrade_QueuesLowerLevelsFirst(t *testing.T) {
	f := newFixture(t)
	f.spawn("Terran_Engineering_Bay", 30, 30)
	f.spawn("Terran_Science_Facility", 40, 30)

	orders, err := f.scheduler.SubmitUpgrade(f.ctx, f.world, "Terran_Infantry_Weapons", 3, 2)
	require.NoError(t, err)

	require.Len(t, orders, 3)
	for i, o := range orders {
		assert.Equal(t, i+1, o.Target().Level)
	}
}

func TestSubmit_BackfillsMissingPrerequisites(t *testing.T) {
	f := newFixture(t)

	orders, err := f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_Firebat", 4)
	require.NoError(t, err)

	var names []string
	for _, o := range orders {
		names = append(names, o.Target().Name())
		assert.Equal(t, 4, o.Priority())
	}
	assert.Equal(t, []string{"Terran_Barracks", "Terran_Academy", "Terran_Firebat"}, names)

	// the queue now holds every missing requirement, so resubmitting adds nothing extra
	again, err := f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_Firebat", 4)
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestSubmit_ResearchIsIdempotentUnitsAreNot(t *testing.T) {
	f := newFixture(t)
	f.spawn("Terran_Academy", 30, 30)

	first, err := f.scheduler.SubmitResearch(f.ctx, f.world, "Stim_Packs", 1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	second, err := f.scheduler.SubmitResearch(f.ctx, f.world, "Stim_Packs", 7)
	require.NoError(t, err)
	assert.Empty(t, second)

	f.world.MarkResearched("U_238_Shells")
	done, err := f.scheduler.SubmitResearch(f.ctx, f.world, "U_238_Shells", 1)
	require.NoError(t, err)
	assert.Empty(t, done)

	_, err = f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_SCV", 1)
	require.NoError(t, err)
	_, err = f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_SCV", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, f.scheduler.CountQueued("Terran_SCV"))
}

func TestSubmit_UnknownTypeIsAnError(t *testing.T) {
	f := newFixture(t)

	_, err := f.scheduler.SubmitUnit(f.ctx, f.world, "Protoss_Probe", 1)
	var unknown *techtree.ErrUnknownType
	assert.ErrorAs(t, err, &unknown)

	_, err = f.scheduler.SubmitUpgrade(f.ctx, f.world, "Terran_Infantry_Weapons", 4, 1)
	var level *techtree.ErrInvalidLevel
	assert.ErrorAs(t, err, &level)
	assert.Equal(t, 0, f.scheduler.Len())
}

func TestCancel_OldestThenAllAndIdempotent(t *testing.T) {
	f := newFixture(t)
	var ids []string
	for _, p := range []int{1, 5, 3} {
		orders, err := f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_SCV", p)
		require.NoError(t, err)
		ids = append(ids, orders[0].ID())
	}
	target := production.UnitTarget("Terran_SCV")

	assert.Equal(t, 1, f.scheduler.Cancel(f.ctx, target, CancelOldest))
	assert.Nil(t, f.scheduler.Find(ids[0]), "the earliest submission goes first")
	assert.NotNil(t, f.scheduler.Find(ids[1]))

	assert.Equal(t, 2, f.scheduler.Cancel(f.ctx, target, CancelAll))
	assert.Equal(t, 0, f.scheduler.Cancel(f.ctx, target, CancelAll))
	assert.Equal(t, 0, f.scheduler.Len())
}

func TestCancel_UnmatchedTargetLeavesQueueUntouched(t *testing.T) {
	f := newFixture(t)
	for _, p := range []int{1, 5, 3} {
		_, err := f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_SCV", p)
		require.NoError(t, err)
	}
	before := f.scheduler.Orders()

	assert.Equal(t, 0, f.scheduler.Cancel(f.ctx, production.UnitTarget("Terran_Marine"), CancelAll))
	assert.Equal(t, 0, f.scheduler.Cancel(f.ctx, production.ResearchTarget("Stim_Packs"), CancelOldest))

	assert.Equal(t, 3, f.scheduler.Len())
	assert.Equal(t, before, f.scheduler.Orders())
	for _, o := range before {
		assert.Equal(t, production.StatusCommissioned, o.Status())
	}
}

func TestCancel_InFlightOrderIsAbortedThenDropped(t *testing.T) {
	f := newFixture(t)
	orders, err := f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_SCV", 1)
	require.NoError(t, err)
	require.NotNil(t, f.scheduler.Tick(f.ctx, f.world))

	n := f.scheduler.Cancel(f.ctx, production.UnitTarget("Terran_SCV"), CancelOldest)

	assert.Equal(t, 1, n)
	assert.Equal(t, production.StatusAborted, orders[0].Status())
	assert.Nil(t, f.scheduler.InFlight())
}

func TestRequeue_OrderedBackToCommissioned(t *testing.T) {
	f := newFixture(t)
	orders, err := f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_SCV", 1)
	require.NoError(t, err)
	require.NotNil(t, f.scheduler.Tick(f.ctx, f.world))

	require.NoError(t, f.scheduler.Requeue(f.ctx, orders[0].ID(), production.ReasonDispatchFailed))

	assert.Equal(t, production.StatusCommissioned, orders[0].Status())
	assert.Error(t, f.scheduler.Requeue(f.ctx, orders[0].ID(), production.ReasonDispatchFailed))

	var notFound *production.ErrOrderNotFound
	assert.ErrorAs(t, f.scheduler.Requeue(f.ctx, "missing", "x"), &notFound)
}

func TestOrders_StaySortedAfterInsertAndRemove(t *testing.T) {
	f := newFixture(t)
	for _, p := range []int{2, 8, 2, 5, 8} {
		_, err := f.scheduler.SubmitUnit(f.ctx, f.world, "Terran_SCV", p)
		require.NoError(t, err)
	}
	f.scheduler.Cancel(f.ctx, production.UnitTarget("Terran_SCV"), CancelOldest)

	orders := f.scheduler.Orders()
	for i := 1; i < len(orders); i++ {
		assert.True(t, production.Less(orders[i-1], orders[i]))
	}
	assert.Contains(t, f.scheduler.Describe(), "production queue (4)")
}
