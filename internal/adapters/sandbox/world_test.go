package sandbox

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
)

func newTestWorld(t *testing.T) (*World, shared.UnitID) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.TravelFrames = 0
	return NewStandardStart(techtree.DefaultCatalog(), cfg)
}

func TestStandardStart(t *testing.T) {
	w, cc := newTestWorld(t)

	workers := w.MyUnits(world.OfType("Terran_SCV"))
	assert.Len(t, workers, 4)
	for _, u := range workers {
		assert.True(t, u.Gathering)
		assert.False(t, u.Idle)
	}
	assert.Equal(t, 20, w.SupplyTotal())
	assert.Equal(t, 8, w.SupplyUsed())

	u, ok := w.Unit(cc)
	require.True(t, ok)
	assert.True(t, u.Completed)
	assert.True(t, u.Idle)
}

func TestTrain_CreatesThenCompletesUnit(t *testing.T) {
	w, cc := newTestWorld(t)

	require.NoError(t, w.Train(cc, "Terran_SCV"))
	assert.Equal(t, 0, w.Minerals())

	events := w.DrainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, world.UnitCreated, events[0].Type)
	assert.False(t, events[0].Unit.Completed)
	trainee := events[0].Unit.ID

	ccState, _ := w.Unit(cc)
	assert.False(t, ccState.Idle)

	w.Step(300)
	events = w.DrainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, world.UnitCompleted, events[0].Type)
	assert.Equal(t, trainee, events[0].Unit.ID)
}

func TestTrain_RejectsWhenBroke(t *testing.T) {
	w, cc := newTestWorld(t)
	w.SetResources(10, 0)

	var rejected *ErrCommandRejected
	assert.ErrorAs(t, w.Train(cc, "Terran_SCV"), &rejected)
	assert.ErrorAs(t, w.Train(cc, "Terran_Marine"), &rejected, "wrong producer")
}

func TestBuild_PlacesAfterTravelAndCompletes(t *testing.T) {
	w, _ := newTestWorld(t)
	w.SetResources(100, 0)
	worker := w.MyUnits(world.OfType("Terran_SCV"))[0].ID
	site := shared.NewTilePosition(20, 20)

	require.NoError(t, w.Build(worker, "Terran_Supply_Depot", site))
	w.Step(1)

	events := w.DrainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, world.UnitCreated, events[0].Type)
	assert.Equal(t, site, events[0].Unit.Tile)
	assert.Equal(t, 0, w.Minerals())
	depot := events[0].Unit.ID

	w.Step(600)
	u, _ := w.Unit(depot)
	assert.True(t, u.Completed)
	assert.Equal(t, 36, w.SupplyTotal())
	builder, _ := w.Unit(worker)
	assert.True(t, builder.Idle)
}

func TestKill_ProducerTakesTraineeAndResearchWithIt(t *testing.T) {
	w, cc := newTestWorld(t)
	w.SetResources(1000, 1000)
	academy := w.Spawn("Terran_Academy", shared.NewTilePosition(30, 30), true)
	require.NoError(t, w.Research(academy, "Stim_Packs"))
	require.NoError(t, w.Train(cc, "Terran_SCV"))
	w.DrainEvents()

	assert.True(t, w.IsResearching("Stim_Packs"))
	require.True(t, w.Kill(academy))
	assert.False(t, w.IsResearching("Stim_Packs"))

	require.True(t, w.Kill(cc))
	events := w.DrainEvents()
	require.Len(t, events, 3)
	assert.Equal(t, techtree.TechType("Stim_Packs"), events[0].Unit.Researching)
	assert.Equal(t, cc, events[1].Unit.ID)
	assert.Equal(t, world.UnitDestroyed, events[2].Type)
}

func TestUpgrade_RaisesLevel(t *testing.T) {
	w, _ := newTestWorld(t)
	w.SetResources(1000, 1000)
	bay := w.Spawn("Terran_Engineering_Bay", shared.NewTilePosition(30, 30), true)

	require.NoError(t, w.Upgrade(bay, "Terran_Infantry_Weapons"))
	assert.True(t, w.IsUpgrading("Terran_Infantry_Weapons"))
	w.Step(4000)

	assert.Equal(t, 1, w.UpgradeLevel("Terran_Infantry_Weapons"))
	assert.False(t, w.IsUpgrading("Terran_Infantry_Weapons"))
}

func TestIncome_FromGatheringWorkers(t *testing.T) {
	w, _ := newTestWorld(t)
	w.SetResources(0, 0)

	w.Step(shared.FramesPerSecond * 10)

	assert.Equal(t, 40, w.Minerals())
}

func TestCommands_MissingUnitIsNotFound(t *testing.T) {
	w, cc := newTestWorld(t)
	scv := w.MyUnits(world.UnitFilter{Types: []techtree.UnitType{"Terran_SCV"}})[0].ID
	const gone shared.UnitID = 9999

	var notFound *shared.UnitNotFoundError
	require.ErrorAs(t, w.Train(gone, "Terran_SCV"), &notFound)
	assert.Equal(t, gone, notFound.UnitID)

	require.ErrorAs(t, w.Resume(scv, gone), &notFound)
	assert.Equal(t, gone, notFound.UnitID)

	require.ErrorAs(t, w.Gather(scv, gone), &notFound)
	assert.Equal(t, gone, notFound.UnitID)

	var rejected *ErrCommandRejected
	assert.False(t, errors.As(w.Gather(scv, cc), &notFound), "an existing unit is found")
	assert.ErrorAs(t, w.Gather(scv, cc), &rejected)
	assert.Contains(t, rejected.Error(), "not a mineral field")
}

func TestFailNextCommand(t *testing.T) {
	w, cc := newTestWorld(t)
	boom := assert.AnError
	w.FailNextCommand(boom)

	assert.ErrorIs(t, w.Train(cc, "Terran_SCV"), boom)
	assert.NoError(t, w.Train(cc, "Terran_SCV"))
}

func TestCanBuildHere(t *testing.T) {
	w, _ := newTestWorld(t)

	assert.False(t, w.CanBuildHere("Terran_Barracks", shared.NewTilePosition(11, 11)), "next to command center")
	assert.False(t, w.CanBuildHere("Terran_Barracks", shared.NewTilePosition(-1, 11)))
	assert.True(t, w.CanBuildHere("Terran_Barracks", shared.NewTilePosition(40, 40)))
}
