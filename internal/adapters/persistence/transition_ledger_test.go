package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/rtsbot-go/internal/adapters/persistence"
	appproduction "github.com/andrescamacho/rtsbot-go/internal/application/production"
	"github.com/andrescamacho/rtsbot-go/internal/domain/production"
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
	"github.com/andrescamacho/rtsbot-go/test/helpers"
)

func TestTransitionLedger_RecordsOrderHistory(t *testing.T) {
	ctx := context.Background()
	db := helpers.NewTestDB(t)
	require.NoError(t, persistence.NewGormMatchRepository(db, nil).Start(ctx, "m1", "sandbox", 0, "builtin"))
	ledger := persistence.NewGormTransitionLedger(db, "m1", nil)

	w, _ := helpers.NewStandardWorld(50, 0, 0)
	barracks := w.Spawn("Terran_Barracks", shared.NewTilePosition(40, 40), true)
	scheduler := appproduction.NewScheduler(techtree.DefaultCatalog(), ledger)

	added, err := scheduler.SubmitUnit(ctx, w, "Terran_Marine", 10)
	require.NoError(t, err)
	require.Len(t, added, 1)
	orderID := added[0].ID()

	require.NotNil(t, scheduler.Tick(ctx, w))
	require.NoError(t, w.Train(barracks, "Terran_Marine"))
	for _, ev := range w.DrainEvents() {
		if ev.Type == world.UnitCreated {
			scheduler.OnUnitStarted(ctx, w, ev.Unit)
		}
	}
	marine := added[0].StartedUnit()
	require.True(t, w.Kill(marine))
	for _, ev := range w.DrainEvents() {
		if ev.Type == world.UnitDestroyed {
			scheduler.OnUnitDestroyed(ctx, w, ev.Unit)
		}
	}

	history, err := ledger.ForOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, string(production.StatusCommissioned), history[0].FromStatus)
	assert.Equal(t, string(production.StatusOrdered), history[0].ToStatus)
	assert.Equal(t, string(production.StatusStarted), history[1].ToStatus)
	assert.Equal(t, int(marine), history[1].UnitID)
	assert.Equal(t, string(production.StatusAborted), history[2].ToStatus)
	assert.Equal(t, production.ReasonUnitLost, history[2].Reason)
	assert.Equal(t, string(production.StatusCommissioned), history[3].ToStatus)

	interruptions, err := ledger.Interruptions(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Terran_Marine": 1}, interruptions)

	all, err := ledger.ForMatch(ctx, "m1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
