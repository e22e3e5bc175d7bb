package techtree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_LoadsTerranTree(t *testing.T) {
	c := DefaultCatalog()

	marine, err := c.Unit("Terran_Marine")
	require.NoError(t, err)
	assert.Equal(t, UnitType("Terran_Barracks"), marine.BuiltBy)
	assert.Equal(t, 50, marine.Price.Minerals)
	assert.Equal(t, 2, marine.SupplyRequired)

	stim, err := c.Tech("Stim_Packs")
	require.NoError(t, err)
	assert.Equal(t, UnitType("Terran_Academy"), stim.ResearchedAt)

	weapons, err := c.Upgrade("Terran_Infantry_Weapons")
	require.NoError(t, err)
	assert.Equal(t, 3, weapons.MaxLevel())
	lvl2, err := weapons.Level(2)
	require.NoError(t, err)
	assert.Equal(t, UnitType("Terran_Science_Facility"), lvl2.Requires)
	assert.Equal(t, 175, lvl2.Price.Minerals)

	assert.Equal(t, UnitType("Terran_SCV"), c.WorkerType())
}

func TestCatalog_UnknownTypesReturnTypedErrors(t *testing.T) {
	c := DefaultCatalog()

	_, err := c.Unit("Zerg_Zergling")
	var unknown *ErrUnknownType
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "unit", unknown.Kind)

	_, err = c.Tech("Lurker_Aspect")
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "tech", unknown.Kind)

	_, err = c.Upgrade("Zerg_Carapace")
	require.ErrorAs(t, err, &unknown)
}

func TestUpgradeSpec_LevelOutOfRange(t *testing.T) {
	weapons, err := DefaultCatalog().Upgrade("Terran_Infantry_Weapons")
	require.NoError(t, err)

	for _, level := range []int{0, 4, -1} {
		_, err := weapons.Level(level)
		var invalid *ErrInvalidLevel
		assert.ErrorAs(t, err, &invalid, "level %d", level)
	}
}

func TestCatalog_IsWorkerBuilt(t *testing.T) {
	c := DefaultCatalog()

	assert.True(t, c.IsWorkerBuilt("Terran_Barracks"))
	assert.True(t, c.IsWorkerBuilt("Terran_Supply_Depot"))
	assert.False(t, c.IsWorkerBuilt("Terran_Machine_Shop"), "add-ons are built by their parent building")
	assert.False(t, c.IsWorkerBuilt("Terran_Marine"))
	assert.False(t, c.IsWorkerBuilt("Unknown"))
}

func TestLoadCatalog_RejectsUnknownReferences(t *testing.T) {
	data := `
units:
  - name: Worker
    worker: true
  - name: Hut
    built_by: Worker
    requires: [Castle]
    building: true
`
	_, err := LoadCatalog(strings.NewReader(data))

	var invalid *ErrInvalidCatalog
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "Hut", invalid.Entry)
}

func TestLoadCatalog_RejectsUnknownFields(t *testing.T) {
	_, err := LoadCatalog(strings.NewReader("units:\n  - name: Worker\n    speed: 4\n"))
	assert.Error(t, err)
}

func TestPrice_CoveredBy(t *testing.T) {
	p := Price{Minerals: 100, Gas: 50}

	assert.True(t, p.CoveredBy(100, 50))
	assert.False(t, p.CoveredBy(99, 500))
	assert.False(t, p.CoveredBy(500, 49))
}
