package production

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
)

func newAdmission() *AdmissionSpecification {
	catalog := techtree.DefaultCatalog()
	return NewAdmissionSpecification(catalog, NewPrerequisiteResolver(catalog))
}

func order(t *testing.T, target Target) *Order {
	t.Helper()
	o, err := NewOrder(target, 1, 1, 0)
	require.NoError(t, err)
	return o
}

func TestEvaluate_GatesInOrder(t *testing.T) {
	spec := newAdmission()
	marine := order(t, UnitTarget("Terran_Marine"))

	w := newStubWorld()
	assert.Equal(t, GatePrerequisitesMissing, spec.Evaluate(marine, w))

	w.own(1, "Terran_Barracks", true, false)
	assert.Equal(t, GateProducerBusy, spec.Evaluate(marine, w), "barracks is training")

	w.units[0].Idle = true
	assert.Equal(t, GateUnaffordable, spec.Evaluate(marine, w))

	w.minerals = 50
	w.supplyUsed, w.supplyTotal = 20, 20
	assert.Equal(t, GateSupplyBlocked, spec.Evaluate(marine, w))

	w.supplyTotal = 22
	assert.Equal(t, GatePassed, spec.Evaluate(marine, w))
}

func TestEvaluate_IncompletePrerequisiteDoesNotCount(t *testing.T) {
	spec := newAdmission()
	w := newStubWorld().own(1, "Terran_Barracks", false, true)
	w.minerals = 1000

	assert.Equal(t, GatePrerequisitesMissing, spec.Evaluate(order(t, UnitTarget("Terran_Marine")), w))
}

func TestEvaluate_WorkerBuiltStructureNeedsNoIdleProducer(t *testing.T) {
	spec := newAdmission()
	w := newStubWorld().
		own(1, "Terran_Command_Center", true, false).
		own(2, "Terran_SCV", true, false)
	w.minerals = 150

	assert.Equal(t, GatePassed, spec.Evaluate(order(t, UnitTarget("Terran_Barracks")), w))
}

func TestEvaluate_SupplyOnlyGatesUnitOrders(t *testing.T) {
	spec := newAdmission()
	w := newStubWorld().own(1, "Terran_Academy", true, true)
	w.minerals, w.gas = 100, 100
	w.supplyUsed, w.supplyTotal = 200, 200

	assert.Equal(t, GatePassed, spec.Evaluate(order(t, ResearchTarget("Stim_Packs")), w))
}

func TestEvaluate_UpgradeUsesLevelPriceAndRequirement(t *testing.T) {
	spec := newAdmission()
	lvl2 := order(t, UpgradeTarget("Terran_Infantry_Weapons", 2))
	w := newStubWorld().own(1, "Terran_Engineering_Bay", true, true)
	w.minerals, w.gas = 175, 175
	w.levels["Terran_Infantry_Weapons"] = 1

	assert.Equal(t, GatePrerequisitesMissing, spec.Evaluate(lvl2, w))

	w.own(2, "Terran_Science_Facility", true, true)
	assert.Equal(t, GatePassed, spec.Evaluate(lvl2, w))

	w.gas = 174
	assert.Equal(t, GateUnaffordable, spec.Evaluate(lvl2, w))
}

func TestAssess_ReportsEveryFailingGate(t *testing.T) {
	spec := newAdmission()
	w := newStubWorld()
	w.supplyUsed, w.supplyTotal = 20, 20

	failed := spec.Assess(order(t, UnitTarget("Terran_Marine")), w)

	assert.Equal(t, []GateResult{GatePrerequisitesMissing, GateProducerBusy, GateUnaffordable, GateSupplyBlocked}, failed)
}

func TestGateResult_OnlyAffordabilityHaltsScan(t *testing.T) {
	assert.True(t, GateUnaffordable.HaltsScan())
	for _, g := range []GateResult{GatePassed, GatePrerequisitesMissing, GateProducerBusy, GateSupplyBlocked} {
		assert.False(t, g.HaltsScan(), string(g))
	}
}

func TestEvaluate_UpgradeLevelsAreSequential(t *testing.T) {
	spec := newAdmission()
	w := newStubWorld().
		own(1, "Terran_Engineering_Bay", true, true).
		own(2, "Terran_Science_Facility", true, true)
	w.minerals, w.gas = 1000, 1000

	assert.Equal(t, GatePrerequisitesMissing, spec.Evaluate(order(t, UpgradeTarget("Terran_Infantry_Weapons", 2)), w))

	w.levels["Terran_Infantry_Weapons"] = 1
	assert.Equal(t, GatePassed, spec.Evaluate(order(t, UpgradeTarget("Terran_Infantry_Weapons", 2)), w))
}
