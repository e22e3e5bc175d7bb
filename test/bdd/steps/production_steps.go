package steps

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/rtsbot-go/internal/adapters/sandbox"
	appproduction "github.com/andrescamacho/rtsbot-go/internal/application/production"
	"github.com/andrescamacho/rtsbot-go/internal/domain/production"
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
	"github.com/andrescamacho/rtsbot-go/test/helpers"
)

type productionContext struct {
	ctx       context.Context
	world     *sandbox.World
	cc        shared.UnitID
	scheduler *appproduction.Scheduler
	admitted  *production.Order
	submitted []*production.Order
	cancelled int
	err       error
}

func (pc *productionContext) reset() {
	pc.ctx = context.Background()
	pc.world = nil
	pc.cc = shared.NoUnit
	pc.scheduler = appproduction.NewScheduler(techtree.DefaultCatalog())
	pc.admitted = nil
	pc.submitted = nil
	pc.cancelled = 0
	pc.err = nil
}

func InitializeProductionScenario(sc *godog.ScenarioContext) {
	pc := &productionContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		pc.reset()
		return ctx, nil
	})

	sc.Step(`^an opening position with (\d+) minerals and (\d+) gas$`, pc.anOpeningPosition)
	sc.Step(`^I own a completed "([^"]*)"$`, pc.iOwnACompleted)
	sc.Step(`^"([^"]*)" is at level (\d+)$`, pc.upgradeIsAtLevel)
	sc.Step(`^I submit "([^"]*)" at priority (\d+)$`, pc.iSubmitUnit)
	sc.Step(`^I submit "([^"]*)" at priority (\d+) without prerequisites$`, pc.iSubmitUnitWithoutPrerequisites)
	sc.Step(`^I submit research "([^"]*)" at priority (\d+)$`, pc.iSubmitResearch)
	sc.Step(`^I submit upgrade "([^"]*)" level (\d+) at priority (\d+)$`, pc.iSubmitUpgrade)
	sc.Step(`^the scheduler ticks$`, pc.theSchedulerTicks)
	sc.Step(`^the scheduler ticks (\d+) times$`, pc.theSchedulerTicksTimes)
	sc.Step(`^the admitted order is dispatched$`, pc.theAdmittedOrderIsDispatched)
	sc.Step(`^the unit being produced is destroyed$`, pc.theUnitBeingProducedIsDestroyed)
	sc.Step(`^(\d+) frames pass$`, pc.framesPass)
	sc.Step(`^I cancel every "([^"]*)"$`, pc.iCancelEvery)
	sc.Step(`^I cancel the oldest "([^"]*)"$`, pc.iCancelTheOldest)

	sc.Step(`^the admitted order should be "([^"]*)" at priority (\d+)$`, pc.theAdmittedOrderShouldBe)
	sc.Step(`^no order should be admitted$`, pc.noOrderShouldBeAdmitted)
	sc.Step(`^exactly (\d+) orders? should be "([^"]*)"$`, pc.exactlyOrdersShouldBe)
	sc.Step(`^the queue should contain in order:$`, pc.theQueueShouldContainInOrder)
	sc.Step(`^the queue should be empty$`, pc.theQueueShouldBeEmpty)
	sc.Step(`^(\d+) orders? should have been cancelled$`, pc.ordersShouldHaveBeenCancelled)
	sc.Step(`^no order should have been added$`, pc.noOrderShouldHaveBeenAdded)
	sc.Step(`^the first submitted order should be "([^"]*)" with (\d+) interruptions?$`, pc.theFirstSubmittedOrderShouldBe)
}

func (pc *productionContext) anOpeningPosition(minerals, gas int) error {
	pc.world, pc.cc = helpers.NewStandardWorld(minerals, gas, 0)
	return nil
}

func (pc *productionContext) iOwnACompleted(unitType string) error {
	// keep new buildings clear of each other
	n := len(pc.world.MyUnits(world.UnitFilter{}))
	pc.world.Spawn(techtree.UnitType(unitType), shared.NewTilePosition(30+4*n, 40), true)
	return nil
}

func (pc *productionContext) upgradeIsAtLevel(upgrade string, level int) error {
	pc.world.SetUpgradeLevel(techtree.UpgradeType(upgrade), level)
	return nil
}

func (pc *productionContext) record(orders []*production.Order, err error) error {
	pc.err = err
	pc.submitted = append(pc.submitted, orders...)
	if err != nil {
		return fmt.Errorf("submission failed: %w", err)
	}
	if len(orders) == 0 {
		pc.submitted = append(pc.submitted, nil)
	}
	return nil
}

func (pc *productionContext) iSubmitUnit(unitType string, priority int) error {
	return pc.record(pc.scheduler.SubmitUnit(pc.ctx, pc.world, techtree.UnitType(unitType), priority))
}

func (pc *productionContext) iSubmitUnitWithoutPrerequisites(unitType string, priority int) error {
	return pc.record(pc.scheduler.SubmitUnit(pc.ctx, pc.world, techtree.UnitType(unitType), priority, appproduction.WithoutPrerequisites()))
}

func (pc *productionContext) iSubmitResearch(tech string, priority int) error {
	return pc.record(pc.scheduler.SubmitResearch(pc.ctx, pc.world, techtree.TechType(tech), priority))
}

func (pc *productionContext) iSubmitUpgrade(upgrade string, level, priority int) error {
	return pc.record(pc.scheduler.SubmitUpgrade(pc.ctx, pc.world, techtree.UpgradeType(upgrade), level, priority))
}

func (pc *productionContext) theSchedulerTicks() error {
	pc.admitted = pc.scheduler.Tick(pc.ctx, pc.world)
	return nil
}

func (pc *productionContext) theSchedulerTicksTimes(n int) error {
	pc.admitted = nil
	for i := 0; i < n; i++ {
		if o := pc.scheduler.Tick(pc.ctx, pc.world); o != nil {
			pc.admitted = o
		}
	}
	return nil
}

// theAdmittedOrderIsDispatched plays the dispatcher's part on the sandbox
// and delivers the resulting events
func (pc *productionContext) theAdmittedOrderIsDispatched() error {
	o := pc.admitted
	if o == nil {
		return fmt.Errorf("no order was admitted")
	}
	target := o.Target()
	var err error
	switch target.Kind {
	case production.KindProduceUnit:
		err = pc.world.Train(pc.cc, target.Unit)
	case production.KindResearch:
		spec, specErr := techtree.DefaultCatalog().Tech(target.Tech)
		if specErr != nil {
			return specErr
		}
		producer, ok := world.FirstIdleCompleted(pc.world, spec.ResearchedAt)
		if !ok {
			return fmt.Errorf("no idle %s", spec.ResearchedAt)
		}
		err = pc.world.Research(producer.ID, target.Tech)
	case production.KindUpgrade:
		spec, specErr := techtree.DefaultCatalog().Upgrade(target.Upgrade)
		if specErr != nil {
			return specErr
		}
		producer, ok := world.FirstIdleCompleted(pc.world, spec.UpgradedAt)
		if !ok {
			return fmt.Errorf("no idle %s", spec.UpgradedAt)
		}
		err = pc.world.Upgrade(producer.ID, target.Upgrade)
	}
	if err != nil {
		return err
	}
	pc.deliverEvents()
	return nil
}

func (pc *productionContext) deliverEvents() {
	for _, ev := range pc.world.DrainEvents() {
		switch ev.Type {
		case world.UnitCreated, world.UnitMorphStarted:
			pc.scheduler.OnUnitStarted(pc.ctx, pc.world, ev.Unit)
		case world.UnitDestroyed:
			pc.scheduler.OnUnitDestroyed(pc.ctx, pc.world, ev.Unit)
		}
	}
}

func (pc *productionContext) theUnitBeingProducedIsDestroyed() error {
	for _, o := range pc.scheduler.Orders() {
		if o.IsStatus(production.StatusStarted) && !o.StartedUnit().IsZero() {
			pc.world.Kill(o.StartedUnit())
			pc.deliverEvents()
			return nil
		}
	}
	return fmt.Errorf("no started order has a unit")
}

func (pc *productionContext) framesPass(n int) error {
	pc.world.Step(n)
	pc.deliverEvents()
	return nil
}

func (pc *productionContext) iCancelEvery(unitType string) error {
	pc.cancelled = pc.scheduler.Cancel(pc.ctx, production.UnitTarget(techtree.UnitType(unitType)), appproduction.CancelAll)
	return nil
}

func (pc *productionContext) iCancelTheOldest(unitType string) error {
	pc.cancelled = pc.scheduler.Cancel(pc.ctx, production.UnitTarget(techtree.UnitType(unitType)), appproduction.CancelOldest)
	return nil
}

func (pc *productionContext) theAdmittedOrderShouldBe(name string, priority int) error {
	if pc.admitted == nil {
		return fmt.Errorf("expected %s to be admitted, got nothing", name)
	}
	if got := pc.admitted.Target().Name(); got != name {
		return fmt.Errorf("expected %s to be admitted, got %s", name, got)
	}
	if pc.admitted.Priority() != priority {
		return fmt.Errorf("expected priority %d, got %d", priority, pc.admitted.Priority())
	}
	return nil
}

func (pc *productionContext) noOrderShouldBeAdmitted() error {
	if pc.admitted != nil {
		return fmt.Errorf("expected no admission, got %s", pc.admitted)
	}
	return nil
}

func (pc *productionContext) exactlyOrdersShouldBe(n int, status string) error {
	count := 0
	for _, o := range pc.scheduler.Orders() {
		if o.IsStatus(production.OrderStatus(status)) {
			count++
		}
	}
	if count != n {
		return fmt.Errorf("expected %d %s orders, got %d\n%s", n, status, count, pc.scheduler.Describe())
	}
	return nil
}

func (pc *productionContext) theQueueShouldContainInOrder(table *godog.Table) error {
	orders := pc.scheduler.Orders()
	rows := table.Rows[1:]
	if len(rows) != len(orders) {
		return fmt.Errorf("expected %d orders, got %d\n%s", len(rows), len(orders), pc.scheduler.Describe())
	}
	for i, row := range rows {
		o := orders[i]
		if want := getCellValue(table, row, "target"); o.Target().Name() != want {
			return fmt.Errorf("row %d: expected target %s, got %s", i+1, want, o.Target().Name())
		}
		if level := getCellValue(table, row, "level"); level != "" {
			want, err := strconv.Atoi(level)
			if err != nil {
				return err
			}
			if o.Target().Level != want {
				return fmt.Errorf("row %d: expected level %d, got %d", i+1, want, o.Target().Level)
			}
		}
		want, err := strconv.Atoi(getCellValue(table, row, "priority"))
		if err != nil {
			return err
		}
		if o.Priority() != want {
			return fmt.Errorf("row %d: expected priority %d, got %d", i+1, want, o.Priority())
		}
		if status := getCellValue(table, row, "status"); status != "" && string(o.Status()) != status {
			return fmt.Errorf("row %d: expected status %s, got %s", i+1, status, o.Status())
		}
	}
	return nil
}

func (pc *productionContext) theQueueShouldBeEmpty() error {
	if n := pc.scheduler.Len(); n != 0 {
		return fmt.Errorf("expected an empty queue, got %d orders\n%s", n, pc.scheduler.Describe())
	}
	return nil
}

func (pc *productionContext) ordersShouldHaveBeenCancelled(n int) error {
	if pc.cancelled != n {
		return fmt.Errorf("expected %d cancelled, got %d", n, pc.cancelled)
	}
	return nil
}

func (pc *productionContext) noOrderShouldHaveBeenAdded() error {
	if len(pc.submitted) == 0 || pc.submitted[len(pc.submitted)-1] != nil {
		return fmt.Errorf("expected the last submission to add nothing")
	}
	return nil
}

func (pc *productionContext) theFirstSubmittedOrderShouldBe(status string, interruptions int) error {
	if len(pc.submitted) == 0 || pc.submitted[0] == nil {
		return fmt.Errorf("nothing was submitted")
	}
	o := pc.submitted[0]
	if string(o.Status()) != status {
		return fmt.Errorf("expected %s, got %s", status, o.Status())
	}
	if o.Interruptions() != interruptions {
		return fmt.Errorf("expected %d interruptions, got %d", interruptions, o.Interruptions())
	}
	return nil
}
