package steps

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/rtsbot-go/internal/adapters/sandbox"
	appconstruction "github.com/andrescamacho/rtsbot-go/internal/application/construction"
	"github.com/andrescamacho/rtsbot-go/internal/domain/construction"
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
	"github.com/andrescamacho/rtsbot-go/test/helpers"
)

type constructionContext struct {
	ctx       context.Context
	world     *sandbox.World
	tracker   *appconstruction.JobTracker
	job       *construction.Job
	building  shared.UnitID
	builders  []shared.UnitID // every builder the current job has had
	err       error
}

func (cc *constructionContext) reset() {
	cc.ctx = context.Background()
	cc.world = nil
	cc.tracker = appconstruction.NewJobTracker(techtree.DefaultCatalog())
	cc.job = nil
	cc.building = shared.NoUnit
	cc.builders = nil
	cc.err = nil
}

func InitializeConstructionScenario(sc *godog.ScenarioContext) {
	cc := &constructionContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		cc.reset()
		return ctx, nil
	})

	sc.Step(`^a mining base with (\d+) minerals where workers travel for (\d+) frames$`, cc.aMiningBase)
	sc.Step(`^the tracker manages (\d+) of the workers$`, cc.theTrackerManagesWorkers)
	sc.Step(`^I request a "([^"]*)" at tile (\d+),(\d+)$`, cc.iRequestAt)
	sc.Step(`^(\d+) frames pass in the base$`, cc.framesPassInTheBase)
	sc.Step(`^the tracker ticks$`, cc.theTrackerTicks)
	sc.Step(`^the current builder is killed$`, cc.theCurrentBuilderIsKilled)
	sc.Step(`^the building under construction is killed$`, cc.theBuildingUnderConstructionIsKilled)
	sc.Step(`^a new worker "([^"]*)" joins the tracker$`, cc.aNewWorkerJoinsTheTracker)
	sc.Step(`^I cancel the job at tile (\d+),(\d+)$`, cc.iCancelTheJobAt)

	sc.Step(`^the request should fail because no worker is spare$`, cc.theRequestShouldFailNoSpare)
	sc.Step(`^the building should be placed$`, cc.theBuildingShouldBePlaced)
	sc.Step(`^the building should be complete$`, cc.theBuildingShouldBeComplete)
	sc.Step(`^the building should still stand unfinished$`, cc.theBuildingShouldStillStandUnfinished)
	sc.Step(`^a different worker should be building it$`, cc.aDifferentWorkerShouldBeBuildingIt)
	sc.Step(`^the job should have no builder$`, cc.theJobShouldHaveNoBuilder)
	sc.Step(`^there should be (\d+) open jobs?$`, cc.thereShouldBeOpenJobs)
	sc.Step(`^(\d+) of (\d+) pooled workers should be reserved$`, cc.pooledWorkersShouldBeReserved)
	sc.Step(`^every builder the job had should be mining$`, cc.everyBuilderShouldBeMining)
}

func (cc *constructionContext) aMiningBase(minerals, travel int) error {
	cc.world, _ = helpers.NewStandardWorld(minerals, 0, travel)
	return nil
}

func (cc *constructionContext) theTrackerManagesWorkers(n int) error {
	workers := helpers.Workers(cc.world)
	if n > len(workers) {
		return fmt.Errorf("only %d workers exist", len(workers))
	}
	for _, id := range workers[:n] {
		cc.tracker.AddWorker(id)
	}
	return nil
}

func (cc *constructionContext) iRequestAt(unitType string, x, y int) error {
	job, err := cc.tracker.AddJob(cc.ctx, cc.world, techtree.UnitType(unitType), shared.NewTilePosition(x, y), "")
	cc.err = err
	if err == nil {
		cc.job = job
		cc.builders = append(cc.builders, job.Builder())
	}
	return nil
}

func (cc *constructionContext) deliverEvents() {
	for _, ev := range cc.world.DrainEvents() {
		switch ev.Type {
		case world.UnitCreated, world.UnitMorphStarted:
			cc.tracker.OnUnitStarted(cc.ctx, cc.world, ev.Unit)
		case world.UnitCompleted:
			cc.tracker.OnUnitCompleted(cc.ctx, cc.world, ev.Unit)
		case world.UnitDestroyed:
			cc.tracker.OnUnitDestroyed(cc.ctx, cc.world, ev.Unit)
		}
	}
	if cc.job != nil {
		if cc.job.HasStarted() {
			cc.building = cc.job.StartedBuilding()
		}
		if b := cc.job.Builder(); !b.IsZero() && b != cc.builders[len(cc.builders)-1] {
			cc.builders = append(cc.builders, b)
		}
	}
}

func (cc *constructionContext) framesPassInTheBase(n int) error {
	for i := 0; i < n; i++ {
		cc.world.Step(1)
		cc.deliverEvents()
	}
	return nil
}

func (cc *constructionContext) theTrackerTicks() error {
	cc.tracker.Tick(cc.ctx, cc.world)
	cc.deliverEvents()
	return nil
}

func (cc *constructionContext) theCurrentBuilderIsKilled() error {
	if cc.job == nil || cc.job.IsOrphaned() {
		return fmt.Errorf("no builder to kill")
	}
	cc.world.Kill(cc.job.Builder())
	cc.deliverEvents()
	return nil
}

func (cc *constructionContext) theBuildingUnderConstructionIsKilled() error {
	if cc.building.IsZero() {
		return fmt.Errorf("nothing has been placed")
	}
	cc.world.Kill(cc.building)
	cc.deliverEvents()
	return nil
}

func (cc *constructionContext) aNewWorkerJoinsTheTracker(tile string) error {
	parts := strings.Split(tile, ",")
	if len(parts) != 2 {
		return fmt.Errorf("tile must be x,y: %q", tile)
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return err
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return err
	}
	id := cc.world.SpawnGatherer(techtree.DefaultCatalog().WorkerType(), shared.NewTilePosition(x, y))
	cc.tracker.AddWorker(id)
	return nil
}

func (cc *constructionContext) iCancelTheJobAt(x, y int) error {
	if cc.job == nil {
		return fmt.Errorf("no job was created")
	}
	if !cc.tracker.CancelJob(cc.ctx, cc.world, cc.job.TargetType(), shared.NewTilePosition(x, y)) {
		return fmt.Errorf("no job at %d,%d", x, y)
	}
	cc.deliverEvents()
	return nil
}

func (cc *constructionContext) theRequestShouldFailNoSpare() error {
	var noWorker *construction.ErrNoSpareWorker
	if cc.err == nil {
		return fmt.Errorf("expected the request to fail")
	}
	if !errors.As(cc.err, &noWorker) {
		return fmt.Errorf("expected ErrNoSpareWorker, got %v", cc.err)
	}
	return nil
}

func (cc *constructionContext) buildingState() (world.Unit, error) {
	if cc.building.IsZero() {
		return world.Unit{}, fmt.Errorf("the building was never placed")
	}
	u, ok := cc.world.Unit(cc.building)
	if !ok {
		return world.Unit{}, fmt.Errorf("building %s no longer exists", cc.building)
	}
	return u, nil
}

func (cc *constructionContext) theBuildingShouldBePlaced() error {
	_, err := cc.buildingState()
	return err
}

func (cc *constructionContext) theBuildingShouldBeComplete() error {
	u, err := cc.buildingState()
	if err != nil {
		return err
	}
	if !u.Completed {
		return fmt.Errorf("building %s is not complete", u.ID)
	}
	return nil
}

func (cc *constructionContext) theBuildingShouldStillStandUnfinished() error {
	u, err := cc.buildingState()
	if err != nil {
		return err
	}
	if u.Completed {
		return fmt.Errorf("building %s completed", u.ID)
	}
	return nil
}

func (cc *constructionContext) aDifferentWorkerShouldBeBuildingIt() error {
	if len(cc.builders) < 2 {
		return fmt.Errorf("the job never changed builder: %v", cc.builders)
	}
	current := cc.job.Builder()
	u, ok := cc.world.Unit(current)
	if !ok || u.Gathering || u.Idle {
		return fmt.Errorf("replacement %s is not working on the job", current)
	}
	return nil
}

func (cc *constructionContext) theJobShouldHaveNoBuilder() error {
	if !cc.job.IsOrphaned() {
		return fmt.Errorf("job still has builder %s", cc.job.Builder())
	}
	return nil
}

func (cc *constructionContext) thereShouldBeOpenJobs(n int) error {
	if got := len(cc.tracker.Jobs()); got != n {
		return fmt.Errorf("expected %d open jobs, got %d", n, got)
	}
	return nil
}

func (cc *constructionContext) pooledWorkersShouldBeReserved(reserved, size int) error {
	pool := cc.tracker.Pool()
	if pool.Size() != size || pool.ReservedCount() != reserved {
		return fmt.Errorf("expected %d of %d reserved, got %d of %d", reserved, size, pool.ReservedCount(), pool.Size())
	}
	return nil
}

func (cc *constructionContext) everyBuilderShouldBeMining() error {
	for _, id := range cc.builders {
		u, ok := cc.world.Unit(id)
		if !ok {
			continue
		}
		if !u.Gathering {
			return fmt.Errorf("builder %s is not mining", id)
		}
	}
	return nil
}
