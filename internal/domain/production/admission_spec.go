package production

import (
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
)

// GateResult is the outcome of evaluating an order's admission gates
type GateResult string

const (
	GatePassed               GateResult = "PASSED"
	GatePrerequisitesMissing GateResult = "PREREQUISITES_MISSING"
	GateProducerBusy         GateResult = "PRODUCER_BUSY"
	GateUnaffordable         GateResult = "UNAFFORDABLE"
	GateSupplyBlocked        GateResult = "SUPPLY_BLOCKED"
	GateUnknownTarget        GateResult = "UNKNOWN_TARGET"
)

// Passed reports whether every gate passed
func (g GateResult) Passed() bool {
	return g == GatePassed
}

// HaltsScan reports whether a failure of this gate stops the scheduler from
// looking at lower-ranked orders. Only affordability does: resources are
// saved for the highest-ranked order that cannot be paid for yet.
func (g GateResult) HaltsScan() bool {
	return g == GateUnaffordable
}

// AdmissionSpecification encapsulates the rules deciding whether a
// commissioned order may be handed to the dispatcher this tick.
type AdmissionSpecification struct {
	catalog  *techtree.Catalog
	resolver *PrerequisiteResolver
}

// NewAdmissionSpecification creates a new specification
func NewAdmissionSpecification(catalog *techtree.Catalog, resolver *PrerequisiteResolver) *AdmissionSpecification {
	return &AdmissionSpecification{catalog: catalog, resolver: resolver}
}

// Evaluate runs the gates in order and reports the first that fails:
// prerequisites, producer, affordability, then supply for unit orders.
func (s *AdmissionSpecification) Evaluate(order *Order, w world.Queries) GateResult {
	target := order.Target()

	if ok, err := s.prerequisitesMet(target, w); err != nil {
		return GateUnknownTarget
	} else if !ok {
		return GatePrerequisitesMissing
	}
	if !s.producerAvailable(target, w) {
		return GateProducerBusy
	}
	if !s.affordable(target, w) {
		return GateUnaffordable
	}
	if target.Kind == KindProduceUnit && !s.supplyAvailable(target, w) {
		return GateSupplyBlocked
	}
	return GatePassed
}

// Assess evaluates every gate without short-circuiting. The scheduler logs
// it when an order blocks the queue; admission itself uses Evaluate.
func (s *AdmissionSpecification) Assess(order *Order, w world.Queries) []GateResult {
	target := order.Target()
	var failed []GateResult

	ok, err := s.prerequisitesMet(target, w)
	if err != nil {
		return []GateResult{GateUnknownTarget}
	}
	if !ok {
		failed = append(failed, GatePrerequisitesMissing)
	}
	if !s.producerAvailable(target, w) {
		failed = append(failed, GateProducerBusy)
	}
	if !s.affordable(target, w) {
		failed = append(failed, GateUnaffordable)
	}
	if target.Kind == KindProduceUnit && !s.supplyAvailable(target, w) {
		failed = append(failed, GateSupplyBlocked)
	}
	return failed
}

// prerequisitesMet also requires upgrade levels to be reached one at a time:
// level N can only start once level N-1 is done.
func (s *AdmissionSpecification) prerequisitesMet(target Target, w world.Queries) (bool, error) {
	missing, err := s.resolver.Missing(target, world.Ownership{Q: w})
	if err != nil {
		return false, err
	}
	if target.Kind == KindUpgrade && target.Level > w.UpgradeLevel(target.Upgrade)+1 {
		return false, nil
	}
	return len(missing) == 0, nil
}

// producerAvailable checks for an idle, completed producer. Worker-built
// structures are always available: the construction tracker finds the worker.
func (s *AdmissionSpecification) producerAvailable(target Target, w world.Queries) bool {
	switch target.Kind {
	case KindProduceUnit:
		if s.catalog.IsWorkerBuilt(target.Unit) {
			return true
		}
		spec, err := s.catalog.Unit(target.Unit)
		if err != nil {
			return false
		}
		_, ok := world.FirstIdleCompleted(w, spec.BuiltBy)
		return ok
	case KindResearch:
		spec, err := s.catalog.Tech(target.Tech)
		if err != nil {
			return false
		}
		_, ok := world.FirstIdleCompleted(w, spec.ResearchedAt)
		return ok
	case KindUpgrade:
		spec, err := s.catalog.Upgrade(target.Upgrade)
		if err != nil {
			return false
		}
		_, ok := world.FirstIdleCompleted(w, spec.UpgradedAt)
		return ok
	default:
		return false
	}
}

func (s *AdmissionSpecification) affordable(target Target, w world.Queries) bool {
	price, err := s.PriceOf(target)
	if err != nil {
		return false
	}
	return price.CoveredBy(w.Minerals(), w.Gas())
}

func (s *AdmissionSpecification) supplyAvailable(target Target, w world.Queries) bool {
	spec, err := s.catalog.Unit(target.Unit)
	if err != nil {
		return false
	}
	return w.SupplyUsed()+spec.SupplyRequired <= w.SupplyTotal()
}

// PriceOf returns the cost of a target at its requested level
func (s *AdmissionSpecification) PriceOf(target Target) (techtree.Price, error) {
	switch target.Kind {
	case KindProduceUnit:
		spec, err := s.catalog.Unit(target.Unit)
		if err != nil {
			return techtree.Price{}, err
		}
		return spec.Price, nil
	case KindResearch:
		spec, err := s.catalog.Tech(target.Tech)
		if err != nil {
			return techtree.Price{}, err
		}
		return spec.Price, nil
	case KindUpgrade:
		spec, err := s.catalog.Upgrade(target.Upgrade)
		if err != nil {
			return techtree.Price{}, err
		}
		level, err := spec.Level(target.Level)
		if err != nil {
			return techtree.Price{}, err
		}
		return level.Price, nil
	default:
		return techtree.Price{}, target.Validate()
	}
}
