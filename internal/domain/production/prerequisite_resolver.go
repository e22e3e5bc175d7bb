package production

import (
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
)

// Ownership answers whether the player owns a completed unit of a type
type Ownership interface {
	OwnsCompleted(t techtree.UnitType) bool
}

// PrerequisiteResolver computes which unit types must exist before a target
// can be produced. It is stateless and only reads the catalog.
type PrerequisiteResolver struct {
	catalog *techtree.Catalog
}

// NewPrerequisiteResolver creates a resolver over a catalog
func NewPrerequisiteResolver(catalog *techtree.Catalog) *PrerequisiteResolver {
	return &PrerequisiteResolver{catalog: catalog}
}

// Requirements returns the producer type followed by the support types of the
// target, without duplicates. For upgrades the requirement is the one of the
// requested level.
func (r *PrerequisiteResolver) Requirements(target Target) ([]techtree.UnitType, error) {
	var types []techtree.UnitType

	switch target.Kind {
	case KindProduceUnit:
		spec, err := r.catalog.Unit(target.Unit)
		if err != nil {
			return nil, err
		}
		types = append(types, spec.BuiltBy)
		types = append(types, spec.Requires...)
	case KindResearch:
		spec, err := r.catalog.Tech(target.Tech)
		if err != nil {
			return nil, err
		}
		types = append(types, spec.ResearchedAt, spec.Requires)
	case KindUpgrade:
		spec, err := r.catalog.Upgrade(target.Upgrade)
		if err != nil {
			return nil, err
		}
		level, err := spec.Level(target.Level)
		if err != nil {
			return nil, err
		}
		types = append(types, spec.UpgradedAt, level.Requires)
	default:
		return nil, target.Validate()
	}

	return dedupe(types), nil
}

// Missing returns the requirements of target that are not owned and completed
func (r *PrerequisiteResolver) Missing(target Target, owned Ownership) ([]techtree.UnitType, error) {
	reqs, err := r.Requirements(target)
	if err != nil {
		return nil, err
	}
	var missing []techtree.UnitType
	for _, t := range reqs {
		if !owned.OwnsCompleted(t) {
			missing = append(missing, t)
		}
	}
	return missing, nil
}

// Backfill returns the unit types that must be queued so that target can
// eventually be produced, deepest requirement first. Types that are owned and
// completed, or for which queued returns true, are skipped along with their
// own requirements.
func (r *PrerequisiteResolver) Backfill(target Target, owned Ownership, queued func(techtree.UnitType) bool) ([]techtree.UnitType, error) {
	var out []techtree.UnitType
	planned := make(map[techtree.UnitType]bool)
	visiting := make(map[techtree.UnitType]bool)

	var visit func(t techtree.UnitType, chain []string) error
	visit = func(t techtree.UnitType, chain []string) error {
		if planned[t] || owned.OwnsCompleted(t) || queued(t) {
			return nil
		}
		if visiting[t] {
			return &ErrCircularRequirement{Type: string(t), Chain: extend(chain, string(t))}
		}
		visiting[t] = true
		defer delete(visiting, t)

		reqs, err := r.Requirements(UnitTarget(t))
		if err != nil {
			return err
		}
		for _, req := range reqs {
			if err := visit(req, extend(chain, string(t))); err != nil {
				return err
			}
		}
		planned[t] = true
		out = append(out, t)
		return nil
	}

	reqs, err := r.Requirements(target)
	if err != nil {
		return nil, err
	}
	for _, req := range reqs {
		if err := visit(req, []string{target.Name()}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func extend(chain []string, name string) []string {
	out := make([]string, len(chain), len(chain)+1)
	copy(out, chain)
	return append(out, name)
}

func dedupe(types []techtree.UnitType) []techtree.UnitType {
	seen := make(map[techtree.UnitType]bool, len(types))
	out := make([]techtree.UnitType, 0, len(types))
	for _, t := range types {
		if t.IsNone() || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
