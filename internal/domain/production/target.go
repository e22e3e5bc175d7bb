package production

import (
	"fmt"

	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
)

// OrderKind is the variant tag of an order
type OrderKind string

const (
	// KindProduceUnit - train a unit or construct a building
	KindProduceUnit OrderKind = "PRODUCE_UNIT"

	// KindResearch - research a one-shot tech
	KindResearch OrderKind = "RESEARCH"

	// KindUpgrade - raise an upgrade to a specific level
	KindUpgrade OrderKind = "UPGRADE"
)

// Target is what an order produces. Exactly one of Unit, Tech or Upgrade is
// set, selected by Kind. Two orders with equal targets are duplicates.
type Target struct {
	Kind    OrderKind
	Unit    techtree.UnitType
	Tech    techtree.TechType
	Upgrade techtree.UpgradeType
	Level   int
}

// UnitTarget targets one unit or building of type t
func UnitTarget(t techtree.UnitType) Target {
	return Target{Kind: KindProduceUnit, Unit: t}
}

// ResearchTarget targets a tech
func ResearchTarget(t techtree.TechType) Target {
	return Target{Kind: KindResearch, Tech: t}
}

// UpgradeTarget targets level of an upgrade
func UpgradeTarget(u techtree.UpgradeType, level int) Target {
	return Target{Kind: KindUpgrade, Upgrade: u, Level: level}
}

// Name returns the produced type name regardless of kind
func (t Target) Name() string {
	switch t.Kind {
	case KindProduceUnit:
		return string(t.Unit)
	case KindResearch:
		return string(t.Tech)
	case KindUpgrade:
		return string(t.Upgrade)
	default:
		return ""
	}
}

// Equals compares target identity
func (t Target) Equals(other Target) bool {
	return t == other
}

func (t Target) String() string {
	if t.Kind == KindUpgrade {
		return fmt.Sprintf("%s %s L%d", t.Kind, t.Upgrade, t.Level)
	}
	return fmt.Sprintf("%s %s", t.Kind, t.Name())
}

// Validate rejects targets with a missing name or an impossible level
func (t Target) Validate() error {
	switch t.Kind {
	case KindProduceUnit, KindResearch:
		if t.Name() == "" {
			return &ErrInvalidTarget{Target: t, Reason: "type name is empty"}
		}
	case KindUpgrade:
		if t.Upgrade.IsNone() {
			return &ErrInvalidTarget{Target: t, Reason: "type name is empty"}
		}
		if t.Level < 1 {
			return &ErrInvalidTarget{Target: t, Reason: "upgrade level must be at least 1"}
		}
	default:
		return &ErrInvalidTarget{Target: t, Reason: "unknown order kind"}
	}
	return nil
}
