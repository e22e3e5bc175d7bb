package techtree

import "sort"

// Catalog is the read-only registry of everything a player can produce.
// It answers "what builds X", "what does X require" and "what does X cost".
type Catalog struct {
	units    map[UnitType]UnitSpec
	techs    map[TechType]TechSpec
	upgrades map[UpgradeType]UpgradeSpec
}

// NewCatalog validates the definitions and builds a catalog from them
func NewCatalog(units []UnitSpec, techs []TechSpec, upgrades []UpgradeSpec) (*Catalog, error) {
	c := &Catalog{
		units:    make(map[UnitType]UnitSpec, len(units)),
		techs:    make(map[TechType]TechSpec, len(techs)),
		upgrades: make(map[UpgradeType]UpgradeSpec, len(upgrades)),
	}

	for _, u := range units {
		if u.Type.IsNone() {
			return nil, &ErrInvalidCatalog{Entry: "unit", Reason: "missing name"}
		}
		if _, dup := c.units[u.Type]; dup {
			return nil, &ErrInvalidCatalog{Entry: string(u.Type), Reason: "defined twice"}
		}
		c.units[u.Type] = u
	}
	for _, t := range techs {
		if t.Type.IsNone() {
			return nil, &ErrInvalidCatalog{Entry: "tech", Reason: "missing name"}
		}
		c.techs[t.Type] = t
	}
	for _, u := range upgrades {
		if u.Type.IsNone() {
			return nil, &ErrInvalidCatalog{Entry: "upgrade", Reason: "missing name"}
		}
		if len(u.Levels) == 0 {
			return nil, &ErrInvalidCatalog{Entry: string(u.Type), Reason: "no levels"}
		}
		c.upgrades[u.Type] = u
	}

	if err := c.validateReferences(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validateReferences() error {
	known := func(t UnitType) bool {
		if t.IsNone() {
			return true
		}
		_, ok := c.units[t]
		return ok
	}

	for _, u := range c.units {
		if !known(u.BuiltBy) {
			return &ErrInvalidCatalog{Entry: string(u.Type), Reason: "built by unknown type " + string(u.BuiltBy)}
		}
		for _, req := range u.Requires {
			if !known(req) {
				return &ErrInvalidCatalog{Entry: string(u.Type), Reason: "requires unknown type " + string(req)}
			}
		}
	}
	for _, t := range c.techs {
		if t.ResearchedAt.IsNone() || !known(t.ResearchedAt) {
			return &ErrInvalidCatalog{Entry: string(t.Type), Reason: "researched at unknown type " + string(t.ResearchedAt)}
		}
		if !known(t.Requires) {
			return &ErrInvalidCatalog{Entry: string(t.Type), Reason: "requires unknown type " + string(t.Requires)}
		}
	}
	for _, u := range c.upgrades {
		if u.UpgradedAt.IsNone() || !known(u.UpgradedAt) {
			return &ErrInvalidCatalog{Entry: string(u.Type), Reason: "upgraded at unknown type " + string(u.UpgradedAt)}
		}
		for _, lvl := range u.Levels {
			if !known(lvl.Requires) {
				return &ErrInvalidCatalog{Entry: string(u.Type), Reason: "requires unknown type " + string(lvl.Requires)}
			}
		}
	}
	return nil
}

// Unit looks up a unit or building type
func (c *Catalog) Unit(t UnitType) (UnitSpec, error) {
	spec, ok := c.units[t]
	if !ok {
		return UnitSpec{}, &ErrUnknownType{Kind: "unit", Name: string(t)}
	}
	return spec, nil
}

// Tech looks up a research
func (c *Catalog) Tech(t TechType) (TechSpec, error) {
	spec, ok := c.techs[t]
	if !ok {
		return TechSpec{}, &ErrUnknownType{Kind: "tech", Name: string(t)}
	}
	return spec, nil
}

// Upgrade looks up a levelled upgrade
func (c *Catalog) Upgrade(t UpgradeType) (UpgradeSpec, error) {
	spec, ok := c.upgrades[t]
	if !ok {
		return UpgradeSpec{}, &ErrUnknownType{Kind: "upgrade", Name: string(t)}
	}
	return spec, nil
}

// IsWorkerBuilt reports whether t is a structure placed by a worker.
// Such a structure never waits for an idle producer: any spare worker can start it.
func (c *Catalog) IsWorkerBuilt(t UnitType) bool {
	spec, ok := c.units[t]
	if !ok || !spec.IsBuilding || spec.BuiltBy.IsNone() {
		return false
	}
	producer, ok := c.units[spec.BuiltBy]
	return ok && producer.IsWorker
}

// Units returns every unit spec sorted by name
func (c *Catalog) Units() []UnitSpec {
	out := make([]UnitSpec, 0, len(c.units))
	for _, u := range c.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Techs returns every tech spec sorted by name
func (c *Catalog) Techs() []TechSpec {
	out := make([]TechSpec, 0, len(c.techs))
	for _, t := range c.techs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Upgrades returns every upgrade spec sorted by name
func (c *Catalog) Upgrades() []UpgradeSpec {
	out := make([]UpgradeSpec, 0, len(c.upgrades))
	for _, u := range c.upgrades {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// WorkerType returns the first worker type in name order, or None
func (c *Catalog) WorkerType() UnitType {
	for _, u := range c.Units() {
		if u.IsWorker {
			return u.Type
		}
	}
	return None
}
