package techtree

import "fmt"

// ErrUnknownType is returned when a type name is not in the catalog
type ErrUnknownType struct {
	Kind string
	Name string
}

func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown %s type %q", e.Kind, e.Name)
}

// ErrInvalidLevel is returned for an upgrade level outside 1..MaxLevel
type ErrInvalidLevel struct {
	Upgrade  UpgradeType
	Level    int
	MaxLevel int
}

func (e *ErrInvalidLevel) Error() string {
	return fmt.Sprintf("upgrade %s has no level %d (max %d)", e.Upgrade, e.Level, e.MaxLevel)
}

// ErrInvalidCatalog is returned when catalog data references undefined types
// or is otherwise inconsistent
type ErrInvalidCatalog struct {
	Entry  string
	Reason string
}

func (e *ErrInvalidCatalog) Error() string {
	return fmt.Sprintf("invalid catalog entry %s: %s", e.Entry, e.Reason)
}
