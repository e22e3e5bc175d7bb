package cli

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/rtsbot-go/internal/domain/production"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
)

// Requirement roles
const (
	RoleTarget   = "target"
	RoleProducer = "producer"
	RoleRequires = "requires"
)

// RequirementNode is one entry of a prerequisite tree
type RequirementNode struct {
	Name     string
	Role     string
	Price    techtree.Price
	Repeated bool // already expanded elsewhere in the tree
	Cycle    bool // an ancestor of itself, e.g. SCV -> Command Center -> SCV
	Children []*RequirementNode
}

// BuildRequirementTree expands target into the unit types it needs,
// producer first. Each type is expanded once.
func BuildRequirementTree(catalog *techtree.Catalog, target production.Target) (*RequirementNode, error) {
	resolver := production.NewPrerequisiteResolver(catalog)
	price, err := production.NewAdmissionSpecification(catalog, resolver).PriceOf(target)
	if err != nil {
		return nil, err
	}
	root := &RequirementNode{Name: target.Name(), Role: RoleTarget, Price: price}
	if target.Kind == production.KindUpgrade {
		root.Name = fmt.Sprintf("%s L%d", target.Upgrade, target.Level)
	}

	expanded := make(map[techtree.UnitType]bool)
	path := make(map[techtree.UnitType]bool)
	if target.Kind == production.KindProduceUnit {
		path[target.Unit] = true
		expanded[target.Unit] = true
	}

	var expand func(node *RequirementNode, t production.Target) error
	expand = func(node *RequirementNode, t production.Target) error {
		reqs, err := resolver.Requirements(t)
		if err != nil {
			return err
		}
		producer := producerOf(catalog, t)
		for _, req := range reqs {
			spec, err := catalog.Unit(req)
			if err != nil {
				return err
			}
			child := &RequirementNode{Name: string(req), Role: RoleRequires, Price: spec.Price}
			if req == producer {
				child.Role = RoleProducer
			}
			node.Children = append(node.Children, child)

			switch {
			case path[req]:
				child.Cycle = true
			case expanded[req]:
				child.Repeated = true
			default:
				expanded[req] = true
				path[req] = true
				if err := expand(child, production.UnitTarget(req)); err != nil {
					return err
				}
				delete(path, req)
			}
		}
		return nil
	}

	if err := expand(root, target); err != nil {
		return nil, err
	}
	return root, nil
}

func producerOf(catalog *techtree.Catalog, t production.Target) techtree.UnitType {
	switch t.Kind {
	case production.KindProduceUnit:
		if spec, err := catalog.Unit(t.Unit); err == nil {
			return spec.BuiltBy
		}
	case production.KindResearch:
		if spec, err := catalog.Tech(t.Tech); err == nil {
			return spec.ResearchedAt
		}
	case production.KindUpgrade:
		if spec, err := catalog.Upgrade(t.Upgrade); err == nil {
			return spec.UpgradedAt
		}
	}
	return techtree.None
}

// TreeFormatter renders prerequisite trees
type TreeFormatter struct {
	useColors bool
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors bool) *TreeFormatter {
	return &TreeFormatter{useColors: useColors}
}

// FormatTree renders a requirement tree with box-drawing prefixes
func (f *TreeFormatter) FormatTree(root *RequirementNode) string {
	if root == nil {
		return "(empty tree)"
	}

	var builder strings.Builder
	f.formatNode(&builder, root, "", true, true)
	return builder.String()
}

func (f *TreeFormatter) formatNode(builder *strings.Builder, node *RequirementNode, prefix string, isLast bool, isRoot bool) {
	var linePrefix string
	if isRoot {
		linePrefix = ""
	} else if isLast {
		linePrefix = prefix + "└── "
	} else {
		linePrefix = prefix + "├── "
	}

	marker := ""
	switch {
	case node.Cycle:
		marker = " (cycle)"
	case node.Repeated:
		marker = " (see above)"
	}

	fmt.Fprintf(builder, "%s%s [%s%s%s] %s%s\n",
		linePrefix,
		node.Name,
		f.roleColor(node.Role),
		node.Role,
		f.colorReset(),
		node.Price,
		marker,
	)

	var childPrefix string
	if isRoot {
		childPrefix = ""
	} else if isLast {
		childPrefix = prefix + "    "
	} else {
		childPrefix = prefix + "│   "
	}
	for i, child := range node.Children {
		f.formatNode(builder, child, childPrefix, i == len(node.Children)-1, false)
	}
}

func (f *TreeFormatter) roleColor(role string) string {
	if !f.useColors {
		return ""
	}
	switch role {
	case RoleProducer:
		return "\033[32m" // Green
	case RoleRequires:
		return "\033[33m" // Yellow
	default:
		return ""
	}
}

func (f *TreeFormatter) colorReset() string {
	if !f.useColors {
		return ""
	}
	return "\033[0m"
}

// FormatTreeSummary counts distinct types and their total cost
func (f *TreeFormatter) FormatTreeSummary(root *RequirementNode) string {
	if root == nil {
		return "No requirement tree"
	}

	var minerals, gas, types, depth int
	var walk func(n *RequirementNode, d int)
	walk = func(n *RequirementNode, d int) {
		if d > depth {
			depth = d
		}
		if n.Role != RoleTarget && !n.Repeated && !n.Cycle {
			types++
			minerals += n.Price.Minerals
			gas += n.Price.Gas
		}
		for _, c := range n.Children {
			walk(c, d+1)
		}
	}
	walk(root, 0)

	return fmt.Sprintf("Tree: %d distinct requirements, depth=%d, %d minerals %d gas to build from nothing",
		types, depth, minerals, gas)
}
