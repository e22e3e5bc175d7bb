package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/rtsbot-go/internal/domain/production"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
)

func TestBuildRequirementTree_Firebat(t *testing.T) {
	root, err := BuildRequirementTree(techtree.DefaultCatalog(), production.UnitTarget("Terran_Firebat"))

	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	barracks, academy := root.Children[0], root.Children[1]
	assert.Equal(t, "Terran_Barracks", barracks.Name)
	assert.Equal(t, RoleProducer, barracks.Role)
	assert.Equal(t, "Terran_Academy", academy.Name)
	assert.Equal(t, RoleRequires, academy.Role)

	for _, c := range academy.Children {
		assert.True(t, c.Repeated, c.Name)
	}
}

func TestTreeFormatter_MarksCyclesAndSummarises(t *testing.T) {
	root, err := BuildRequirementTree(techtree.DefaultCatalog(), production.UnitTarget("Terran_Firebat"))
	require.NoError(t, err)
	f := NewTreeFormatter(false)

	tree := f.FormatTree(root)

	lines := strings.Split(strings.TrimSpace(tree), "\n")
	assert.Equal(t, "Terran_Firebat [target] 50m/25g", lines[0])
	assert.Equal(t, "├── Terran_Barracks [producer] 150m/0g", lines[1])
	assert.Contains(t, tree, "(cycle)")
	assert.Contains(t, tree, "└── Terran_Academy [requires] 150m/0g")
	assert.Equal(t, "Tree: 4 distinct requirements, depth=4, 750 minerals 0 gas to build from nothing", f.FormatTreeSummary(root))
}

func TestCatalogTreeCommand_Upgrade(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"catalog", "tree", "Terran_Infantry_Weapons", "--level", "2"})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Terran_Infantry_Weapons L2 [target]")
	assert.Contains(t, out.String(), "Terran_Engineering_Bay [producer]")
	assert.Contains(t, out.String(), "Terran_Science_Facility [requires]")
}

func TestResolveTarget_Unknown(t *testing.T) {
	_, err := resolveTarget(techtree.DefaultCatalog(), "Zerg_Zergling", 1)

	assert.Error(t, err)
}

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "postgres://rtsbot:xxxxx@db:5432/rtsbot", maskPassword("postgres://rtsbot:secret@db:5432/rtsbot"))
	assert.Equal(t, "rtsbot.db", maskPassword("rtsbot.db"))
}
