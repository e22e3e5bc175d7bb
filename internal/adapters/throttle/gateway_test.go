package throttle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/rtsbot-go/internal/adapters/sandbox"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
)

func TestGateway_CapsCommandsPerGameMinute(t *testing.T) {
	cfg := sandbox.DefaultConfig()
	cfg.Minerals = 10000
	w, cc := sandbox.NewStandardStart(techtree.DefaultCatalog(), cfg)
	g := NewGateway(w, 60, 1) // one command per game second

	require.NoError(t, g.Train(cc, "Terran_SCV"))

	err := g.Train(cc, "Terran_SCV")
	var throttled *ErrThrottled
	require.ErrorAs(t, err, &throttled)
	assert.Equal(t, "train", throttled.Command)

	w.Step(24)
	err = g.Train(cc, "Terran_SCV")
	require.Error(t, err, "the command center is still busy")
	assert.False(t, errors.As(err, &throttled), "a game second later the token is back")
}

func TestGateway_DisabledWithoutCap(t *testing.T) {
	w, _ := sandbox.NewStandardStart(techtree.DefaultCatalog(), sandbox.DefaultConfig())
	g := NewGateway(w, 0, 0)

	for _, u := range w.MyUnits(world.UnitFilter{Types: []techtree.UnitType{"Terran_SCV"}}) {
		node, ok := g.NearestResourceNode(u.Position)
		require.True(t, ok)
		assert.NoError(t, g.Gather(u.ID, node.ID))
		assert.NoError(t, g.Gather(u.ID, node.ID))
	}
}
