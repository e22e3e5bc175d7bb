package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/rtsbot-go/internal/adapters/persistence"
	"github.com/andrescamacho/rtsbot-go/internal/adapters/script"
	"github.com/andrescamacho/rtsbot-go/internal/domain/production"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/infrastructure/config"
	"github.com/andrescamacho/rtsbot-go/test/helpers"
)

const barracksAndMarines = `
name: rax
requests:
  - unit: Terran_Marine
    count: 2
`

type healthRecorder struct {
	started, stopped int
}

func (h *healthRecorder) MatchStarted() { h.started++ }
func (h *healthRecorder) MatchStopped() { h.stopped++ }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Sandbox.Minerals = 1000
	cfg.Sandbox.TravelFrames = 1
	cfg.Agent.FrameLimit = 6000
	cfg.Logging.Persist = true
	config.SetDefaults(cfg)
	return cfg
}

func TestMatchRunner_PlaysScriptToCompletion(t *testing.T) {
	catalog := techtree.DefaultCatalog()
	s, err := script.Load(strings.NewReader(barracksAndMarines), catalog, 50)
	require.NoError(t, err)
	db := helpers.NewTestDB(t)
	var out bytes.Buffer
	recorder := &healthRecorder{}

	runner := NewMatchRunner(testConfig(), catalog, db, &out)
	runner.Health = recorder
	result, err := runner.Run(context.Background(), s, true)

	require.NoError(t, err)
	assert.Equal(t, persistence.MatchFinished, result.Status)
	assert.Equal(t, "build order complete", result.Reason)
	assert.Less(t, result.Frames, 6000)
	assert.Equal(t, 0, result.Open)
	assert.Equal(t, 1, recorder.started)
	assert.Equal(t, 1, recorder.stopped)
	assert.Contains(t, out.String(), "Finished PRODUCE_UNIT Terran_Barracks")

	ctx := context.Background()
	match, err := persistence.NewGormMatchRepository(db, nil).FindByID(ctx, result.MatchID)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, persistence.MatchFinished, match.Status)
	assert.Equal(t, result.Frames, match.Frames)

	transitions, err := persistence.NewGormTransitionLedger(db, result.MatchID, nil).ForMatch(ctx, result.MatchID, 0)
	require.NoError(t, err)
	finished := 0
	for _, tr := range transitions {
		if tr.ToStatus == string(production.StatusFinished) {
			finished++
		}
	}
	assert.Equal(t, 3, finished, "barracks and two marines")

	logs, err := persistence.NewGormMatchLogRepository(db, nil).GetLogs(ctx, result.MatchID, 1000, 0, nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, logs)
}

func TestMatchRunner_StopsAtFrameLimitWithoutDatabase(t *testing.T) {
	catalog := techtree.DefaultCatalog()
	s, err := script.Load(strings.NewReader(barracksAndMarines), catalog, 50)
	require.NoError(t, err)
	cfg := testConfig()
	cfg.Agent.FrameLimit = 100

	result, err := NewMatchRunner(cfg, catalog, nil, &bytes.Buffer{}).Run(context.Background(), s, true)

	require.NoError(t, err)
	assert.Equal(t, "frame limit reached", result.Reason)
	assert.Equal(t, 100, result.Frames)
	assert.Contains(t, result.Queue, "Terran_Marine")
}

func TestMatchRunner_CancelledContextAborts(t *testing.T) {
	catalog := techtree.DefaultCatalog()
	s, err := script.Load(strings.NewReader(barracksAndMarines), catalog, 50)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewMatchRunner(testConfig(), catalog, nil, &bytes.Buffer{}).Run(ctx, s, true)

	require.NoError(t, err)
	assert.Equal(t, persistence.MatchAborted, result.Status)
	assert.Equal(t, 0, result.Frames)
}
