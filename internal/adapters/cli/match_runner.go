package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"gorm.io/gorm"

	"github.com/andrescamacho/rtsbot-go/internal/adapters/logging"
	"github.com/andrescamacho/rtsbot-go/internal/adapters/persistence"
	"github.com/andrescamacho/rtsbot-go/internal/adapters/sandbox"
	"github.com/andrescamacho/rtsbot-go/internal/adapters/script"
	"github.com/andrescamacho/rtsbot-go/internal/adapters/throttle"
	"github.com/andrescamacho/rtsbot-go/internal/application/agent"
	"github.com/andrescamacho/rtsbot-go/internal/application/common"
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/infrastructure/config"
	"github.com/andrescamacho/rtsbot-go/pkg/utils"
)

// MatchResult summarises a finished simulation
type MatchResult struct {
	MatchID  string
	Status   string
	Frames   int
	Reason   string
	Minerals int
	Gas      int
	Queue    string
	Open     int
}

// MatchRunner plays one scripted match against the sandbox world
type MatchRunner struct {
	cfg     *config.Config
	catalog *techtree.Catalog
	db      *gorm.DB
	out     io.Writer

	// Health is notified when the match starts and stops; may be nil
	Health interface {
		MatchStarted()
		MatchStopped()
	}
}

// NewMatchRunner creates a runner. db may be nil to skip persistence.
func NewMatchRunner(cfg *config.Config, catalog *techtree.Catalog, db *gorm.DB, out io.Writer) *MatchRunner {
	return &MatchRunner{cfg: cfg, catalog: catalog, db: db, out: out}
}

// Run plays s until the frame limit, until the script and every order are
// done when untilIdle is set, or until ctx is cancelled.
func (r *MatchRunner) Run(ctx context.Context, s *script.Script, untilIdle bool) (*MatchResult, error) {
	matchID := utils.GenerateMatchID(r.cfg.Agent.MapName)

	level, err := logging.ParseLevel(r.cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	var opts []logging.Option
	if r.cfg.Logging.Format == "json" {
		opts = append(opts, logging.WithJSON())
	}

	var matches persistence.MatchRepository
	if r.db != nil {
		matches = persistence.NewGormMatchRepository(r.db, nil)
		catalogName := r.cfg.Agent.CatalogPath
		if catalogName == "" {
			catalogName = "builtin"
		}
		if err := matches.Start(ctx, matchID, r.cfg.Agent.MapName, r.cfg.Agent.PlayerID, catalogName); err != nil {
			return nil, err
		}
		if r.cfg.Logging.Persist {
			opts = append(opts, logging.WithRepository(persistence.NewGormMatchLogRepository(r.db, nil)))
		}
	}

	logger := logging.NewMatchLogger(matchID, r.output(), level, opts...)
	defer logger.Flush()
	ctx = common.WithLogger(ctx, logger)

	sb := r.cfg.Sandbox
	w, _ := sandbox.NewStandardStart(r.catalog, sandbox.Config{
		Self:            shared.PlayerID(r.cfg.Agent.PlayerID),
		Minerals:        sb.Minerals,
		Gas:             sb.Gas,
		MineralsPerTrip: sb.MineralsPerTrip,
		GasPerRefinery:  sb.GasPerRefinery,
		TravelFrames:    sb.TravelFrames,
		MapWidth:        sb.MapWidth,
		MapHeight:       sb.MapHeight,
		MaxSupply:       sandbox.DefaultConfig().MaxSupply,
	})
	gateway := throttle.NewGateway(w, r.cfg.Agent.APM, r.cfg.Agent.Burst)

	coordinator := agent.NewCoordinator(r.catalog, agent.NewRingSiteLocator(r.catalog), agent.Options{
		DescribeEvery: r.cfg.Agent.DescribeEvery,
	})
	if r.db != nil {
		coordinator.Scheduler().AddObserver(persistence.NewGormTransitionLedger(r.db, matchID, nil))
	}
	player := script.NewPlayer(s)

	logger.Log(common.LevelInfo, fmt.Sprintf("Match %s started on %s with script %q", matchID, r.cfg.Agent.MapName, s.Name), nil)
	coordinator.Start(ctx, gateway)
	if r.Health != nil {
		r.Health.MatchStarted()
		defer r.Health.MatchStopped()
	}

	result := &MatchResult{MatchID: matchID, Status: persistence.MatchFinished, Reason: "frame limit reached"}
	for w.FrameCount() < r.cfg.Agent.FrameLimit {
		if ctx.Err() != nil {
			result.Status = persistence.MatchAborted
			result.Reason = "interrupted"
			break
		}
		player.Advance(ctx, gateway, coordinator)
		coordinator.OnFrame(ctx, gateway)
		w.Step(1)
		coordinator.HandleEvents(ctx, gateway, w.DrainEvents())

		if untilIdle && player.Done() && coordinator.Scheduler().Len() == 0 && len(coordinator.Tracker().Jobs()) == 0 {
			result.Reason = "build order complete"
			break
		}
	}

	result.Frames = w.FrameCount()
	result.Minerals = w.Minerals()
	result.Gas = w.Gas()
	result.Queue = coordinator.Scheduler().Describe()
	result.Open = len(coordinator.Tracker().Jobs())
	logger.Log(common.LevelInfo, fmt.Sprintf("Match %s %s after %d frames: %s", matchID, result.Status, result.Frames, result.Reason), nil)

	if matches != nil {
		// the run context may already be cancelled
		if err := matches.Finish(context.Background(), matchID, result.Status, result.Frames, result.Reason); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (r *MatchRunner) output() io.Writer {
	if r.out != nil {
		return r.out
	}
	if r.cfg.Logging.Output == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}
