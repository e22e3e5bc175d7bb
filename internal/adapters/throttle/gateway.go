package throttle

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/rtsbot-go/internal/adapters/metrics"
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
)

// ErrThrottled is returned when a command would exceed the actions-per-minute cap
type ErrThrottled struct {
	Command string
	APM     int
}

func (e *ErrThrottled) Error() string {
	return fmt.Sprintf("%s throttled: over %d actions per minute", e.Command, e.APM)
}

// Gateway caps the rate of game commands at a fixed number of actions per
// minute of game time. Time is derived from the frame counter, so a paused
// or fast-forwarded game is throttled by game time rather than wall time.
// Queries pass through untouched.
type Gateway struct {
	world.World
	limiter *rate.Limiter
	apm     int
	epoch   time.Time
	clock   shared.Clock
}

// NewGateway wraps w. burst is the number of commands allowed in one frame.
// An apm of zero or less disables throttling.
func NewGateway(w world.World, apm, burst int) *Gateway {
	limit := rate.Inf
	if apm > 0 {
		limit = rate.Limit(float64(apm) / 60)
	}
	if burst < 1 {
		burst = 1
	}
	return &Gateway{
		World:   w,
		limiter: rate.NewLimiter(limit, burst),
		apm:     apm,
		epoch:   time.Unix(0, 0),
		clock:   shared.NewRealClock(),
	}
}

// now maps the current frame onto the limiter's timeline
func (g *Gateway) now() time.Time {
	return g.epoch.Add(shared.FrameDuration(g.World.FrameCount()))
}

func (g *Gateway) do(command string, fn func() error) error {
	if !g.limiter.AllowN(g.now(), 1) {
		metrics.RecordWorldCommand(command, metrics.CommandThrottled, 0)
		return &ErrThrottled{Command: command, APM: g.apm}
	}
	start := g.clock.Now()
	err := fn()
	status := metrics.CommandAccepted
	if err != nil {
		status = metrics.CommandRejected
	}
	metrics.RecordWorldCommand(command, status, g.clock.Now().Sub(start).Seconds())
	return err
}

func (g *Gateway) Build(worker shared.UnitID, t techtree.UnitType, at shared.TilePosition) error {
	return g.do("build", func() error { return g.World.Build(worker, t, at) })
}

func (g *Gateway) Train(producer shared.UnitID, t techtree.UnitType) error {
	return g.do("train", func() error { return g.World.Train(producer, t) })
}

func (g *Gateway) Research(producer shared.UnitID, tech techtree.TechType) error {
	return g.do("research", func() error { return g.World.Research(producer, tech) })
}

func (g *Gateway) Upgrade(producer shared.UnitID, upgrade techtree.UpgradeType) error {
	return g.do("upgrade", func() error { return g.World.Upgrade(producer, upgrade) })
}

func (g *Gateway) Gather(worker, node shared.UnitID) error {
	return g.do("gather", func() error { return g.World.Gather(worker, node) })
}

func (g *Gateway) Resume(worker, building shared.UnitID) error {
	return g.do("resume", func() error { return g.World.Resume(worker, building) })
}

func (g *Gateway) HaltConstruction(building shared.UnitID) error {
	return g.do("halt", func() error { return g.World.HaltConstruction(building) })
}

func (g *Gateway) CancelConstruction(worker shared.UnitID) error {
	return g.do("cancel", func() error { return g.World.CancelConstruction(worker) })
}
