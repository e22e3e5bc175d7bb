package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/rtsbot-go/internal/application/common"
	appproduction "github.com/andrescamacho/rtsbot-go/internal/application/production"
	"github.com/andrescamacho/rtsbot-go/internal/domain/production"
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
)

type scriptFile struct {
	Name     string      `yaml:"name"`
	Requests []entryFile `yaml:"requests"`
}

type entryFile struct {
	Frame    int    `yaml:"frame"`
	Unit     string `yaml:"unit"`
	Research string `yaml:"research"`
	Upgrade  string `yaml:"upgrade"`
	Level    int    `yaml:"level"`
	Priority *int   `yaml:"priority"`
	Count    int    `yaml:"count"`
	Cancel   string `yaml:"cancel"`
	All      bool   `yaml:"all"`
	Bare     bool   `yaml:"without_prerequisites"`
}

// Request is one scripted submission or cancellation
type Request struct {
	Frame    int
	Target   production.Target
	Priority int
	Count    int

	// Cancel removes orders instead of submitting; All widens it to every match
	Cancel bool
	All    bool

	WithoutPrerequisites bool
}

func (r Request) String() string {
	if r.Cancel {
		scope := "oldest"
		if r.All {
			scope = "all"
		}
		return fmt.Sprintf("@%d cancel %s %s", r.Frame, scope, r.Target)
	}
	return fmt.Sprintf("@%d %dx %s p%d", r.Frame, r.Count, r.Target, r.Priority)
}

// Script is a build order: requests fired when the game reaches their frame
type Script struct {
	Name     string
	Requests []Request
}

// Load parses a YAML script and checks every name against the catalog.
// Entries without a priority get defaultPriority.
func Load(r io.Reader, catalog *techtree.Catalog, defaultPriority int) (*Script, error) {
	var file scriptFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}

	s := &Script{Name: file.Name}
	for i, e := range file.Requests {
		req, err := e.request(catalog, defaultPriority)
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i+1, err)
		}
		s.Requests = append(s.Requests, req)
	}
	sort.SliceStable(s.Requests, func(i, j int) bool {
		return s.Requests[i].Frame < s.Requests[j].Frame
	})
	return s, nil
}

// LoadFile reads a script from disk
func LoadFile(path string, catalog *techtree.Catalog, defaultPriority int) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()
	return Load(f, catalog, defaultPriority)
}

func (e entryFile) request(catalog *techtree.Catalog, defaultPriority int) (Request, error) {
	req := Request{
		Frame:                e.Frame,
		Priority:             defaultPriority,
		Count:                e.Count,
		All:                  e.All,
		WithoutPrerequisites: e.Bare,
	}
	if e.Priority != nil {
		req.Priority = *e.Priority
	}
	if req.Count == 0 {
		req.Count = 1
	}
	if e.Frame < 0 {
		return req, shared.NewValidationError("frame", "must not be negative")
	}
	if req.Count < 0 {
		return req, shared.NewValidationError("count", "must not be negative")
	}

	set := 0
	if e.Unit != "" {
		set++
		if _, err := catalog.Unit(techtree.UnitType(e.Unit)); err != nil {
			return req, err
		}
		req.Target = production.UnitTarget(techtree.UnitType(e.Unit))
	}
	if e.Research != "" {
		set++
		if _, err := catalog.Tech(techtree.TechType(e.Research)); err != nil {
			return req, err
		}
		req.Target = production.ResearchTarget(techtree.TechType(e.Research))
	}
	if e.Upgrade != "" {
		set++
		spec, err := catalog.Upgrade(techtree.UpgradeType(e.Upgrade))
		if err != nil {
			return req, err
		}
		level := e.Level
		if level == 0 {
			level = 1
		}
		if _, err := spec.Level(level); err != nil {
			return req, err
		}
		req.Target = production.UpgradeTarget(techtree.UpgradeType(e.Upgrade), level)
	}
	if e.Cancel != "" {
		set++
		if _, err := catalog.Unit(techtree.UnitType(e.Cancel)); err != nil {
			return req, err
		}
		req.Cancel = true
		req.Target = production.UnitTarget(techtree.UnitType(e.Cancel))
	}
	if set != 1 {
		return req, shared.NewValidationError("target", "exactly one of unit, research, upgrade or cancel must be set")
	}
	return req, nil
}

// Agent is the part of the coordinator a script drives
type Agent interface {
	Submit(ctx context.Context, w world.Queries, target production.Target, priority int, opts ...appproduction.SubmitOption) ([]*production.Order, error)
	CancelOrder(ctx context.Context, w world.World, target production.Target, scope appproduction.CancelScope) int
}

// Player fires a script's requests as frames pass
type Player struct {
	script *Script
	next   int
}

// NewPlayer starts at the first request
func NewPlayer(s *Script) *Player {
	return &Player{script: s}
}

// Done reports whether every request has fired
func (p *Player) Done() bool {
	return p.next >= len(p.script.Requests)
}

// Advance fires every request due at or before the world's current frame.
// A failed submission is logged and skipped. Returns the number fired.
func (p *Player) Advance(ctx context.Context, w world.World, agent Agent) int {
	logger := common.LoggerFromContext(ctx)
	fired := 0

	for !p.Done() && p.script.Requests[p.next].Frame <= w.FrameCount() {
		req := p.script.Requests[p.next]
		p.next++
		fired++

		if req.Cancel {
			scope := appproduction.CancelOldest
			if req.All {
				scope = appproduction.CancelAll
			}
			agent.CancelOrder(ctx, w, req.Target, scope)
			continue
		}

		var opts []appproduction.SubmitOption
		if req.WithoutPrerequisites {
			opts = append(opts, appproduction.WithoutPrerequisites())
		}
		for i := 0; i < req.Count; i++ {
			if _, err := agent.Submit(ctx, w, req.Target, req.Priority, opts...); err != nil {
				logger.Log(common.LevelError, fmt.Sprintf("Script request %s failed: %v", req, err), nil)
				break
			}
		}
	}
	return fired
}
