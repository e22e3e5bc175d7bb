package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/rtsbot-go/internal/application/common"
	"github.com/andrescamacho/rtsbot-go/internal/domain/production"
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
)

// GormTransitionLedger appends every production order transition of one
// match to the order_transitions table. It is a production.TransitionObserver;
// write failures are logged and never reach the scheduler.
type GormTransitionLedger struct {
	db      *gorm.DB
	matchID string
	clock   shared.Clock
}

// NewGormTransitionLedger creates a ledger for one match.
// If clock is nil, uses RealClock.
func NewGormTransitionLedger(db *gorm.DB, matchID string, clock shared.Clock) *GormTransitionLedger {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormTransitionLedger{db: db, matchID: matchID, clock: clock}
}

// OnTransition implements production.TransitionObserver
func (l *GormTransitionLedger) OnTransition(ctx context.Context, t production.Transition) {
	model := &OrderTransitionModel{
		MatchID:    l.matchID,
		OrderID:    t.OrderID,
		Kind:       string(t.Target.Kind),
		Target:     t.Target.Name(),
		Level:      t.Target.Level,
		Priority:   t.Priority,
		FromStatus: string(t.From),
		ToStatus:   string(t.To),
		Frame:      t.Frame,
		UnitID:     int(t.Unit),
		Reason:     t.Reason,
		RecordedAt: l.clock.Now(),
	}
	if err := l.db.WithContext(ctx).Create(model).Error; err != nil {
		common.LoggerFromContext(ctx).Log(common.LevelError, fmt.Sprintf("Failed to record transition of order %s: %v", t.OrderID, err), nil)
	}
}

// ForMatch returns a match's transitions in the order they happened
func (l *GormTransitionLedger) ForMatch(ctx context.Context, matchID string, limit int) ([]OrderTransitionModel, error) {
	var models []OrderTransitionModel
	query := l.db.WithContext(ctx).Where("match_id = ?", matchID).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load transitions of match %s: %w", matchID, err)
	}
	return models, nil
}

// ForOrder returns the history of one order
func (l *GormTransitionLedger) ForOrder(ctx context.Context, orderID string) ([]OrderTransitionModel, error) {
	var models []OrderTransitionModel
	err := l.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&models).Error
	return models, err
}

// Interruptions counts transitions into ABORTED per target for a match
func (l *GormTransitionLedger) Interruptions(ctx context.Context, matchID string) (map[string]int, error) {
	type row struct {
		Target string
		Count  int
	}
	var rows []row
	err := l.db.WithContext(ctx).Model(&OrderTransitionModel{}).
		Select("target, COUNT(*) AS count").
		Where("match_id = ? AND to_status = ?", matchID, string(production.StatusAborted)).
		Group("target").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Target] = r.Count
	}
	return out, nil
}
