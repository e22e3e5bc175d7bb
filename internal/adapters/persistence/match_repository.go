package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
)

// MatchRepository records matches the agent has played
type MatchRepository interface {
	Start(ctx context.Context, id, mapName string, playerID int, catalog string) error
	Finish(ctx context.Context, id, status string, frames int, reason string) error
	FindByID(ctx context.Context, id string) (*MatchModel, error)
	ListRecent(ctx context.Context, limit int) ([]MatchModel, error)
}

// GormMatchRepository is a GORM-based implementation
type GormMatchRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormMatchRepository creates a new match repository.
// If clock is nil, uses RealClock.
func NewGormMatchRepository(db *gorm.DB, clock shared.Clock) *GormMatchRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormMatchRepository{db: db, clock: clock}
}

// Start inserts a RUNNING match
func (r *GormMatchRepository) Start(ctx context.Context, id, mapName string, playerID int, catalog string) error {
	model := &MatchModel{
		ID:        id,
		MapName:   mapName,
		PlayerID:  playerID,
		Status:    MatchRunning,
		Catalog:   catalog,
		StartedAt: r.clock.Now(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record match start: %w", err)
	}
	return nil
}

// Finish closes a match with a final status
func (r *GormMatchRepository) Finish(ctx context.Context, id, status string, frames int, reason string) error {
	now := r.clock.Now()
	result := r.db.WithContext(ctx).Model(&MatchModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"frames":      frames,
			"stopped_at":  now,
			"exit_reason": reason,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record match end: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("match not found: %s", id)
	}
	return nil
}

// FindByID returns a match, or nil if it does not exist
func (r *GormMatchRepository) FindByID(ctx context.Context, id string) (*MatchModel, error) {
	var model MatchModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &model, nil
}

// ListRecent returns the latest matches first
func (r *GormMatchRepository) ListRecent(ctx context.Context, limit int) ([]MatchModel, error) {
	var models []MatchModel
	err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&models).Error
	return models, err
}
