package persistence

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
)

// MatchLogRepository manages match log persistence
type MatchLogRepository interface {
	// Log writes a log entry with deduplication
	Log(ctx context.Context, matchID, message, level string, metadata map[string]interface{}) error

	// GetLogs retrieves the newest logs of a match with optional filtering
	GetLogs(ctx context.Context, matchID string, limit, offset int, level *string, since *time.Time) ([]MatchLogEntry, error)
}

// MatchLogEntry represents a log entry
type MatchLogEntry struct {
	ID        int
	MatchID   string
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// GormMatchLogRepository is a GORM-based implementation. Identical messages
// for the same match are written at most once per dedup window, which keeps
// per-frame "saving up for X" lines from flooding the table.
type GormMatchLogRepository struct {
	db    *gorm.DB
	clock shared.Clock

	dedupCache   map[string]time.Time // key: matchID|message, value: last logged time
	dedupMu      sync.Mutex
	dedupWindow  time.Duration
	dedupMaxSize int
}

// NewGormMatchLogRepository creates a new match log repository.
// If clock is nil, uses RealClock.
func NewGormMatchLogRepository(db *gorm.DB, clock shared.Clock) *GormMatchLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormMatchLogRepository{
		db:           db,
		clock:        clock,
		dedupCache:   make(map[string]time.Time),
		dedupWindow:  10 * time.Second,
		dedupMaxSize: 10000,
	}
}

// Log writes a log entry with time-windowed deduplication
func (r *GormMatchLogRepository) Log(ctx context.Context, matchID, message, level string, metadata map[string]interface{}) error {
	now := r.clock.Now()
	cacheKey := matchID + "|" + message

	r.dedupMu.Lock()
	if lastLogged, exists := r.dedupCache[cacheKey]; exists && now.Sub(lastLogged) < r.dedupWindow {
		r.dedupMu.Unlock()
		return nil
	}
	if len(r.dedupCache) >= r.dedupMaxSize {
		r.cleanupDedupCache(now)
	}
	r.dedupCache[cacheKey] = now
	r.dedupMu.Unlock()

	var metadataJSON string
	if len(metadata) > 0 {
		if jsonBytes, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	entry := &MatchLogModel{
		MatchID:   matchID,
		Timestamp: now,
		Level:     level,
		Message:   message,
		Metadata:  metadataJSON,
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// cleanupDedupCache removes entries older than the window.
// Must be called while holding dedupMu.
func (r *GormMatchLogRepository) cleanupDedupCache(now time.Time) {
	cutoff := now.Add(-r.dedupWindow)
	for key, timestamp := range r.dedupCache {
		if timestamp.Before(cutoff) {
			delete(r.dedupCache, key)
		}
	}
}

// GetLogs retrieves logs for a match, newest first
func (r *GormMatchLogRepository) GetLogs(ctx context.Context, matchID string, limit, offset int, level *string, since *time.Time) ([]MatchLogEntry, error) {
	var models []MatchLogModel

	query := r.db.WithContext(ctx).Where("match_id = ?", matchID)
	if level != nil {
		query = query.Where("level = ?", *level)
	}
	if since != nil {
		query = query.Where("timestamp > ?", *since)
	}
	query = query.Order("timestamp DESC, id DESC").Limit(limit).Offset(offset)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]MatchLogEntry, len(models))
	for i, model := range models {
		var metadata map[string]interface{}
		if model.Metadata != "" {
			if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
				metadata = nil
			}
		}
		entries[i] = MatchLogEntry{
			ID:        model.ID,
			MatchID:   model.MatchID,
			Timestamp: model.Timestamp,
			Level:     model.Level,
			Message:   model.Message,
			Metadata:  metadata,
		}
	}
	return entries, nil
}
