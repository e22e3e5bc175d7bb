package persistence

import (
	"time"
)

// Match statuses
const (
	MatchRunning  = "RUNNING"
	MatchFinished = "FINISHED"
	MatchAborted  = "ABORTED"
)

// MatchModel represents the matches table
type MatchModel struct {
	ID         string     `gorm:"column:id;primaryKey;not null"`
	MapName    string     `gorm:"column:map_name"`
	PlayerID   int        `gorm:"column:player_id;not null"`
	Status     string     `gorm:"column:status;not null;default:'RUNNING'"`
	Catalog    string     `gorm:"column:catalog"`
	Frames     int        `gorm:"column:frames;default:0"`
	StartedAt  time.Time  `gorm:"column:started_at;not null"`
	StoppedAt  *time.Time `gorm:"column:stopped_at"`
	ExitReason string     `gorm:"column:exit_reason"`
}

func (MatchModel) TableName() string {
	return "matches"
}

// MatchLogModel represents the match_logs table
type MatchLogModel struct {
	ID        int         `gorm:"column:id;primaryKey;autoIncrement"`
	MatchID   string      `gorm:"column:match_id;not null;index"`
	Match     *MatchModel `gorm:"foreignKey:MatchID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Timestamp time.Time   `gorm:"column:timestamp;not null"`
	Level     string      `gorm:"column:level;not null;default:'INFO'"`
	Message   string      `gorm:"column:message;type:text;not null"`
	Metadata  string      `gorm:"column:metadata;type:text"` // JSON as text
}

func (MatchLogModel) TableName() string {
	return "match_logs"
}

// OrderTransitionModel represents the order_transitions table, an
// append-only ledger of production order status changes
type OrderTransitionModel struct {
	ID         int       `gorm:"column:id;primaryKey;autoIncrement"`
	MatchID    string    `gorm:"column:match_id;not null;index"`
	OrderID    string    `gorm:"column:order_id;not null;index"`
	Kind       string    `gorm:"column:kind;not null"`
	Target     string    `gorm:"column:target;not null"`
	Level      int       `gorm:"column:level;default:0"`
	Priority   int       `gorm:"column:priority"`
	FromStatus string    `gorm:"column:from_status;not null"`
	ToStatus   string    `gorm:"column:to_status;not null"`
	Frame      int       `gorm:"column:frame"`
	UnitID     int       `gorm:"column:unit_id;default:0"`
	Reason     string    `gorm:"column:reason"`
	RecordedAt time.Time `gorm:"column:recorded_at;not null"`
}

func (OrderTransitionModel) TableName() string {
	return "order_transitions"
}
