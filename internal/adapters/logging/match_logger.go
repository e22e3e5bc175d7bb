package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/andrescamacho/rtsbot-go/internal/adapters/persistence"
	"github.com/andrescamacho/rtsbot-go/internal/application/common"
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
)

var levelRank = map[string]int{
	common.LevelDebug: 0,
	common.LevelInfo:  1,
	common.LevelWarn:  2,
	common.LevelError: 3,
}

// ParseLevel maps a config level (debug, info, warn, error) to a logger level
func ParseLevel(s string) (string, error) {
	switch strings.ToLower(s) {
	case "debug":
		return common.LevelDebug, nil
	case "info", "":
		return common.LevelInfo, nil
	case "warn", "warning":
		return common.LevelWarn, nil
	case "error":
		return common.LevelError, nil
	}
	return "", fmt.Errorf("unknown log level %q", s)
}

// LogEntry is one line kept in memory by MatchLogger
type LogEntry struct {
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// MatchLogger writes agent log lines for one match to an output stream and,
// when a repository is set, to the match_logs table. Database writes are
// asynchronous; call Flush before closing the database.
type MatchLogger struct {
	matchID  string
	out      io.Writer
	json     bool
	minLevel int
	clock    shared.Clock
	repo     persistence.MatchLogRepository

	mu      sync.Mutex
	recent  []LogEntry
	keep    int
	pending sync.WaitGroup
}

// Option configures a MatchLogger
type Option func(*MatchLogger)

// WithRepository persists every emitted line
func WithRepository(repo persistence.MatchLogRepository) Option {
	return func(l *MatchLogger) { l.repo = repo }
}

// WithJSON switches the output to one JSON object per line
func WithJSON() Option {
	return func(l *MatchLogger) { l.json = true }
}

// WithClock overrides the timestamp source
func WithClock(clock shared.Clock) Option {
	return func(l *MatchLogger) { l.clock = clock }
}

// NewMatchLogger creates a logger that drops lines below minLevel
func NewMatchLogger(matchID string, out io.Writer, minLevel string, opts ...Option) *MatchLogger {
	l := &MatchLogger{
		matchID:  matchID,
		out:      out,
		minLevel: levelRank[minLevel],
		clock:    shared.NewRealClock(),
		keep:     500,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log implements common.Logger
func (l *MatchLogger) Log(level, message string, metadata map[string]interface{}) {
	rank, ok := levelRank[level]
	if !ok {
		rank = levelRank[common.LevelInfo]
	}
	if rank < l.minLevel {
		return
	}

	entry := LogEntry{
		Timestamp: l.clock.Now(),
		Level:     level,
		Message:   message,
		Metadata:  metadata,
	}

	l.mu.Lock()
	l.recent = append(l.recent, entry)
	if len(l.recent) > l.keep {
		l.recent = l.recent[len(l.recent)-l.keep:]
	}
	l.write(entry)
	l.mu.Unlock()

	if l.repo == nil {
		return
	}
	l.pending.Add(1)
	go func() {
		defer l.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := l.repo.Log(ctx, l.matchID, message, level, metadata); err != nil {
			l.mu.Lock()
			fmt.Fprintf(l.out, "[%s] [%s] ERROR: Failed to persist log to DB: %v\n",
				l.clock.Now().Format(time.RFC3339), l.matchID, err)
			l.mu.Unlock()
		}
	}()
}

// write must be called while holding mu
func (l *MatchLogger) write(e LogEntry) {
	if l.json {
		line := map[string]interface{}{
			"time":    e.Timestamp.Format(time.RFC3339),
			"match":   l.matchID,
			"level":   e.Level,
			"message": e.Message,
		}
		if len(e.Metadata) > 0 {
			line["metadata"] = e.Metadata
		}
		if b, err := json.Marshal(line); err == nil {
			fmt.Fprintln(l.out, string(b))
			return
		}
	}
	fmt.Fprintf(l.out, "[%s] [%s] %s: %s\n", e.Timestamp.Format(time.RFC3339), l.matchID, e.Level, e.Message)
}

// Recent returns up to limit of the latest entries, oldest first
func (l *MatchLogger) Recent(limit int) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := 0
	if limit > 0 && limit < len(l.recent) {
		start = len(l.recent) - limit
	}
	out := make([]LogEntry, len(l.recent)-start)
	copy(out, l.recent[start:])
	return out
}

// Flush waits for pending database writes
func (l *MatchLogger) Flush() {
	l.pending.Wait()
}
