package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"wellness-meal-planner/internal/shared"
)

// OperationMetric records metadata for a single planner operation.
type OperationMetric struct {
	ID               string
	Operation        string
	WeekKey          string
	Fallbacks        int
	Fixed            int
	Changed          int
	Degraded         bool
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Store) newID(ts time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(ts), s.entropy).String()
}

// Record saves a metric to the database.
func (s *Store) Record(m OperationMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if m.ID == "" {
		m.ID = s.newID(ts)
	}

	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO operation_metrics
			(id, operation, week_key, fallbacks, fixed, changed, degraded, model, prompt_tokens, completion_tokens, latency_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Operation, m.WeekKey, m.Fallbacks, m.Fixed, m.Changed, m.Degraded,
		m.Model, m.PromptTokens, m.CompletionTokens, m.LatencyMS, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to insert metric: %w", err)
	}
	return nil
}

// RecordMeta records metrics directly from shared.OpMeta.
func (s *Store) RecordMeta(meta shared.OpMeta) error {
	return s.Record(MapMeta(meta))
}

// MapMeta converts shared.OpMeta to an OperationMetric.
func MapMeta(meta shared.OpMeta) OperationMetric {
	return OperationMetric{
		Operation:        meta.Operation,
		WeekKey:          meta.WeekKey,
		Fallbacks:        meta.Fallbacks,
		Fixed:            meta.Fixed,
		Changed:          meta.Changed,
		Degraded:         meta.Degraded,
		Model:            meta.Usage.Model,
		PromptTokens:     meta.Usage.PromptTokens,
		CompletionTokens: meta.Usage.CompletionTokens,
		LatencyMS:        meta.Latency.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}
}

// DailySummary aggregates operations for a single day.
type DailySummary struct {
	Date             string
	Operations       int
	Fallbacks        int
	Fixed            int
	Degraded         int
	TotalPrompt      int
	TotalCompletion  int
	AverageLatencyMS float64
}

// GetDailySummary retrieves per-day totals for the last N days, newest first.
func (s *Store) GetDailySummary(days int) ([]DailySummary, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT strftime('%Y-%m-%d', timestamp) AS day,
		       COUNT(*),
		       COALESCE(SUM(fallbacks), 0),
		       COALESCE(SUM(fixed), 0),
		       COALESCE(SUM(degraded), 0),
		       COALESCE(SUM(prompt_tokens), 0),
		       COALESCE(SUM(completion_tokens), 0),
		       COALESCE(AVG(latency_ms), 0)
		FROM operation_metrics
		WHERE timestamp >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily summary: %w", err)
	}
	defer rows.Close()

	var results []DailySummary
	for rows.Next() {
		var (
			u   DailySummary
			day sql.NullString
		)
		if err := rows.Scan(&day, &u.Operations, &u.Fallbacks, &u.Fixed, &u.Degraded,
			&u.TotalPrompt, &u.TotalCompletion, &u.AverageLatencyMS); err != nil {
			return nil, fmt.Errorf("failed to scan daily summary: %w", err)
		}
		u.Date = "Unknown"
		if day.Valid {
			u.Date = day.String
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days and
// returns how many were deleted.
func (s *Store) Cleanup(olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(context.Background(),
		`DELETE FROM operation_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	return res.RowsAffected()
}
