package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/go-redis/redis/v8"
)

const (
	ledgerKeyPrefix   = "sent_alerts:"
	alertLogKeyPrefix = "alert_log:"
)

// Store implements pipeline.Ledger and pipeline.AlertLog on Redis.
//
// Ledger entries are plain JSON values written with SETNX, which makes the
// claim an atomic create-if-absent: of any number of concurrent cycles, at
// most one wins each event ID. Entries carry no TTL; the ledger grows
// monotonically. The alert log is one list per UTC day, pushed from the
// left so reads come back newest-first.
type Store struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// New connects to Redis using a redis:// URL.
func New(redisURL string, logger *slog.Logger) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Store{rdb: redis.NewClient(opt), logger: logger}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// CheckReadiness reports whether the store is reachable. The service is not
// ready to run cycles until it can see committed ledger state.
func (s *Store) CheckReadiness(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unreachable: %w", err)
	}
	return nil
}

// HasAlerted reports whether a ledger record exists for the event ID.
func (s *Store) HasAlerted(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, ledgerKeyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("ledger exists %q: %w", id, err)
	}
	return n > 0, nil
}

// Claim atomically creates the ledger record if absent. Returns true when
// this caller won the right to alert on the event.
func (s *Store) Claim(ctx context.Context, id string, rec domain.LedgerRecord) (bool, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("marshal ledger record %q: %w", id, err)
	}
	won, err := s.rdb.SetNX(ctx, ledgerKeyPrefix+id, data, 0).Result()
	if err != nil {
		return false, fmt.Errorf("ledger claim %q: %w", id, err)
	}
	return won, nil
}

// Append persists one dispatched-batch record under its UTC day key and
// returns a store-assigned identifier.
func (s *Store) Append(ctx context.Context, rec domain.AlertRecord) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal alert record: %w", err)
	}
	key := alertLogKey(rec.Timestamp)
	n, err := s.rdb.LPush(ctx, key, data).Result()
	if err != nil {
		return "", fmt.Errorf("alert log append: %w", err)
	}
	return fmt.Sprintf("%s#%d", key, n), nil
}

// QueryByDay returns the alert records for a UTC day, newest first.
func (s *Store) QueryByDay(ctx context.Context, day time.Time) ([]domain.AlertRecord, error) {
	raw, err := s.rdb.LRange(ctx, alertLogKey(day), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("alert log query: %w", err)
	}

	records := make([]domain.AlertRecord, 0, len(raw))
	for _, item := range raw {
		var rec domain.AlertRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			s.logger.Warn("skipping undecodable alert record", "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func alertLogKey(t time.Time) string {
	return alertLogKeyPrefix + t.UTC().Format("2006-01-02")
}
