package colorswitch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ttlJournal = 24 * time.Hour
	// Cap the journal so an unattended long-running game cannot grow a key
	// without bound.
	journalMaxEntries = 1000
)

// SwitchEvent is one executed flip, journaled for display and statistics.
type SwitchEvent struct {
	SessionID  string    `json:"session_id"`
	Square     string    `json:"square"`
	FromColor  string    `json:"from_color"`
	ToColor    string    `json:"to_color"`
	PieceType  string    `json:"piece_type"`
	MoveNumber int       `json:"move_number"`
	At         time.Time `json:"at"`
}

// EventStore journals executed switches. Failures are the caller's to log
// and ignore; the journal is observability, not game state.
type EventStore interface {
	RecordSwitch(ctx context.Context, ev SwitchEvent) error
	RecentSwitches(ctx context.Context, limit int) ([]SwitchEvent, error)
}

// RedisStore keeps the journal in a capped Redis list.
type RedisStore struct{ rdb *redis.Client }

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) keyJournal() string { return "switch:journal" }

func (s *RedisStore) RecordSwitch(ctx context.Context, ev SwitchEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := s.rdb.LPush(ctx, s.keyJournal(), raw).Err(); err != nil {
		return err
	}
	_ = s.rdb.LTrim(ctx, s.keyJournal(), 0, journalMaxEntries-1).Err()
	return s.rdb.Expire(ctx, s.keyJournal(), ttlJournal).Err()
}

func (s *RedisStore) RecentSwitches(ctx context.Context, limit int) ([]SwitchEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	raws, err := s.rdb.LRange(ctx, s.keyJournal(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]SwitchEvent, 0, len(raws))
	for _, raw := range raws {
		var ev SwitchEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// NoopStore discards events; used when no Redis endpoint is configured.
type NoopStore struct{}

func (NoopStore) RecordSwitch(context.Context, SwitchEvent) error { return nil }

func (NoopStore) RecentSwitches(context.Context, int) ([]SwitchEvent, error) { return nil, nil }
