package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"lead-triage/internal/common/errors"
	"lead-triage/internal/models"

	"github.com/redis/go-redis/v9"
)

// Sink receives committed audit entries in commit order.
type Sink interface {
	Name() string
	Write(ctx context.Context, entry models.AuditEntry) error
	Close() error
}

const DefaultRedisKey = "triage:audit"

// RedisSink appends each entry as JSON to a Redis list.
type RedisSink struct {
	client redis.Cmdable
	key    string
}

func NewRedisSink(client redis.Cmdable, key string) *RedisSink {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSink{client: client, key: key}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Write(ctx context.Context, entry models.AuditEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return errors.NewAuditMirrorFailedError(s.Name(), err)
	}
	if err := s.client.RPush(ctx, s.key, data).Err(); err != nil {
		return errors.NewAuditMirrorFailedError(s.Name(), err)
	}
	return nil
}

// Close is a no-op; the client belongs to the caller.
func (s *RedisSink) Close() error { return nil }

var identifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresSink inserts each entry as a row holding the JSON document.
type PostgresSink struct {
	db    *sql.DB
	table string
}

func NewPostgresSink(db *sql.DB, table string) (*PostgresSink, error) {
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("invalid audit table name %q", table)
	}
	return &PostgresSink{db: db, table: table}, nil
}

func (s *PostgresSink) Name() string { return "postgres" }

// EnsureTable creates the audit table when it does not exist yet.
func (s *PostgresSink) EnsureTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			event TEXT NOT NULL,
			suggestion_id TEXT NOT NULL,
			payload JSONB NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		)`, s.table))
	return err
}

func (s *PostgresSink) Write(ctx context.Context, entry models.AuditEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return errors.NewAuditMirrorFailedError(s.Name(), err)
	}

	recordedAt, err := time.Parse(models.TimestampLayout, entry.TS)
	if err != nil {
		return errors.NewAuditMirrorFailedError(s.Name(), err)
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (event, suggestion_id, payload, recorded_at)
		VALUES ($1, $2, $3, $4)`, s.table),
		string(entry.Event), suggestionID(entry), payload, recordedAt,
	)
	if err != nil {
		return errors.NewAuditMirrorFailedError(s.Name(), err)
	}
	return nil
}

func (s *PostgresSink) Close() error { return nil }

func suggestionID(entry models.AuditEntry) string {
	if entry.SuggestionID != "" {
		return entry.SuggestionID
	}
	if entry.Detail != nil {
		return entry.Detail.ID
	}
	return ""
}
