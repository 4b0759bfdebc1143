package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the part of *pgxpool.Pool the storage uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// PostgresStorage writes events to the auth_events table.
type PostgresStorage struct {
	db DB
}

func NewPostgresStorage(db DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

const insertEvent = `INSERT INTO auth_events
	(id, action, result, user_id, contact_hash, reason, request_id, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (s *PostgresStorage) Store(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range events {
		var meta []byte
		if len(e.Metadata) > 0 {
			var err error
			if meta, err = json.Marshal(e.Metadata); err != nil {
				return fmt.Errorf("audit: encode metadata: %w", err)
			}
		}
		batch.Queue(insertEvent,
			e.ID, string(e.Action), string(e.Result), e.UserID, e.ContactHash,
			e.Reason, e.RequestID, meta, e.CreatedAt,
		)
	}

	br := s.db.SendBatch(ctx, batch)
	defer br.Close()
	for range events {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("audit: store event: %w", err)
		}
	}
	return nil
}

func (s *PostgresStorage) Query(ctx context.Context, c Criteria) ([]Event, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if c.UserID != "" {
		add("user_id = $%d", c.UserID)
	}
	if c.ContactHash != "" {
		add("contact_hash = $%d", c.ContactHash)
	}
	if c.Action != "" {
		add("action = $%d", string(c.Action))
	}
	if c.Result != "" {
		add("result = $%d", string(c.Result))
	}
	if !c.Since.IsZero() {
		add("created_at >= $%d", c.Since)
	}
	if !c.Until.IsZero() {
		add("created_at < $%d", c.Until)
	}

	q := `SELECT id, action, result, user_id, contact_hash, reason, request_id, metadata, created_at FROM auth_events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id"
	if c.Limit > 0 {
		args = append(args, c.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e              Event
			id             uuid.UUID
			action, result string
			meta           []byte
			createdAt      time.Time
		)
		if err := rows.Scan(&id, &action, &result, &e.UserID, &e.ContactHash, &e.Reason, &e.RequestID, &meta, &createdAt); err != nil {
			return nil, fmt.Errorf("audit: scan event: %w", err)
		}
		e.ID = id
		e.Action = Action(action)
		e.Result = Result(result)
		e.CreatedAt = createdAt.UTC()
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, fmt.Errorf("audit: decode metadata: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
