package archive

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresRepository implements Repository over the archived_events table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an archive repository using the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save persists the record. It sets rec.ID on success.
func (r *PostgresRepository) Save(ctx context.Context, rec *Record) error {
	payload := rec.Payload
	if payload == nil {
		payload = []byte("{}")
	}
	return r.db.QueryRowContext(ctx,
		`INSERT INTO archived_events (session_id, user_id, event_name, base_type, payload, event_time, received_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		rec.SessionID, rec.UserID, rec.EventName, rec.BaseType, payload, nullTime(rec.EventTime), rec.ReceivedAt,
	).Scan(&rec.ID)
}

// GetByID returns the record for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, session_id, user_id, event_name, base_type, payload, event_time, received_at
		 FROM archived_events WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// ListBySession returns archived events for the given session id, newest
// first, paginated by limit and offset.
func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID string, limit, offset int32) ([]*Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, user_id, event_name, base_type, payload, event_time, received_at
		 FROM archived_events WHERE session_id = $1
		 ORDER BY received_at DESC LIMIT $2 OFFSET $3`,
		sessionID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var eventTime sql.NullTime
	if err := row.Scan(&rec.ID, &rec.SessionID, &rec.UserID, &rec.EventName, &rec.BaseType,
		&rec.Payload, &eventTime, &rec.ReceivedAt); err != nil {
		return nil, err
	}
	if eventTime.Valid {
		t := eventTime.Time
		rec.EventTime = &t
	}
	return &rec, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
