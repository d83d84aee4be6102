package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditEvent is one persisted administrative action.
type AuditEvent struct {
	ID        string
	Action    string
	SessionID string
	SubjectID string
	Detail    json.RawMessage
	CreatedAt time.Time
}

// AuditRepository manages audit trail persistence.
type AuditRepository interface {
	Create(ctx context.Context, event *AuditEvent) error
	ListRecent(ctx context.Context, limit int) ([]AuditEvent, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository constructs repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Create(ctx context.Context, event *AuditEvent) error {
	const query = `
        INSERT INTO audit_events (id, action, session_id, subject_id, detail, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`
	var detail any
	if len(event.Detail) > 0 {
		detail = []byte(event.Detail)
	}
	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Action,
		event.SessionID,
		event.SubjectID,
		detail,
		event.CreatedAt,
	)
	return err
}

func (r *auditRepository) ListRecent(ctx context.Context, limit int) ([]AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id::text, action, session_id, subject_id, COALESCE(detail, 'null'::jsonb), created_at
        FROM audit_events
        ORDER BY created_at DESC
        LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditEvent
	for rows.Next() {
		var (
			e      AuditEvent
			detail []byte
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.SessionID, &e.SubjectID, &detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Detail = json.RawMessage(detail)
		out = append(out, e)
	}
	return out, rows.Err()
}
