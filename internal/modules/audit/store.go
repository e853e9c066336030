// README: Audit store backed by PostgreSQL.
package audit

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, e Event) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO audit_events (
            entity_type, entity_id, from_status, to_status, actor, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6)`,
		e.EntityType,
		e.EntityID,
		e.FromStatus,
		e.ToStatus,
		e.Actor,
		e.CreatedAt,
	)
	return err
}

func (s *Store) ListByEntity(ctx context.Context, entityType, entityID string) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, entity_type, entity_id, from_status, to_status, actor, created_at
        FROM audit_events
        WHERE entity_type = $1 AND entity_id = $2
        ORDER BY created_at DESC, id DESC`,
		entityType, entityID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.FromStatus, &e.ToStatus, &e.Actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
