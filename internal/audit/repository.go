package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides database operations for audit entries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert persists an audit entry.
func (r *Repository) Insert(ctx context.Context, entry Entry) error {
	before, err := json.Marshal(entry.BeforeFields)
	if err != nil {
		return fmt.Errorf("failed to encode before fields: %w", err)
	}
	after, err := json.Marshal(entry.AfterFields)
	if err != nil {
		return fmt.Errorf("failed to encode after fields: %w", err)
	}

	query := `
		INSERT INTO FD_audit_entries (
			id, resource_type, resource_id, action,
			actor_id, actor_contact, before_fields, after_fields, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if _, err := r.pool.Exec(ctx, query,
		entry.ID, entry.ResourceType, entry.ResourceID, entry.Action,
		entry.ActorID, entry.ActorContact, before, after, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// ListByResource returns all audit entries for a resource, newest first.
func (r *Repository) ListByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]Entry, error) {
	query := `
		SELECT id, resource_type, resource_id, action,
			actor_id, actor_contact, before_fields, after_fields, created_at
		FROM FD_audit_entries
		WHERE resource_type = $1 AND resource_id = $2
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, resourceType, resourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var before, after []byte
		if err := rows.Scan(
			&e.ID, &e.ResourceType, &e.ResourceID, &e.Action,
			&e.ActorID, &e.ActorContact, &before, &after, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if len(before) > 0 {
			if err := json.Unmarshal(before, &e.BeforeFields); err != nil {
				return nil, fmt.Errorf("failed to decode before fields: %w", err)
			}
		}
		if len(after) > 0 {
			if err := json.Unmarshal(after, &e.AfterFields); err != nil {
				return nil, fmt.Errorf("failed to decode after fields: %w", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}
	return entries, nil
}
