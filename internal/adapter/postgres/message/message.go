package message

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	domainmessage "github.com/alanyang/project-chat/internal/domain/message"
	portmessage "github.com/alanyang/project-chat/internal/port/message"
)

var _ portmessage.Repository = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, m domainmessage.Message) (domainmessage.Message, error) {
	var created domainmessage.Message
	err := r.pool.QueryRow(ctx,
		`INSERT INTO messages (id, project_id, role, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, project_id, role, content, created_at`,
		m.ID, m.ProjectID, string(m.Role), m.Content, m.CreatedAt,
	).Scan(&created.ID, &created.ProjectID, &created.Role, &created.Content, &created.CreatedAt)
	if err != nil {
		return domainmessage.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return created, nil
}

// ListRecent breaks created_at ties on the insertion sequence so two rows
// written in the same microsecond still come back in a strict order.
func (r *Repository) ListRecent(ctx context.Context, projectID uuid.UUID, limit int) ([]domainmessage.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, project_id, role, content, created_at
		 FROM messages WHERE project_id = $1
		 ORDER BY created_at DESC, seq DESC
		 LIMIT $2`, projectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []domainmessage.Message
	for rows.Next() {
		var m domainmessage.Message
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
