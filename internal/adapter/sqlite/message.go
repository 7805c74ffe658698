package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	domainmessage "github.com/alanyang/project-chat/internal/domain/message"
	portmessage "github.com/alanyang/project-chat/internal/port/message"
)

var _ portmessage.Repository = (*MessageRepository)(nil)

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m domainmessage.Message) (domainmessage.Message, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, project_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID.String(), m.ProjectID.String(), string(m.Role), m.Content, toMicros(m.CreatedAt),
	)
	if err != nil {
		return domainmessage.Message{}, fmt.Errorf("insert message: %w", err)
	}
	m.CreatedAt = fromMicros(toMicros(m.CreatedAt))
	return m, nil
}

func (r *MessageRepository) ListRecent(ctx context.Context, projectID uuid.UUID, limit int) ([]domainmessage.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, role, content, created_at
		 FROM messages WHERE project_id = ?
		 ORDER BY created_at DESC, seq DESC
		 LIMIT ?`,
		projectID.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []domainmessage.Message
	for rows.Next() {
		var m domainmessage.Message
		var created int64
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		m.CreatedAt = fromMicros(created)
		out = append(out, m)
	}
	return out, rows.Err()
}
