package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	domainprompt "github.com/alanyang/project-chat/internal/domain/prompt"
	portprompt "github.com/alanyang/project-chat/internal/port/prompt"
)

var _ portprompt.Repository = (*PromptRepository)(nil)

type PromptRepository struct {
	db *sql.DB
}

func NewPromptRepository(db *sql.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

func (r *PromptRepository) Create(ctx context.Context, p domainprompt.Prompt) (domainprompt.Prompt, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO prompts (id, project_id, title, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID.String(), p.ProjectID.String(), p.Title, p.Content, toMicros(p.CreatedAt),
	)
	if err != nil {
		return domainprompt.Prompt{}, fmt.Errorf("insert prompt: %w", err)
	}
	p.CreatedAt = fromMicros(toMicros(p.CreatedAt))
	return p, nil
}

func (r *PromptRepository) GetByID(ctx context.Context, id uuid.UUID) (domainprompt.Prompt, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, title, content, created_at FROM prompts WHERE id = ?`, id.String(),
	)
	p, err := scanPrompt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domainprompt.Prompt{}, domainprompt.ErrNotFound
		}
		return domainprompt.Prompt{}, fmt.Errorf("get prompt: %w", err)
	}
	return p, nil
}

func (r *PromptRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domainprompt.Prompt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, title, content, created_at
		 FROM prompts WHERE project_id = ? ORDER BY created_at DESC, rowid DESC`,
		projectID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	var out []domainprompt.Prompt
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prompt row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PromptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM prompts WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}
	if n == 0 {
		return domainprompt.ErrNotFound
	}
	return nil
}

func scanPrompt(row rowScanner) (domainprompt.Prompt, error) {
	var p domainprompt.Prompt
	var created int64
	if err := row.Scan(&p.ID, &p.ProjectID, &p.Title, &p.Content, &created); err != nil {
		return domainprompt.Prompt{}, err
	}
	p.CreatedAt = fromMicros(created)
	return p, nil
}
