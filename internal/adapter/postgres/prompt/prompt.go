package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainprompt "github.com/alanyang/project-chat/internal/domain/prompt"
	portprompt "github.com/alanyang/project-chat/internal/port/prompt"
)

var _ portprompt.Repository = (*Repository)(nil)

// Repository implements port/prompt.Repository using Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, p domainprompt.Prompt) (domainprompt.Prompt, error) {
	var out domainprompt.Prompt
	err := r.pool.QueryRow(ctx,
		`INSERT INTO prompts (id, project_id, title, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, project_id, title, content, created_at`,
		p.ID, p.ProjectID, p.Title, p.Content, p.CreatedAt,
	).Scan(&out.ID, &out.ProjectID, &out.Title, &out.Content, &out.CreatedAt)
	if err != nil {
		return domainprompt.Prompt{}, fmt.Errorf("insert prompt: %w", err)
	}
	return out, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domainprompt.Prompt, error) {
	var p domainprompt.Prompt
	err := r.pool.QueryRow(ctx,
		`SELECT id, project_id, title, content, created_at FROM prompts WHERE id = $1`, id,
	).Scan(&p.ID, &p.ProjectID, &p.Title, &p.Content, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainprompt.Prompt{}, domainprompt.ErrNotFound
		}
		return domainprompt.Prompt{}, fmt.Errorf("get prompt: %w", err)
	}
	return p, nil
}

func (r *Repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domainprompt.Prompt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, project_id, title, content, created_at
		 FROM prompts WHERE project_id = $1
		 ORDER BY created_at DESC`, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	var prompts []domainprompt.Prompt
	for rows.Next() {
		var p domainprompt.Prompt
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Title, &p.Content, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prompt row: %w", err)
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM prompts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainprompt.ErrNotFound
	}
	return nil
}
