package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainproject "github.com/alanyang/project-chat/internal/domain/project"
	portproject "github.com/alanyang/project-chat/internal/port/project"
)

var _ portproject.Repository = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const projectColumns = `id, owner_id, name, COALESCE(description, ''), created_at`

func (r *Repository) Create(ctx context.Context, p domainproject.Project) (domainproject.Project, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO projects (id, owner_id, name, description, created_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		 RETURNING `+projectColumns,
		p.ID, p.OwnerID, p.Name, p.Description, p.CreatedAt,
	)

	out, err := scanProject(row)
	if err != nil {
		return domainproject.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return out, nil
}

func (r *Repository) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (domainproject.Project, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1 AND owner_id = $2`, id, ownerID,
	)

	out, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainproject.Project{}, domainproject.ErrNotFound
		}
		return domainproject.Project{}, fmt.Errorf("get project: %w", err)
	}
	return out, nil
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domainproject.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []domainproject.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *Repository) IsOwner(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1 AND owner_id = $2)`, id, ownerID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check project owner: %w", err)
	}
	return ok, nil
}

func scanProject(row pgx.Row) (domainproject.Project, error) {
	var p domainproject.Project
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt)
	return p, err
}
