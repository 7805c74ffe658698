package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	domainproject "github.com/alanyang/project-chat/internal/domain/project"
	portproject "github.com/alanyang/project-chat/internal/port/project"
)

var _ portproject.Repository = (*ProjectRepository)(nil)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, p domainproject.Project) (domainproject.Project, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, owner_id, name, description, created_at) VALUES (?, ?, ?, NULLIF(?, ''), ?)`,
		p.ID.String(), p.OwnerID.String(), p.Name, p.Description, toMicros(p.CreatedAt),
	)
	if err != nil {
		return domainproject.Project{}, fmt.Errorf("insert project: %w", err)
	}
	p.CreatedAt = fromMicros(toMicros(p.CreatedAt))
	return p, nil
}

func (r *ProjectRepository) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (domainproject.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, COALESCE(description, ''), created_at
		 FROM projects WHERE id = ? AND owner_id = ?`,
		id.String(), ownerID.String(),
	)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domainproject.Project{}, domainproject.ErrNotFound
		}
		return domainproject.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domainproject.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, COALESCE(description, ''), created_at
		 FROM projects WHERE owner_id = ? ORDER BY created_at DESC, rowid DESC`,
		ownerID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []domainproject.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProjectRepository) IsOwner(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE id = ? AND owner_id = ?)`,
		id.String(), ownerID.String(),
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check project owner: %w", err)
	}
	return ok, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (domainproject.Project, error) {
	var p domainproject.Project
	var created int64
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &created); err != nil {
		return domainproject.Project{}, err
	}
	p.CreatedAt = fromMicros(created)
	return p, nil
}
