package project

import (
	"context"

	"github.com/google/uuid"

	domainproject "github.com/alanyang/project-chat/internal/domain/project"
)

// Repository manages project persistence.
// [DIP] service/project depends on this interface, not on a concrete storage.
type Repository interface {
	Create(ctx context.Context, p domainproject.Project) (domainproject.Project, error)

	// GetForOwner returns domainproject.ErrNotFound both when the project does
	// not exist and when it belongs to another owner.
	GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (domainproject.Project, error)

	// ListByOwner returns the owner's projects, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domainproject.Project, error)

	IsOwner(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
}

// OwnershipChecker is the access-control contract consumed by the chat and
// prompt services. A false result is treated exactly like a missing project.
type OwnershipChecker interface {
	OwnerOf(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
}
