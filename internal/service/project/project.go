package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/alanyang/project-chat/internal/domain/conversation"
	domainproject "github.com/alanyang/project-chat/internal/domain/project"
	portproject "github.com/alanyang/project-chat/internal/port/project"
)

var _ portproject.OwnershipChecker = (*Service)(nil)

// Service owns project lifecycle and is the ownership authority for the
// prompt and chat services.
type Service struct {
	repo portproject.Repository
}

func NewService(repo portproject.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, name, description string) (domainproject.Project, error) {
	created, err := s.repo.Create(ctx, domainproject.New(ownerID, name, description))
	if err != nil {
		return domainproject.Project{}, fmt.Errorf("create project: %w", err)
	}
	return created, nil
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]domainproject.Project, error) {
	projects, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Get returns conversation.ErrNotFoundOrForbidden for a missing project and
// for one owned by somebody else alike.
func (s *Service) Get(ctx context.Context, id, ownerID uuid.UUID) (domainproject.Project, error) {
	p, err := s.repo.GetForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, domainproject.ErrNotFound) {
			return domainproject.Project{}, conversation.ErrNotFoundOrForbidden
		}
		return domainproject.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *Service) OwnerOf(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	ok, err := s.repo.IsOwner(ctx, projectID, userID)
	if err != nil {
		return false, fmt.Errorf("check ownership: %w", err)
	}
	return ok, nil
}
