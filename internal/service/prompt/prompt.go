package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/alanyang/project-chat/internal/domain/conversation"
	"github.com/alanyang/project-chat/internal/domain/event"
	domainprompt "github.com/alanyang/project-chat/internal/domain/prompt"
	portbus "github.com/alanyang/project-chat/internal/port/eventbus"
	portproject "github.com/alanyang/project-chat/internal/port/project"
	portprompt "github.com/alanyang/project-chat/internal/port/prompt"
)

// Service manages a project's prompt documents. Every operation checks that
// the caller owns the project first.
type Service struct {
	repo   portprompt.Repository
	owners portproject.OwnershipChecker
	bus    portbus.EventBus
}

func NewService(repo portprompt.Repository, owners portproject.OwnershipChecker, bus portbus.EventBus) *Service {
	return &Service{repo: repo, owners: owners, bus: bus}
}

func (s *Service) Create(ctx context.Context, projectID, userID uuid.UUID, title, content string) (domainprompt.Prompt, error) {
	if err := s.authorize(ctx, projectID, userID); err != nil {
		return domainprompt.Prompt{}, err
	}

	created, err := s.repo.Create(ctx, domainprompt.New(projectID, title, content))
	if err != nil {
		return domainprompt.Prompt{}, fmt.Errorf("create prompt: %w", err)
	}
	s.publish(ctx, event.New(event.TypePromptCreated, projectID, created.ID))
	return created, nil
}

// List returns the project's prompts newest first.
func (s *Service) List(ctx context.Context, projectID, userID uuid.UUID) ([]domainprompt.Prompt, error) {
	if err := s.authorize(ctx, projectID, userID); err != nil {
		return nil, err
	}

	prompts, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return prompts, nil
}

func (s *Service) Delete(ctx context.Context, promptID, userID uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, promptID)
	if err != nil {
		if errors.Is(err, domainprompt.ErrNotFound) {
			return conversation.ErrNotFoundOrForbidden
		}
		return fmt.Errorf("get prompt: %w", err)
	}
	if err := s.authorize(ctx, p.ProjectID, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, promptID); err != nil {
		if errors.Is(err, domainprompt.ErrNotFound) {
			return conversation.ErrNotFoundOrForbidden
		}
		return fmt.Errorf("delete prompt: %w", err)
	}
	s.publish(ctx, event.New(event.TypePromptDeleted, p.ProjectID, promptID))
	return nil
}

func (s *Service) authorize(ctx context.Context, projectID, userID uuid.UUID) error {
	ok, err := s.owners.OwnerOf(ctx, projectID, userID)
	if err != nil {
		return fmt.Errorf("check ownership: %w", err)
	}
	if !ok {
		return conversation.ErrNotFoundOrForbidden
	}
	return nil
}

func (s *Service) publish(ctx context.Context, e event.Event) {
	if err := s.bus.Publish(ctx, e); err != nil {
		slog.ErrorContext(ctx, "failed to publish prompt event", "type", e.Type, "prompt_id", e.EntityID, "error", err)
	}
}
