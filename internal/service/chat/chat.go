// Package chat runs one conversational exchange per call: ownership check,
// user message write, context assembly, provider call, assistant message write.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/alanyang/project-chat/internal/domain/conversation"
	"github.com/alanyang/project-chat/internal/domain/event"
	domainmessage "github.com/alanyang/project-chat/internal/domain/message"
	"github.com/alanyang/project-chat/internal/metrics"
	portbus "github.com/alanyang/project-chat/internal/port/eventbus"
	portllm "github.com/alanyang/project-chat/internal/port/llm"
	portlocker "github.com/alanyang/project-chat/internal/port/locker"
	portmessage "github.com/alanyang/project-chat/internal/port/message"
	portproject "github.com/alanyang/project-chat/internal/port/project"
	portprompt "github.com/alanyang/project-chat/internal/port/prompt"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

type Service struct {
	owners    portproject.OwnershipChecker
	messages  portmessage.Repository
	assembler *Assembler
	provider  portllm.Provider
	bus       portbus.EventBus

	locker       portlocker.AdvisoryLocker
	metrics      *metrics.Metrics
	dedupInbound bool
}

type Option func(*Service)

// WithLocker serialises SendMessage per project. Without it concurrent sends
// to one project may interleave their reads and writes.
func WithLocker(l portlocker.AdvisoryLocker) Option {
	return func(s *Service) { s.locker = l }
}

// WithInboundDedup keeps the just-stored user message out of the history
// window so the provider sees it once. By default the window includes it and
// the turn is appended again.
func WithInboundDedup() Option {
	return func(s *Service) { s.dedupInbound = true }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(
	owners portproject.OwnershipChecker,
	messages portmessage.Repository,
	prompts portprompt.Repository,
	provider portllm.Provider,
	bus portbus.EventBus,
	opts ...Option,
) *Service {
	s := &Service{
		owners:    owners,
		messages:  messages,
		assembler: NewAssembler(prompts, messages),
		provider:  provider,
		bus:       bus,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SendMessage stores the user's text, asks the provider for a reply and
// stores that too. The user message is written before the provider is called
// and is kept when the provider fails; in that case no assistant message is
// written and the error wraps conversation.ErrGenerationFailed.
func (s *Service) SendMessage(ctx context.Context, projectID, userID uuid.UUID, text string) (conversation.Reply, error) {
	if err := s.authorize(ctx, projectID, userID); err != nil {
		return conversation.Reply{}, err
	}

	if s.locker == nil {
		return s.exchange(ctx, projectID, text)
	}

	var reply conversation.Reply
	err := s.locker.WithLock(ctx, portlocker.KeyFor(projectID), func(ctx context.Context) error {
		var err error
		reply, err = s.exchange(ctx, projectID, text)
		return err
	})
	return reply, err
}

func (s *Service) exchange(ctx context.Context, projectID uuid.UUID, text string) (conversation.Reply, error) {
	inbound, err := s.store(ctx, domainmessage.New(projectID, conversation.RoleUser, text))
	if err != nil {
		return conversation.Reply{}, fmt.Errorf("save user message: %w", err)
	}

	turns, err := s.turnsFor(ctx, projectID, inbound)
	if err != nil {
		return conversation.Reply{}, fmt.Errorf("assemble context: %w", err)
	}

	answer, err := s.provider.CreateChatCompletion(ctx, turns)
	if err != nil {
		return conversation.Reply{}, fmt.Errorf("%w: %w", conversation.ErrGenerationFailed, err)
	}

	saved, err := s.store(ctx, domainmessage.New(projectID, conversation.RoleAssistant, answer))
	if err != nil {
		return conversation.Reply{}, fmt.Errorf("save assistant message: %w", err)
	}

	slog.InfoContext(ctx, "chat exchange completed",
		"project_id", projectID, "context_turns", len(turns), "message_id", saved.ID)
	return conversation.Reply{Message: saved.Content, MessageID: saved.ID.String()}, nil
}

func (s *Service) turnsFor(ctx context.Context, projectID uuid.UUID, inbound domainmessage.Message) ([]conversation.Turn, error) {
	if s.dedupInbound {
		return s.assembler.AssembleFor(ctx, projectID, inbound)
	}
	turns, err := s.assembler.Assemble(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return append(turns, inbound.Turn()), nil
}

// GetHistory returns up to limit of the most recent messages in chronological
// order. limit <= 0 selects DefaultHistoryLimit; larger values are capped at
// MaxHistoryLimit. Every role is returned, including system.
func (s *Service) GetHistory(ctx context.Context, projectID, userID uuid.UUID, limit int) ([]domainmessage.Message, error) {
	if err := s.authorize(ctx, projectID, userID); err != nil {
		return nil, err
	}

	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	msgs, err := s.messages.ListRecent(ctx, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if msgs == nil {
		msgs = []domainmessage.Message{}
	}
	slices.Reverse(msgs)
	return msgs, nil
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

// store persists m and announces it. Publishing is best effort.
func (s *Service) store(ctx context.Context, m domainmessage.Message) (domainmessage.Message, error) {
	saved, err := s.messages.Create(ctx, m)
	if err != nil {
		return domainmessage.Message{}, err
	}
	s.metrics.RecordMessage(string(saved.Role))

	if err := s.bus.Publish(ctx, event.New(event.TypeMessageCreated, saved.ProjectID, saved.ID)); err != nil {
		slog.ErrorContext(ctx, "failed to publish message event", "message_id", saved.ID, "error", err)
	}
	return saved, nil
}
