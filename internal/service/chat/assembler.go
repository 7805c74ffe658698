package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alanyang/project-chat/internal/domain/conversation"
	domainmessage "github.com/alanyang/project-chat/internal/domain/message"
	domainprompt "github.com/alanyang/project-chat/internal/domain/prompt"
	portmessage "github.com/alanyang/project-chat/internal/port/message"
	portprompt "github.com/alanyang/project-chat/internal/port/prompt"
)

// HistoryWindow is the number of most recent stored messages considered when
// building a context. It is fixed, not a per-call knob.
const HistoryWindow = 20

// Assembler builds the turn sequence sent to a provider from a project's
// prompts and recent messages. It performs no authorization.
type Assembler struct {
	prompts  portprompt.Repository
	messages portmessage.Repository
}

func NewAssembler(prompts portprompt.Repository, messages portmessage.Repository) *Assembler {
	return &Assembler{prompts: prompts, messages: messages}
}

// Assemble returns an optional leading system turn followed by the last
// HistoryWindow messages oldest first, with stored system messages dropped.
func (a *Assembler) Assemble(ctx context.Context, projectID uuid.UUID) ([]conversation.Turn, error) {
	return a.assemble(ctx, projectID, uuid.Nil)
}

// AssembleFor is Assemble for an exchange whose user message is already
// stored: that row is left out of the history and its turn is appended last,
// so the provider sees it exactly once.
func (a *Assembler) AssembleFor(ctx context.Context, projectID uuid.UUID, inbound domainmessage.Message) ([]conversation.Turn, error) {
	turns, err := a.assemble(ctx, projectID, inbound.ID)
	if err != nil {
		return nil, err
	}
	return append(turns, inbound.Turn()), nil
}

func (a *Assembler) assemble(ctx context.Context, projectID, exclude uuid.UUID) ([]conversation.Turn, error) {
	var (
		prompts []domainprompt.Prompt
		recent  []domainmessage.Message
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := a.prompts.ListByProject(gctx, projectID)
		if err != nil {
			return fmt.Errorf("load prompts: %w", err)
		}
		prompts = p
		return nil
	})
	g.Go(func() error {
		m, err := a.messages.ListRecent(gctx, projectID, HistoryWindow)
		if err != nil {
			return fmt.Errorf("load recent messages: %w", err)
		}
		recent = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	turns := make([]conversation.Turn, 0, len(recent)+2)
	if len(prompts) > 0 {
		turns = append(turns, conversation.Turn{Role: conversation.RoleSystem, Content: SystemText(prompts)})
	}
	// recent is newest first.
	for i := len(recent) - 1; i >= 0; i-- {
		m := recent[i]
		if m.Role == conversation.RoleSystem || m.ID == exclude {
			continue
		}
		turns = append(turns, m.Turn())
	}
	return turns, nil
}

// SystemText renders prompts as "title: content" blocks separated by a blank
// line, in the order given.
func SystemText(prompts []domainprompt.Prompt) string {
	parts := make([]string, len(prompts))
	for i, p := range prompts {
		parts[i] = p.Title + ": " + p.Content
	}
	return strings.Join(parts, "\n\n")
}
