//go:build integration

package integration_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pglocker "github.com/alanyang/project-chat/internal/adapter/postgres/locker"
	pgmessage "github.com/alanyang/project-chat/internal/adapter/postgres/message"
	pgproject "github.com/alanyang/project-chat/internal/adapter/postgres/project"
	pgprompt "github.com/alanyang/project-chat/internal/adapter/postgres/prompt"
	"github.com/alanyang/project-chat/internal/domain/conversation"
	"github.com/alanyang/project-chat/internal/domain/event"
	chatsvc "github.com/alanyang/project-chat/internal/service/chat"
	projectsvc "github.com/alanyang/project-chat/internal/service/project"
	promptsvc "github.com/alanyang/project-chat/internal/service/prompt"
	"github.com/alanyang/project-chat/internal/testutil"
)

// ── test harness ──────────────────────────────────────────────────────────────

// scriptedProvider answers with the number of turns it saw, or fails when
// fail is set.
type scriptedProvider struct {
	calls atomic.Int32
	fail  atomic.Bool
	seen  sync.Map // call number → []conversation.Turn
}

func (p *scriptedProvider) CreateChatCompletion(_ context.Context, turns []conversation.Turn) (string, error) {
	n := p.calls.Add(1)
	p.seen.Store(n, turns)
	if p.fail.Load() {
		return "", &conversation.ProviderError{Provider: "scripted", StatusCode: 503, Err: errors.New("unavailable")}
	}
	return fmt.Sprintf("saw %d turns", len(turns)), nil
}

type testServices struct {
	projects *projectsvc.Service
	prompts  *promptsvc.Service
	chat     *chatsvc.Service
	provider *scriptedProvider
	bus      *testutil.CaptureBus
	owner    uuid.UUID
	project  uuid.UUID
}

func newTestServices(t *testing.T, opts ...chatsvc.Option) *testServices {
	t.Helper()
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()

	projRepo := pgproject.New(pool)
	promptRepo := pgprompt.New(pool)
	msgRepo := pgmessage.New(pool)
	bus := &testutil.CaptureBus{}
	provider := &scriptedProvider{}

	pSvc := projectsvc.NewService(projRepo)
	owner := uuid.New()
	proj, err := pSvc.Create(ctx, owner, "integration-"+uuid.NewString()[:8], "")
	require.NoError(t, err)

	return &testServices{
		projects: pSvc,
		prompts:  promptsvc.NewService(promptRepo, pSvc, bus),
		chat:     chatsvc.NewService(pSvc, msgRepo, promptRepo, provider, bus, append(opts, chatsvc.WithLocker(pglocker.New(pool)))...),
		provider: provider,
		bus:      bus,
		owner:    owner,
		project:  proj.ID,
	}
}

// ── exchanges ─────────────────────────────────────────────────────────────────

func TestChat_ConversationGrowsWithPrompts(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, err := s.prompts.Create(ctx, s.project, s.owner, "Persona", "You are a librarian.")
	require.NoError(t, err)

	r1, err := s.chat.SendMessage(ctx, s.project, s.owner, "hello")
	require.NoError(t, err)
	assert.Equal(t, "saw 3 turns", r1.Message) // system + stored user + appended user

	r2, err := s.chat.SendMessage(ctx, s.project, s.owner, "and again")
	require.NoError(t, err)
	assert.Equal(t, "saw 5 turns", r2.Message) // system + user + assistant + stored user + appended user

	v, ok := s.provider.seen.Load(int32(2))
	require.True(t, ok)
	turns := v.([]conversation.Turn)
	assert.Equal(t, conversation.RoleSystem, turns[0].Role)
	assert.Equal(t, "Persona: You are a librarian.", turns[0].Content)
	assert.Equal(t, "and again", turns[len(turns)-1].Content)
	assert.Equal(t, "and again", turns[len(turns)-2].Content)

	history, err := s.chat.GetHistory(ctx, s.project, s.owner, 0)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, r2.MessageID, history[3].ID.String())
	assert.Len(t, s.bus.ForProject(s.project, event.TypeMessageCreated), 4)
}

func TestChat_ProviderFailurePersistsUserOnly(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	s.provider.fail.Store(true)

	_, err := s.chat.SendMessage(ctx, s.project, s.owner, "anyone there?")
	require.ErrorIs(t, err, conversation.ErrGenerationFailed)

	history, err := s.chat.GetHistory(ctx, s.project, s.owner, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, conversation.RoleUser, history[0].Role)
}

func TestChat_ConcurrentSendsAreSerialised(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	const n = 5
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.chat.SendMessage(ctx, s.project, s.owner, fmt.Sprintf("q%d", i))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	history, err := s.chat.GetHistory(ctx, s.project, s.owner, 0)
	require.NoError(t, err)
	require.Len(t, history, 2*n)
	for i := 0; i < len(history); i += 2 {
		assert.Equal(t, conversation.RoleUser, history[i].Role, "turn %d", i)
		assert.Equal(t, conversation.RoleAssistant, history[i+1].Role, "turn %d", i+1)
	}
}

func TestChat_StrangerIsRejected(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, err := s.chat.SendMessage(ctx, s.project, uuid.New(), "let me in")
	assert.ErrorIs(t, err, conversation.ErrNotFoundOrForbidden)

	_, err = s.chat.GetHistory(ctx, uuid.New(), s.owner, 10)
	assert.ErrorIs(t, err, conversation.ErrNotFoundOrForbidden)
	assert.Zero(t, s.provider.calls.Load())
}
