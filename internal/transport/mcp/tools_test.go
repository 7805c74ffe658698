package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanyang/project-chat/internal/domain/conversation"
	"github.com/alanyang/project-chat/internal/domain/event"
	domainmessage "github.com/alanyang/project-chat/internal/domain/message"
	domainprompt "github.com/alanyang/project-chat/internal/domain/prompt"
	"github.com/alanyang/project-chat/internal/mocks"
	chatsvc "github.com/alanyang/project-chat/internal/service/chat"
	projectsvc "github.com/alanyang/project-chat/internal/service/project"
	promptsvc "github.com/alanyang/project-chat/internal/service/prompt"
)

// ── helpers ───────────────────────────────────────────────────────────────────

type toolsDeps struct {
	projects *mocks.MockProjectRepository
	owners   *mocks.MockOwnershipChecker
	prompts  *mocks.MockPromptRepository
	messages *mocks.MockMessageRepository
	provider *mocks.MockProvider
	bus      *mocks.MockEventBus
}

func newServices(t *testing.T) (*projectsvc.Service, *promptsvc.Service, *chatsvc.Service, toolsDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := toolsDeps{
		projects: mocks.NewMockProjectRepository(ctrl),
		owners:   mocks.NewMockOwnershipChecker(ctrl),
		prompts:  mocks.NewMockPromptRepository(ctrl),
		messages: mocks.NewMockMessageRepository(ctrl),
		provider: mocks.NewMockProvider(ctrl),
		bus:      mocks.NewMockEventBus(ctrl),
	}
	pSvc := projectsvc.NewService(d.projects)
	prSvc := promptsvc.NewService(d.prompts, d.owners, d.bus)
	cSvc := chatsvc.NewService(d.owners, d.messages, d.prompts, d.provider, d.bus)
	return pSvc, prSvc, cSvc, d
}

func makeReq(args map[string]any) mcpmcp.CallToolRequest {
	var req mcpmcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(r *mcpmcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	b, _ := json.Marshal(r.Content[0])
	var m map[string]any
	json.Unmarshal(b, &m) //nolint:errcheck
	if t, ok := m["text"].(string); ok {
		return t
	}
	return ""
}

func echoCreate(_ context.Context, m domainmessage.Message) (domainmessage.Message, error) {
	return m, nil
}

// ── send_message ──────────────────────────────────────────────────────────────

func TestSendMessageHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		_, _, cSvc, d := newServices(t)
		projectID, user := uuid.New(), uuid.New()

		d.owners.EXPECT().OwnerOf(gomock.Any(), projectID, user).Return(true, nil)
		d.messages.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(echoCreate).Times(2)
		d.prompts.EXPECT().ListByProject(gomock.Any(), projectID).Return(nil, nil)
		d.messages.EXPECT().ListRecent(gomock.Any(), projectID, gomock.Any()).Return(nil, nil)
		d.provider.EXPECT().CreateChatCompletion(gomock.Any(), gomock.Any()).Return("pong", nil)
		d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		res, err := sendMessageHandler(cSvc)(WithUser(context.Background(), user),
			makeReq(map[string]any{"project_id": projectID.String(), "message": "ping"}))
		require.NoError(t, err)

		var reply conversation.Reply
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &reply))
		assert.Equal(t, "pong", reply.Message)
	})

	t.Run("no user", func(t *testing.T) {
		_, _, cSvc, _ := newServices(t)
		res, err := sendMessageHandler(cSvc)(context.Background(),
			makeReq(map[string]any{"project_id": uuid.NewString(), "message": "ping"}))
		require.NoError(t, err)
		assert.Contains(t, resultText(res), "X-User-ID")
	})

	t.Run("invalid project", func(t *testing.T) {
		_, _, cSvc, _ := newServices(t)
		res, err := sendMessageHandler(cSvc)(WithUser(context.Background(), uuid.New()),
			makeReq(map[string]any{"project_id": "nope", "message": "ping"}))
		require.NoError(t, err)
		assert.Equal(t, "error: invalid project_id", resultText(res))
	})

	t.Run("provider failure", func(t *testing.T) {
		_, _, cSvc, d := newServices(t)
		d.owners.EXPECT().OwnerOf(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		d.messages.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(echoCreate)
		d.prompts.EXPECT().ListByProject(gomock.Any(), gomock.Any()).Return(nil, nil)
		d.messages.EXPECT().ListRecent(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		d.provider.EXPECT().CreateChatCompletion(gomock.Any(), gomock.Any()).
			Return("", &conversation.ProviderError{Provider: "gemini", Err: errors.New("timeout")})
		d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		res, err := sendMessageHandler(cSvc)(WithUser(context.Background(), uuid.New()),
			makeReq(map[string]any{"project_id": uuid.NewString(), "message": "ping"}))
		require.NoError(t, err)
		assert.Equal(t, "error: failed to generate response", resultText(res))
	})
}

// ── get_history ───────────────────────────────────────────────────────────────

func TestGetHistoryHandler(t *testing.T) {
	_, _, cSvc, d := newServices(t)
	projectID, user := uuid.New(), uuid.New()
	d.owners.EXPECT().OwnerOf(gomock.Any(), projectID, user).Return(true, nil)
	d.messages.EXPECT().ListRecent(gomock.Any(), projectID, 5).Return([]domainmessage.Message{
		domainmessage.New(projectID, conversation.RoleAssistant, "second"),
		domainmessage.New(projectID, conversation.RoleUser, "first"),
	}, nil)

	res, err := getHistoryHandler(cSvc)(WithUser(context.Background(), user),
		makeReq(map[string]any{"project_id": projectID.String(), "limit": 5}))
	require.NoError(t, err)

	var msgs []domainmessage.Message
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
}

func TestGetHistoryHandler_NotOwner(t *testing.T) {
	_, _, cSvc, d := newServices(t)
	d.owners.EXPECT().OwnerOf(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

	res, err := getHistoryHandler(cSvc)(WithUser(context.Background(), uuid.New()),
		makeReq(map[string]any{"project_id": uuid.NewString()}))
	require.NoError(t, err)
	assert.Equal(t, "error: project not found or access denied", resultText(res))
}

// ── list_prompts ──────────────────────────────────────────────────────────────

func TestListPromptsHandler(t *testing.T) {
	_, prSvc, _, d := newServices(t)
	projectID := uuid.New()
	d.owners.EXPECT().OwnerOf(gomock.Any(), projectID, gomock.Any()).Return(true, nil)
	d.prompts.EXPECT().ListByProject(gomock.Any(), projectID).
		Return([]domainprompt.Prompt{domainprompt.New(projectID, "Tone", "Be brief.")}, nil)

	res, err := listPromptsHandler(prSvc)(WithUser(context.Background(), uuid.New()),
		makeReq(map[string]any{"project_id": projectID.String()}))
	require.NoError(t, err)

	var prompts []domainprompt.Prompt
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &prompts))
	require.Len(t, prompts, 1)
	assert.Equal(t, "Tone", prompts[0].Title)
}

// ── watch_project ─────────────────────────────────────────────────────────────

func TestWatchProjectHandler_NeedsSession(t *testing.T) {
	pSvc, _, _, _ := newServices(t)
	res, err := watchProjectHandler(NewSessionRegistry(), pSvc)(WithUser(context.Background(), uuid.New()),
		makeReq(map[string]any{"project_id": uuid.NewString()}))
	require.NoError(t, err)
	assert.Equal(t, "error: watching requires a session", resultText(res))
}

// ── project_instructions ──────────────────────────────────────────────────────

func TestInstructionsHandler(t *testing.T) {
	_, prSvc, _, d := newServices(t)
	projectID := uuid.New()
	d.owners.EXPECT().OwnerOf(gomock.Any(), projectID, gomock.Any()).Return(true, nil)
	d.prompts.EXPECT().ListByProject(gomock.Any(), projectID).Return([]domainprompt.Prompt{
		domainprompt.New(projectID, "B", "two"),
		domainprompt.New(projectID, "A", "one"),
	}, nil)

	var req mcpmcp.GetPromptRequest
	req.Params.Arguments = map[string]string{"project_id": projectID.String()}
	res, err := instructionsHandler(prSvc)(WithUser(context.Background(), uuid.New()), req)
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)

	text, ok := res.Messages[0].Content.(mcpmcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "B: two\n\nA: one", text.Text)
}

// ── SessionRegistry ───────────────────────────────────────────────────────────

func TestRegistry_WatchUnregister(t *testing.T) {
	reg := NewSessionRegistry()
	projectID := uuid.New()

	reg.Watch("s1", projectID)
	reg.Watch("s2", projectID)
	reg.Watch("s2", uuid.New())
	assert.ElementsMatch(t, []string{"s1", "s2"}, reg.Watchers(projectID))

	assert.True(t, reg.Unregister("s1"))
	assert.False(t, reg.Unregister("s1"))
	assert.Equal(t, []string{"s2"}, reg.Watchers(projectID))
}

func TestRegistry_NotifyProject(t *testing.T) {
	t.Run("no watchers is a no-op", func(t *testing.T) {
		reg := NewSessionRegistry()
		err := reg.NotifyProject(context.Background(), event.New(event.TypeMessageCreated, uuid.New(), uuid.New()))
		assert.NoError(t, err)
	})

	t.Run("watchers without server", func(t *testing.T) {
		reg := NewSessionRegistry()
		projectID := uuid.New()
		reg.Watch("s1", projectID)
		err := reg.NotifyProject(context.Background(), event.New(event.TypeMessageCreated, projectID, uuid.New()))
		assert.Error(t, err)
	})
}
