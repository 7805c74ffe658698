package project_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainproject "github.com/alanyang/project-chat/internal/domain/project"
	"github.com/alanyang/project-chat/internal/mocks"
	projectsvc "github.com/alanyang/project-chat/internal/service/project"
	"github.com/alanyang/project-chat/internal/transport/httpx"
	transportproject "github.com/alanyang/project-chat/internal/transport/project"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(svc *projectsvc.Service) *gin.Engine {
	r := gin.New()
	transportproject.Register(r.Group("/projects", httpx.RequireUser()), svc)
	return r
}

func newProjectSvc(t *testing.T) (*projectsvc.Service, *mocks.MockProjectRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProjectRepository(ctrl)
	return projectsvc.NewService(repo), repo
}

func do(r http.Handler, method, path string, user uuid.UUID, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequestWithContext(context.Background(), method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != uuid.Nil {
		req.Header.Set(httpx.UserHeader, user.String())
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── POST / (createProject) ────────────────────────────────────────────────────

func TestCreateProject_Success(t *testing.T) {
	svc, repo := newProjectSvc(t)
	r := newRouter(svc)
	owner := uuid.New()

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p domainproject.Project) (domainproject.Project, error) {
			assert.Equal(t, owner, p.OwnerID)
			assert.Equal(t, "support", p.Name)
			return p, nil
		})

	w := do(r, http.MethodPost, "/projects/", owner, map[string]string{"name": "support", "description": "help desk"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var got domainproject.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "help desk", got.Description)
}

func TestCreateProject_BadBody(t *testing.T) {
	svc, _ := newProjectSvc(t)
	w := do(newRouter(svc), http.MethodPost, "/projects/", uuid.New(), map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProject_NoUser(t *testing.T) {
	svc, _ := newProjectSvc(t)
	w := do(newRouter(svc), http.MethodPost, "/projects/", uuid.Nil, map[string]string{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateProject_ServiceError(t *testing.T) {
	svc, repo := newProjectSvc(t)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domainproject.Project{}, errors.New("db error"))

	w := do(newRouter(svc), http.MethodPost, "/projects/", uuid.New(), map[string]string{"name": "x"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

// ── GET / (listProjects) ──────────────────────────────────────────────────────

func TestListProjects_Empty(t *testing.T) {
	svc, repo := newProjectSvc(t)
	owner := uuid.New()
	repo.EXPECT().ListByOwner(gomock.Any(), owner).Return(nil, nil)

	w := do(newRouter(svc), http.MethodGet, "/projects/", owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"projects":[]}`, w.Body.String())
}

// ── GET /:id (getProject) ────────────────────────────────────────────────────

func TestGetProject_Success(t *testing.T) {
	svc, repo := newProjectSvc(t)
	owner, projectID := uuid.New(), uuid.New()
	repo.EXPECT().GetForOwner(gomock.Any(), projectID, owner).
		Return(domainproject.Project{ID: projectID, OwnerID: owner, Name: "proj"}, nil)

	w := do(newRouter(svc), http.MethodGet, "/projects/"+projectID.String(), owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got domainproject.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, projectID, got.ID)
}

func TestGetProject_InvalidID(t *testing.T) {
	svc, _ := newProjectSvc(t)
	w := do(newRouter(svc), http.MethodGet, "/projects/not-a-uuid", uuid.New(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Project not found or access denied"}`, w.Body.String())
}

func TestGetProject_NotOwned(t *testing.T) {
	svc, repo := newProjectSvc(t)
	projectID := uuid.New()
	repo.EXPECT().GetForOwner(gomock.Any(), projectID, gomock.Any()).Return(domainproject.Project{}, domainproject.ErrNotFound)

	w := do(newRouter(svc), http.MethodGet, "/projects/"+projectID.String(), uuid.New(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Project not found or access denied"}`, w.Body.String())
}
