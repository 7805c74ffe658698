package project

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainproject "github.com/alanyang/project-chat/internal/domain/project"
	projectsvc "github.com/alanyang/project-chat/internal/service/project"
	"github.com/alanyang/project-chat/internal/transport/httpx"
)

// Register mounts the project endpoints. The group must already run
// httpx.RequireUser.
func Register(rg *gin.RouterGroup, svc *projectsvc.Service) {
	rg.POST("/", createProject(svc))
	rg.GET("/", listProjects(svc))
	rg.GET("/:id", getProject(svc))
}

type createProjectReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func createProject(svc *projectsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProjectReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, err := svc.Create(c.Request.Context(), httpx.UserID(c), req.Name, req.Description)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func listProjects(svc *projectsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := svc.List(c.Request.Context(), httpx.UserID(c))
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		if projects == nil {
			projects = []domainproject.Project{}
		}
		c.JSON(http.StatusOK, gin.H{"projects": projects})
	}
}

func getProject(svc *projectsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}

		p, err := svc.Get(c.Request.Context(), id, httpx.UserID(c))
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
