package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
)

func (s *Service) initRouter() {
	s.initBaseRouter()
	s.initAPIRouter()
	s.initMCPRouter()
}

func (s *Service) initBaseRouter() {
	s.router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "store": s.store.Status()})
	})

	s.router.NoRoute(s.NoRoute)
}

func (s *Service) initAPIRouter() {
	api := s.router.Group("/api/v1", s.checkStoreStateMiddleware())
	{
		api.GET("/data", s.handleData)
		api.PUT("/shortcuts", s.handleSaveShortcuts)
		api.PUT("/groups", s.handleSaveGroups)

		api.POST("/shortcuts", s.handleAddShortcut)
		api.PUT("/shortcuts/:id", s.handleUpdateShortcut)
		api.DELETE("/shortcuts/:id", s.handleDeleteShortcut)
		api.POST("/shortcuts/:id/execute", s.handleExecuteShortcut)

		api.POST("/groups", s.handleAddGroup)
		api.POST("/groups/reorder", s.handleReorderGroups)
		api.PUT("/groups/:id", s.handleUpdateGroup)
		api.POST("/groups/:id/toggle", s.handleToggleGroup)
		api.DELETE("/groups/:id", s.handleDeleteGroup)
		api.POST("/groups/:id/shortcuts/reorder", s.handleReorderShortcuts)
	}

	// host and update routes do not need the collections
	sys := s.router.Group("/api/v1/system")
	{
		sys.GET("/processes", s.handleProcesses)
		sys.GET("/windows", s.handleWindows)
		sys.GET("/windows/position", s.handleWindowPosition)
		sys.GET("/apps", s.handleInstalledApps)
		sys.GET("/desktop", s.handleDesktopPath)
		sys.POST("/resolve-link", s.handleResolveLink)
		sys.POST("/desktop-shortcut", s.handleCreateDesktopShortcut)
	}

	upd := s.router.Group("/api/v1/update")
	{
		upd.GET("", s.handleUpdateState)
		upd.POST("/check", s.handleUpdateCheck)
		upd.POST("/install", s.handleUpdateInstall)
		upd.POST("/dismiss", s.handleUpdateDismiss)
	}

	s.router.GET("/api/v1/events", s.handleEvents)
}

func (s *Service) initMCPRouter() {
	s.router.Any("/mcp", func(c *gin.Context) {
		s.mcpStreamableServer.ServeHTTP(c.Writer, c.Request)
	})
	s.router.Any("/sse", func(c *gin.Context) {
		s.mcpSSEServer.ServeHTTP(c.Writer, c.Request)
	})
	s.router.Any("/message", func(c *gin.Context) {
		s.mcpSSEServer.ServeHTTP(c.Writer, c.Request)
	})
}

// NoRoute answers unknown paths with a JSON 404.
func (s *Service) NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "path": c.Request.URL.Path})
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		errors.Err(c, errors.Validation("invalid request body", err))
		return false
	}
	return true
}

func (s *Service) handleData(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *Service) handleSaveShortcuts(c *gin.Context) {
	var list []model.Shortcut
	if !bindJSON(c, &list) {
		return
	}
	if err := s.store.UpdateShortcuts(c.Request.Context(), list); err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, s.store.Shortcuts())
}

func (s *Service) handleSaveGroups(c *gin.Context) {
	var list []model.Group
	if !bindJSON(c, &list) {
		return
	}
	if err := s.store.UpdateGroups(c.Request.Context(), list); err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, s.store.Groups())
}

func (s *Service) handleAddShortcut(c *gin.Context) {
	var sc model.Shortcut
	if !bindJSON(c, &sc) {
		return
	}
	out, err := s.store.AddShortcut(c.Request.Context(), sc)
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (s *Service) handleUpdateShortcut(c *gin.Context) {
	var sc model.Shortcut
	if !bindJSON(c, &sc) {
		return
	}
	sc.ID = c.Param("id")
	out, err := s.store.UpdateShortcut(c.Request.Context(), sc)
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Service) handleDeleteShortcut(c *gin.Context) {
	if err := s.store.DeleteShortcut(c.Request.Context(), c.Param("id")); err != nil {
		errors.Err(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleExecuteShortcut runs the shortcut synchronously. A failed run
// answers with the error code and still carries the logs collected so far.
func (s *Service) handleExecuteShortcut(c *gin.Context) {
	id := c.Param("id")
	sc, ok := s.store.Shortcut(id)
	if !ok {
		errors.Err(c, errors.ErrShortcutNotFound(id))
		return
	}
	logs, err := s.executor.Execute(c.Request.Context(), sc)
	if logs == nil {
		logs = []string{}
	}
	if err != nil {
		code := errors.GetCode(err)
		if code == 0 {
			code = http.StatusInternalServerError
		}
		c.JSON(code, gin.H{
			"type":    errors.GetType(err),
			"error":   errors.Message(err),
			"logs":    logs,
			"success": false,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "success": true})
}

type orderRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

func (s *Service) handleReorderShortcuts(c *gin.Context) {
	var req orderRequest
	if !bindJSON(c, &req) {
		return
	}
	groupID := c.Param("id")
	if err := s.store.ReorderShortcuts(c.Request.Context(), groupID, req.IDs); err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ShortcutsInGroup(s.store.Shortcuts(), groupID))
}

func (s *Service) handleAddGroup(c *gin.Context) {
	var g model.Group
	if !bindJSON(c, &g) {
		return
	}
	if strings.TrimSpace(g.Name) == "" {
		errors.Err(c, errors.RequiredParam("name"))
		return
	}
	out, err := s.store.AddGroup(c.Request.Context(), g)
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (s *Service) handleUpdateGroup(c *gin.Context) {
	var g model.Group
	if !bindJSON(c, &g) {
		return
	}
	g.ID = c.Param("id")
	out, err := s.store.UpdateGroup(c.Request.Context(), g)
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Service) handleToggleGroup(c *gin.Context) {
	out, err := s.store.ToggleGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Service) handleDeleteGroup(c *gin.Context) {
	if err := s.store.DeleteGroup(c.Request.Context(), c.Param("id")); err != nil {
		errors.Err(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) handleReorderGroups(c *gin.Context) {
	var req orderRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.store.ReorderGroups(c.Request.Context(), req.IDs); err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, s.store.Groups())
}
