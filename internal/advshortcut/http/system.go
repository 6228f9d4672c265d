package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
)

func (s *Service) handleProcesses(c *gin.Context) {
	list, err := s.system.ProcessList(c.Request.Context())
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Service) handleWindows(c *gin.Context) {
	list, err := s.system.WindowList(c.Request.Context())
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Service) handleWindowPosition(c *gin.Context) {
	q := struct {
		Process string `form:"process"`
	}{}
	if err := c.BindQuery(&q); err != nil {
		errors.Err(c, errors.Validation("invalid query", err))
		return
	}
	if q.Process == "" {
		errors.Err(c, errors.RequiredParam("process"))
		return
	}
	cfg, err := s.system.WindowPosition(c.Request.Context(), q.Process)
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Service) handleInstalledApps(c *gin.Context) {
	list, err := s.system.InstalledApps(c.Request.Context())
	if err != nil {
		errors.Err(c, err)
		return
	}
	if list == nil {
		list = []model.InstalledApp{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Service) handleDesktopPath(c *gin.Context) {
	path, err := s.system.DesktopPath()
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

func (s *Service) handleResolveLink(c *gin.Context) {
	var req struct {
		Path string `json:"path"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.Path == "" {
		errors.Err(c, errors.RequiredParam("path"))
		return
	}
	link, err := s.system.ResolveShortcutLink(c.Request.Context(), req.Path)
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (s *Service) handleCreateDesktopShortcut(c *gin.Context) {
	var req model.DesktopShortcutRequest
	if !bindJSON(c, &req) {
		return
	}
	// fill the name from the collection when the caller only sent an id
	if req.Name == "" {
		if sc, ok := s.store.Shortcut(req.ShortcutID); ok {
			req.Name = sc.Name
			if req.Icon == "" {
				req.Icon = sc.Icon
			}
		}
	}
	path, err := s.system.CreateDesktopShortcut(c.Request.Context(), req)
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"path": path})
}
