package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/updater"
)

type updateResponse struct {
	updater.State
	NotesHTML string `json:"notesHtml,omitempty"`
}

func newUpdateResponse(st updater.State) updateResponse {
	resp := updateResponse{State: st}
	if st.Info != nil && st.Info.Body != "" {
		resp.NotesHTML = updater.RenderNotes(st.Info.Body)
	}
	return resp
}

func (s *Service) requireUpdater(c *gin.Context) bool {
	if s.updater == nil {
		errors.Err(c, errors.Unsupported("updates are disabled"))
		return false
	}
	return true
}

func (s *Service) handleUpdateState(c *gin.Context) {
	if !s.requireUpdater(c) {
		return
	}
	c.JSON(http.StatusOK, newUpdateResponse(s.updater.Snapshot()))
}

func (s *Service) handleUpdateCheck(c *gin.Context) {
	if !s.requireUpdater(c) {
		return
	}
	if err := s.updater.CheckForUpdates(c.Request.Context(), false); err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, newUpdateResponse(s.updater.Snapshot()))
}

// handleUpdateInstall starts the download in the background; progress is
// streamed on /api/v1/events.
func (s *Service) handleUpdateInstall(c *gin.Context) {
	if !s.requireUpdater(c) {
		return
	}
	st := s.updater.Snapshot()
	if st.Status.Active() {
		errors.Err(c, errors.ErrUpdateInProgress)
		return
	}
	if st.Info == nil {
		errors.Err(c, errors.ErrNoUpdateAvailable)
		return
	}
	go func() {
		if err := s.updater.DownloadAndInstall(s.ctx); err != nil {
			log.Err(err).Msg("update install failed")
		}
	}()
	c.JSON(http.StatusAccepted, newUpdateResponse(s.updater.Snapshot()))
}

func (s *Service) handleUpdateDismiss(c *gin.Context) {
	if !s.requireUpdater(c) {
		return
	}
	if err := s.updater.Dismiss(); err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, newUpdateResponse(s.updater.Snapshot()))
}
