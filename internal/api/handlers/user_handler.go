package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/visaprep/internal/services"
)

type UserHandler struct {
	progress   services.ProgressService
	interviews services.InterviewService
}

func NewUserHandler(progress services.ProgressService, interviews services.InterviewService) *UserHandler {
	return &UserHandler{progress: progress, interviews: interviews}
}

func (h *UserHandler) Sessions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	list, err := h.progress.Sessions(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": list})
}

func (h *UserHandler) Progress(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ov, err := h.progress.Overview(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

func (h *UserHandler) DeleteSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.interviews.Delete(c.Request.Context(), c.Param("session_id"), userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
