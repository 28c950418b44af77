package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/services"
	"github.com/yoockh/visaprep/internal/utils"
)

type InterviewHandler struct {
	interviews  services.InterviewService
	completions services.CompletionService
	analysis    services.AnalysisService
}

func NewInterviewHandler(interviews services.InterviewService, completions services.CompletionService, analysis services.AnalysisService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews, completions: completions, analysis: analysis}
}

type StartInterviewRequest struct {
	Mode models.Mode `json:"mode"`
}

type ProxyRequest struct {
	SessionID           string                 `json:"sessionId"`
	ConversationHistory []services.ChatMessage `json:"conversationHistory"`
}

type AnalyzeRequest struct {
	SessionID string `json:"sessionId"`
}

func (h *InterviewHandler) Start(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req StartInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.Start", "invalid request body", err))
		return
	}

	res, err := h.interviews.Start(c.Request.Context(), userID, req.Mode)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *InterviewHandler) GeminiProxy(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.GeminiProxy", "invalid request body", err))
		return
	}

	res, err := h.completions.Proxy(c.Request.Context(), userID, req.SessionID, req.ConversationHistory)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *InterviewHandler) Analyze(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.Analyze", "invalid request body", err))
		return
	}

	analysis, err := h.analysis.Analyze(c.Request.Context(), req.SessionID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}

func (h *InterviewHandler) End(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.interviews.End(c.Request.Context(), c.Param("session_id"), userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *InterviewHandler) GetSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.interviews.Get(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Turns lists the turn log of a session, oldest first, with attached flags.
func (h *InterviewHandler) Turns(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")

	limit := 50
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	rows, err := h.interviews.Turns(c.Request.Context(), sessionID, userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": sessionID,
		"turns":     rows,
	})
}
