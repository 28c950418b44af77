package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/visaprep/internal/services"
	"github.com/yoockh/visaprep/internal/utils"
)

// CompletionsHandler speaks the OpenAI chat-completions protocol to the
// voice agent.
type CompletionsHandler struct {
	svc   services.CompletionService
	model string
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewCompletionsHandler(svc services.CompletionService, model string, log logrus.FieldLogger) *CompletionsHandler {
	return &CompletionsHandler{svc: svc, model: model, log: log, now: time.Now}
}

type ChatCompletionRequest struct {
	Messages  []services.ChatMessage `json:"messages"`
	Stream    bool                   `json:"stream"`
	ExtraBody *agentExtraBody        `json:"elevenlabs_extra_body,omitempty"`
}

type agentExtraBody struct {
	SessionID string `json:"sessionId"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionChoice struct {
	Index        int               `json:"index"`
	Message      completionMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

type completionDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

type chunkChoice struct {
	Index        int             `json:"index"`
	Delta        completionDelta `json:"delta"`
	FinishReason *string         `json:"finish_reason"`
}

type completionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatCompletion struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []completionChoice `json:"choices"`
	Usage   completionUsage    `json:"usage"`
}

type chatCompletionChunk struct {
	ID      string           `json:"id"`
	Object  string           `json:"object"`
	Created int64            `json:"created"`
	Model   string           `json:"model"`
	Choices []chunkChoice    `json:"choices"`
	Usage   *completionUsage `json:"usage,omitempty"`
}

func (h *CompletionsHandler) Create(c *gin.Context) {
	const op = "CompletionsHandler.Create"

	var req ChatCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeOpenAIError(c, utils.E(utils.CodeInvalidArgument, op, "Messages array is required", err))
		return
	}

	sessionID := c.Query("sessionId")
	if sessionID == "" && req.ExtraBody != nil {
		sessionID = req.ExtraBody.SessionID
	}

	res, err := h.svc.Complete(c.Request.Context(), services.CompletionRequest{
		SessionID: sessionID,
		Messages:  req.Messages,
	})
	if err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{"op": op, "session_id": sessionID}).Warn("completion failed")
		writeOpenAIError(c, err)
		return
	}

	now := h.now()
	id := "chatcmpl-" + strconv.FormatInt(now.UnixMilli(), 10)
	usage := estimateUsage(req.Messages, res.Content)

	if !req.Stream {
		c.JSON(http.StatusOK, chatCompletion{
			ID:      id,
			Object:  "chat.completion",
			Created: now.Unix(),
			Model:   h.model,
			Choices: []completionChoice{{
				Index:        0,
				Message:      completionMessage{Role: "assistant", Content: res.Content},
				FinishReason: "stop",
			}},
			Usage: usage,
		})
		return
	}

	stop := "stop"
	chunks := []chatCompletionChunk{
		{
			ID: id, Object: "chat.completion.chunk", Created: now.Unix(), Model: h.model,
			Choices: []chunkChoice{{Delta: completionDelta{Role: "assistant", Content: res.Content}}},
		},
		{
			ID: id, Object: "chat.completion.chunk", Created: now.Unix(), Model: h.model,
			Choices: []chunkChoice{{Delta: completionDelta{}, FinishReason: &stop}},
			Usage:   &usage,
		},
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	for _, ch := range chunks {
		b, err := json.Marshal(ch)
		if err != nil {
			h.log.WithError(err).WithField("op", op).Error("encode chunk")
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
	}
	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	c.Writer.Flush()
}

func estimateUsage(msgs []services.ChatMessage, content string) completionUsage {
	raw, _ := json.Marshal(msgs)
	u := completionUsage{
		PromptTokens:     utils.EstimateTokens(string(raw)),
		CompletionTokens: utils.EstimateTokens(content),
	}
	u.TotalTokens = u.PromptTokens + u.CompletionTokens
	return u
}
