package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/visaprep/internal/utils"
)

type APIError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
	Details string     `json:"details,omitempty"`
}

// writeError maps err to its status. Details carry the wrapped cause and are
// only sent outside release mode.
func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	var details string
	if gin.Mode() != gin.ReleaseMode {
		details = err.Error()
	}

	var ae *utils.AppError
	if errors.As(err, &ae) {
		c.JSON(status, APIError{
			Code:    ae.Code,
			Message: ae.Message,
			Details: details,
		})
		return
	}

	c.JSON(status, APIError{
		Code:    utils.CodeInternal,
		Message: http.StatusText(status),
		Details: details,
	})
}

func requireUserID(c *gin.Context) (string, bool) {
	if v, ok := c.Get("user_id"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}

	writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "unauthorized", nil))
	return "", false
}

type openAIError struct {
	Error openAIErrorBody `json:"error"`
}

type openAIErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// writeOpenAIError writes the error envelope chat-completions clients expect.
func writeOpenAIError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)
	typ := "invalid_request_error"
	if status != http.StatusBadRequest && status != http.StatusNotFound {
		status = http.StatusInternalServerError
		typ = "internal_error"
	}

	msg := http.StatusText(status)
	var ae *utils.AppError
	if errors.As(err, &ae) && ae.Message != "" {
		msg = ae.Message
	}
	c.JSON(status, openAIError{Error: openAIErrorBody{Message: msg, Type: typ}})
}
