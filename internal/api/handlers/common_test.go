package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/visaprep/internal/utils"
)

func init() { gin.SetMode(gin.TestMode) }

func record(fn func(c *gin.Context)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)
	return w
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   utils.Code
	}{
		{utils.E(utils.CodeInvalidArgument, "op", "bad", nil), http.StatusBadRequest, utils.CodeInvalidArgument},
		{utils.E(utils.CodeForbidden, "op", "Access denied", nil), http.StatusForbidden, utils.CodeForbidden},
		{utils.E(utils.CodeUpstream, "op", "oracle failed", errors.New("boom")), http.StatusBadGateway, utils.CodeUpstream},
		{utils.ErrNotFound, http.StatusNotFound, utils.CodeInternal},
		{errors.New("plain"), http.StatusInternalServerError, utils.CodeInternal},
	}
	for _, tc := range cases {
		w := record(func(c *gin.Context) { writeError(c, tc.err) })
		var body APIError
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if w.Code != tc.status || body.Code != tc.code {
			t.Errorf("%v: got %d %s", tc.err, w.Code, body.Code)
		}
		if body.Details == "" {
			t.Errorf("%v: details should be set outside release mode", tc.err)
		}
	}
}

func TestWriteErrorHidesDetailsInRelease(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	w := record(func(c *gin.Context) {
		writeError(c, utils.E(utils.CodeInternal, "op", "failed to save", errors.New("pq: connection refused")))
	})
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if _, ok := body["details"]; ok {
		t.Fatalf("details leaked: %s", w.Body.String())
	}
	if body["message"] != "failed to save" {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestWriteOpenAIError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		typ    string
	}{
		{utils.E(utils.CodeInvalidArgument, "op", "Messages array is required", nil), http.StatusBadRequest, "invalid_request_error"},
		{utils.E(utils.CodeNotFound, "op", "Session not found", nil), http.StatusNotFound, "invalid_request_error"},
		{utils.E(utils.CodeUpstream, "op", "oracle failed", nil), http.StatusInternalServerError, "internal_error"},
		{utils.E(utils.CodeForbidden, "op", "Access denied", nil), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		w := record(func(c *gin.Context) { writeOpenAIError(c, tc.err) })
		var body openAIError
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if w.Code != tc.status || body.Error.Type != tc.typ || body.Error.Message == "" {
			t.Errorf("%v: got %d %+v", tc.err, w.Code, body)
		}
	}
}

func TestRequireUserID(t *testing.T) {
	w := record(func(c *gin.Context) {
		if _, ok := requireUserID(c); ok {
			t.Error("expected missing user")
		}
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}

	record(func(c *gin.Context) {
		c.Set("user_id", "u1")
		if id, ok := requireUserID(c); !ok || id != "u1" {
			t.Errorf("got %q %v", id, ok)
		}
	})
}
