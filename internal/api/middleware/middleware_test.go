package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/yoockh/visaprep/internal/utils"
)

const secret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func protected() *gin.Engine {
	r := gin.New()
	r.Use(JWTAuth(secret, "visaprep"))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	good, err := utils.SignToken(secret, "visaprep", "user-1", time.Hour, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	expired, _ := utils.SignToken(secret, "visaprep", "user-1", time.Hour, time.Now().Add(-2*time.Hour))
	otherIssuer, _ := utils.SignToken(secret, "someone-else", "user-1", time.Hour, time.Now())

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"valid", "Bearer " + good, "", http.StatusOK},
		{"query token", "", "?access_token=" + good, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", "", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, "", http.StatusUnauthorized},
		{"issuer", "Bearer " + otherIssuer, "", http.StatusUnauthorized},
	}
	r := protected()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d", w.Code, tc.status)
			}
			if tc.status == http.StatusOK && w.Body.String() != "user-1" {
				t.Fatalf("user_id = %q", w.Body.String())
			}
		})
	}
}

func TestJWTAuthWithoutSecret(t *testing.T) {
	r := gin.New()
	r.Use(JWTAuth("", ""))
	r.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("*", http.MethodPost, http.MethodOptions))
	r.POST("/chat", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.OPTIONS("/chat", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/chat", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS" {
		t.Fatalf("methods = %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString("{}")))
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("post: %d %q", w.Code, w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestRequestLogger(t *testing.T) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)

	r := gin.New()
	r.Use(RequestLogger(l))
	r.GET("/missing/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/missing/1", nil)
	req.Header.Set("X-Request-Id", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("X-Request-Id") != "req-42" {
		t.Fatal("request id not echoed")
	}
	e := hook.LastEntry()
	if e == nil || e.Level != logrus.WarnLevel {
		t.Fatalf("want one warn entry, got %+v", e)
	}
	if e.Data["request_id"] != "req-42" || e.Data["path"] != "/missing/:id" {
		t.Fatalf("fields = %v", e.Data)
	}
}
