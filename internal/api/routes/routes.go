package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/visaprep/internal/api/handlers"
	"github.com/yoockh/visaprep/internal/api/middleware"
)

type Deps struct {
	Auth        *handlers.AuthHandler
	Interview   *handlers.InterviewHandler
	Completions *handlers.CompletionsHandler
	User        *handlers.UserHandler
	WS          *handlers.WSHandler

	Environment string
	JWTSecret   string
	JWTIssuer   string

	// FrontendOrigin restricts CORS on the /api routes; empty allows any.
	FrontendOrigin string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", handlers.Health(d.Environment))

	// Voice agent: no bearer auth, open CORS
	agent := r.Group("/chat")
	agent.Use(middleware.CORS("*", http.MethodPost, http.MethodOptions))
	agent.POST("/completions", d.Completions.Create)
	agent.OPTIONS("/completions", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := r.Group("/api")
	api.Use(middleware.CORS(d.FrontendOrigin))
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api.POST("/auth/signup", d.Auth.Signup)
	api.POST("/auth/login", d.Auth.Login)

	// Protected routes (JWT)
	auth := api.Group("/")
	auth.Use(middleware.JWTAuth(d.JWTSecret, d.JWTIssuer))

	auth.GET("/auth/profile", d.Auth.GetProfile)
	auth.PUT("/auth/profile", d.Auth.UpdateProfile)

	auth.POST("/interview/start", d.Interview.Start)
	auth.POST("/interview/gemini-proxy", d.Interview.GeminiProxy)
	auth.POST("/interview/analyze", d.Interview.Analyze)
	auth.POST("/interview/end/:session_id", d.Interview.End)
	auth.GET("/interview/session/:session_id", d.Interview.GetSession)
	auth.GET("/interview/session/:session_id/turns", d.Interview.Turns)

	auth.GET("/user/sessions", d.User.Sessions)
	auth.GET("/user/progress", d.User.Progress)
	auth.DELETE("/user/sessions/:session_id", d.User.DeleteSession)

	// WebSocket
	r.GET("/ws/session/:session_id", middleware.JWTAuth(d.JWTSecret, d.JWTIssuer), d.WS.SessionFeed)
}
