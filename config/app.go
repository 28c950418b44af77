package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	Port        string
	Env         string
	BackendURL  string
	FrontendURL string
	AgentID     string

	JWTSecret     string
	JWTIssuer     string
	JWTExpiration time.Duration

	DocStore  string // mongo|firestore|memory
	UserStore string // postgres|firestore|memory

	Oracle       string // vertex|genai|mock
	GCPProject   string
	GCPLocation  string
	GeminiAPIKey string
	GeminiModel  string

	NatsURL   string
	NatsToken string

	RedFlagWorkers int
}

// Load reads the process environment. It never fails; backends validate
// their own settings when they are initialised.
func Load() AppConfig {
	return AppConfig{
		Port:        envStr("PORT", "8080"),
		Env:         envStr("APP_ENV", "development"),
		BackendURL:  strings.TrimRight(envStr("BACKEND_URL", "http://localhost:8080"), "/"),
		FrontendURL: envStr("FRONTEND_URL", "http://localhost:3000"),
		AgentID:     envStr("ELEVENLABS_AGENT_ID", ""),

		JWTSecret:     envStr("JWT_SECRET", ""),
		JWTIssuer:     envStr("JWT_ISSUER", "visaprep"),
		JWTExpiration: envDuration("JWT_EXPIRATION", 7*24*time.Hour),

		DocStore:  strings.ToLower(envStr("DOC_STORE", "mongo")),
		UserStore: strings.ToLower(envStr("USER_STORE", "postgres")),

		Oracle:       strings.ToLower(envStr("ORACLE", "vertex")),
		GCPProject:   envStr("GCP_PROJECT", ""),
		GCPLocation:  envStr("GCP_LOCATION", "us-central1"),
		GeminiAPIKey: envStr("GEMINI_API_KEY", ""),
		GeminiModel:  envStr("GEMINI_MODEL", "gemini-1.5-flash"),

		NatsURL:   envStr("NATS_URL", ""),
		NatsToken: envStr("NATS_TOKEN", ""),

		RedFlagWorkers: envInt("REDFLAG_WORKERS", 2),
	}
}

func (c AppConfig) IsProduction() bool { return c.Env == "production" }

// AgentEndpoint is the custom LLM URL handed to the voice agent. The session
// id travels as a query parameter so the agent never has to forward it.
func (c AppConfig) AgentEndpoint(sessionID string) string {
	return c.BackendURL + "/chat/completions?sessionId=" + url.QueryEscape(sessionID)
}

func envStr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go durations ("72h") or a day count ("7d").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if strings.HasSuffix(v, "d") {
		if n, err := strconv.Atoi(strings.TrimSuffix(v, "d")); err == nil && n > 0 {
			return time.Duration(n) * 24 * time.Hour
		}
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	return fallback
}
