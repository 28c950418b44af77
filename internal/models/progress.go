package models

import "time"

type ProgressEntry struct {
	SessionID string            `bson:"session_id" firestore:"sessionId" json:"sessionId"`
	Score     float64           `bson:"score" firestore:"score" json:"score"`
	RedFlags  []AnalysisRedFlag `bson:"red_flags" firestore:"redFlags" json:"redFlags"`
	Date      time.Time         `bson:"date" firestore:"date" json:"date"`
}

type Weakness struct {
	Count    int       `bson:"count" firestore:"count" json:"count"`
	LastSeen time.Time `bson:"last_seen" firestore:"lastSeen" json:"lastSeen"`
}

type Progress struct {
	UserID           string              `bson:"user_id" firestore:"userId" json:"userId"`
	TotalSessions    int                 `bson:"total_sessions" firestore:"totalSessions" json:"totalSessions"`
	SessionHistory   []ProgressEntry     `bson:"session_history" firestore:"sessionHistory" json:"sessionHistory"`
	AverageScore     float64             `bson:"average_score" firestore:"averageScore" json:"averageScore"`
	WeaknessTracking map[string]Weakness `bson:"weakness_tracking" firestore:"weaknessTracking" json:"weaknessTracking"`
	ReadinessScore   int                 `bson:"readiness_score" firestore:"readinessScore" json:"readinessScore"`
	UpdatedAt        time.Time           `bson:"updated_at" firestore:"updatedAt" json:"updatedAt"`
}

// SessionSummary is the list view of a session.
type SessionSummary struct {
	SessionID   string        `json:"sessionId"`
	Mode        Mode          `json:"mode"`
	Status      SessionStatus `json:"status"`
	StartedAt   time.Time     `json:"startedAt"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
	Score       *float64      `json:"score"`
}

type HistoryPoint struct {
	SessionID string     `json:"sessionId"`
	Score     float64    `json:"score"`
	Date      *time.Time `json:"date"`
	Mode      Mode       `json:"mode"`
}

// ProgressOverview is what the dashboard reads.
type ProgressOverview struct {
	TotalSessions     int                 `json:"totalSessions"`
	CompletedSessions int                 `json:"completedSessions"`
	AverageScore      float64             `json:"averageScore"`
	Trend             string              `json:"trend"` // improving|declining|stable
	SessionHistory    []HistoryPoint      `json:"sessionHistory"`
	Weaknesses        map[string]Weakness `json:"weaknesses"`
	ReadinessScore    int                 `json:"readinessScore"`
}
