package models

import "time"

type Mode string

const (
	ModePractice   Mode = "practice"
	ModeSimulation Mode = "simulation"
)

func (m Mode) Valid() bool {
	return m == ModePractice || m == ModeSimulation
}

type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	// StatusAbandoned is reserved; nothing in the service sets it.
	StatusAbandoned SessionStatus = "abandoned"
)

type Speaker string

const (
	SpeakerOfficer   Speaker = "officer"
	SpeakerApplicant Speaker = "applicant"
)

type TranscriptEntry struct {
	Speaker   Speaker   `bson:"speaker" firestore:"speaker" json:"speaker"`
	Text      string    `bson:"text" firestore:"text" json:"text"`
	Timestamp time.Time `bson:"timestamp" firestore:"timestamp" json:"timestamp"`
}

type Session struct {
	SessionID string `bson:"session_id" firestore:"sessionId" json:"sessionId"` // uuid v4
	UserID    string `bson:"user_id" firestore:"userId" json:"userId"`

	Mode   Mode          `bson:"mode" firestore:"mode" json:"mode"`
	Status SessionStatus `bson:"status" firestore:"status" json:"status"`

	// profile snapshot taken at start
	VisaType string `bson:"visa_type" firestore:"visaType" json:"visaType"`
	Country  string `bson:"country" firestore:"country" json:"country"`

	SystemPrompt string            `bson:"system_prompt" firestore:"systemPrompt" json:"systemPrompt"`
	Transcript   []TranscriptEntry `bson:"transcript" firestore:"transcript" json:"transcript"`

	StartedAt   time.Time  `bson:"started_at" firestore:"startedAt" json:"startedAt"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" firestore:"completedAt,omitempty" json:"completedAt,omitempty"`

	Analysis *AnalysisResult `bson:"analysis,omitempty" firestore:"analysis,omitempty" json:"analysis,omitempty"`
}

// SessionUpdate is a partial update; nil fields are left untouched.
type SessionUpdate struct {
	Status      *SessionStatus
	CompletedAt *time.Time
	Analysis    *AnalysisResult
}

// Turn is one entry of the conversation history handed to the turn processor.
type Turn struct {
	Role Speaker
	Text string
}
