// Package events carries session notifications to the NATS bus and to the
// per-session Redis live feed.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	SubjectSessionStarted   = "visaprep.session.started"
	SubjectSessionCompleted = "visaprep.session.completed"
	SubjectSessionAnalyzed  = "visaprep.session.analyzed"
	SubjectRedFlagDetected  = "visaprep.redflag.detected"
)

// Feed event types.
const (
	TypeStarted   = "started"
	TypeTurn      = "turn"
	TypeRedFlag   = "red_flag"
	TypeCompleted = "completed"
	TypeAnalyzed  = "analyzed"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

// Event is the payload shape used on both the bus and the feed.
type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId,omitempty"`
	At        time.Time `json:"at"`
	Data      any       `json:"data,omitempty"`
}

// FeedChannel is the Redis pub/sub channel for one session.
func FeedChannel(sessionID string) string {
	return "session:" + sessionID + ":events"
}

// Emit publishes and only logs failures.
func Emit(ctx context.Context, p Publisher, log logrus.FieldLogger, subject string, v any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, subject, v); err != nil && log != nil {
		log.WithError(err).WithField("subject", subject).Warn("event publish failed")
	}
}

type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

type Message struct {
	Subject string
	Payload any
}

// Recorder keeps every published message in memory.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) Publish(_ context.Context, subject string, v any) error {
	r.mu.Lock()
	r.msgs = append(r.msgs, Message{Subject: subject, Payload: v})
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

func (r *Recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.msgs))
	for i, m := range r.msgs {
		out[i] = m.Subject
	}
	return out
}
