package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/visaprep/internal/cache"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/utils"
)

// MessageContent accepts a plain string or an array of {type, text} parts.
type MessageContent string

func (c *MessageContent) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = MessageContent(s)
		return nil
	}
	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(b, &parts); err != nil {
		if string(b) == "null" {
			*c = ""
			return nil
		}
		return err
	}
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	*c = MessageContent(strings.Join(texts, "\n"))
	return nil
}

type ChatMessage struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

type CompletionRequest struct {
	SessionID string
	Messages  []ChatMessage
}

type CompletionResult struct {
	SessionID string
	Content   string
}

type ProxyResult struct {
	Content string                `json:"content"`
	RedFlag *models.RedFlagResult `json:"redFlag"`
}

// CompletionService runs one officer turn for the voice agent
// (chat-completions) or the authenticated web client (proxy).
type CompletionService interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
	Proxy(ctx context.Context, userID, sessionID string, history []ChatMessage) (*ProxyResult, error)
}

type completionService struct {
	d        Deps
	conv     ConversationService
	redflags RedFlagService
	queue    RedFlagQueue
}

// NewCompletionService wires the adapter core. queue may be nil, in which
// case chat-completions turns are not reviewed for red flags.
func NewCompletionService(d Deps, conv ConversationService, redflags RedFlagService, queue RedFlagQueue) CompletionService {
	return &completionService{d: d.withDefaults(), conv: conv, redflags: redflags, queue: queue}
}

type turnOutcome struct {
	session   *models.Session
	content   string
	answerRow *models.TurnLog
	question  string
	answer    string
}

func (s *completionService) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	const op = "CompletionService.Complete"

	if len(req.Messages) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Messages array is required", nil)
	}

	sessionID := req.SessionID
	if sessionID == "" {
		id, err := s.latestActive(ctx, op)
		if err != nil {
			return nil, err
		}
		s.d.Log.WithFields(logrus.Fields{"op": op, "session_id": id}).Warn("no sessionId supplied; using most recent active session")
		sessionID = id
	}

	out, err := s.turn(ctx, op, sessionID, "", req.Messages)
	if err != nil {
		return nil, err
	}

	if s.queue != nil && out.answerRow != nil && out.session.Mode == models.ModePractice {
		job := jobFor(out)
		if err := s.queue.Enqueue(ctx, job); err != nil {
			s.d.Log.WithError(err).WithField("session_id", sessionID).Warn("red flag enqueue failed")
		}
	}
	return &CompletionResult{SessionID: sessionID, Content: out.content}, nil
}

func (s *completionService) Proxy(ctx context.Context, userID, sessionID string, history []ChatMessage) (*ProxyResult, error) {
	const op = "CompletionService.Proxy"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Session ID is required", nil)
	}
	if len(history) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "conversationHistory is required", nil)
	}

	out, err := s.turn(ctx, op, sessionID, userID, history)
	if err != nil {
		return nil, err
	}

	res := &ProxyResult{Content: out.content}
	if s.redflags != nil && out.answerRow != nil && out.session.Mode == models.ModePractice {
		flag, err := s.redflags.Review(ctx, jobFor(out))
		if err != nil {
			// the officer turn is already saved; a failed review only drops the flag
			s.d.Log.WithError(err).WithField("session_id", sessionID).Warn("red flag review failed")
		} else {
			res.RedFlag = flag
		}
	}
	return res, nil
}

// turn holds the session lock across read, oracle call and append so two
// concurrent turns cannot interleave their pairs.
func (s *completionService) turn(ctx context.Context, op, sessionID, userID string, msgs []ChatMessage) (*turnOutcome, error) {
	release, err := s.d.Locker.Acquire(ctx, cache.SessionLockKey(sessionID), cache.LockTTL)
	if err != nil {
		return nil, utils.E(utils.CodeTimeout, op, "session is busy", err)
	}
	defer release()

	sess, err := loadOwnedSession(ctx, s.d.Sessions, op, sessionID, userID)
	if err != nil {
		return nil, err
	}

	history := ToTurns(msgs)
	content, err := s.conv.ProcessTurn(ctx, sess.SystemPrompt, history, sess.Mode)
	if err != nil {
		return nil, err
	}

	out := &turnOutcome{session: sess, content: content}
	ts := timeNow()
	last := msgs[len(msgs)-1]

	var entries []models.TranscriptEntry
	switch {
	case last.Role == "user":
		out.answer = string(last.Content)
		out.question = lastOfficerLine(msgs[:len(msgs)-1])
		entries = []models.TranscriptEntry{
			{Speaker: models.SpeakerApplicant, Text: out.answer, Timestamp: ts},
			{Speaker: models.SpeakerOfficer, Text: content, Timestamp: ts},
		}
	case len(NormalizeTurns(history)) == 0:
		entries = []models.TranscriptEntry{{Speaker: models.SpeakerOfficer, Text: content, Timestamp: ts}}
	}
	if len(entries) == 0 {
		return out, nil
	}

	rows, err := recordTurns(ctx, s.d, sess, entries...)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to save transcript", err)
	}
	if len(entries) == 2 {
		out.answerRow = rows[0]
	}
	s.d.Log.WithFields(logrus.Fields{"op": op, "session_id": sessionID, "entries": len(entries)}).Debug("turn recorded")
	return out, nil
}

func (s *completionService) latestActive(ctx context.Context, op string) (string, error) {
	active, err := s.d.Sessions.ListByStatus(ctx, models.StatusInProgress)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to list active sessions", err)
	}
	if len(active) == 0 {
		return "", utils.E(utils.CodeInvalidArgument, op, "No active interview session found", nil)
	}
	return active[0].SessionID, nil
}

// ToTurns maps chat roles onto speakers. System messages are dropped.
func ToTurns(msgs []ChatMessage) []models.Turn {
	out := make([]models.Turn, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case "system":
			continue
		case "assistant", "model":
			out = append(out, models.Turn{Role: models.SpeakerOfficer, Text: string(m.Content)})
		default:
			out = append(out, models.Turn{Role: models.SpeakerApplicant, Text: string(m.Content)})
		}
	}
	return out
}

func lastOfficerLine(msgs []ChatMessage) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if (msgs[i].Role == "assistant" || msgs[i].Role == "model") && strings.TrimSpace(string(msgs[i].Content)) != "" {
			return string(msgs[i].Content)
		}
	}
	return ""
}

func jobFor(out *turnOutcome) RedFlagJob {
	return RedFlagJob{
		SessionID: out.session.SessionID,
		UserID:    out.session.UserID,
		TurnID:    out.answerRow.ID,
		Question:  out.question,
		Answer:    out.answer,
		VisaType:  out.session.VisaType,
		Country:   out.session.Country,
		Mode:      out.session.Mode,
	}
}
