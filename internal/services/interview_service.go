package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/visaprep/internal/events"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/prompts"
	"github.com/yoockh/visaprep/internal/utils"
)

type AgentConfig struct {
	AgentID           string `json:"agentId"`
	CustomLLMEndpoint string `json:"customLLMEndpoint"`
}

type StartResult struct {
	SessionID   string      `json:"sessionId"`
	AgentConfig AgentConfig `json:"agentConfig"`
}

type InterviewService interface {
	Start(ctx context.Context, userID string, mode models.Mode) (*StartResult, error)
	End(ctx context.Context, sessionID, userID string) error
	Get(ctx context.Context, sessionID, userID string) (*models.Session, error)
	Delete(ctx context.Context, sessionID, userID string) error
	Turns(ctx context.Context, sessionID, userID string, limit int) ([]models.TurnLog, error)
}

type interviewService struct {
	d        Deps
	agentID  string
	endpoint func(sessionID string) string
}

// NewInterviewService wires the lifecycle controller. endpoint builds the
// chat-completions URL handed to the voice agent.
func NewInterviewService(d Deps, agentID string, endpoint func(sessionID string) string) InterviewService {
	return &interviewService{d: d.withDefaults(), agentID: agentID, endpoint: endpoint}
}

func (s *interviewService) Start(ctx context.Context, userID string, mode models.Mode) (*StartResult, error) {
	const op = "InterviewService.Start"

	if userID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "unauthorized", nil)
	}
	if !mode.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Valid mode (practice or simulation) is required", nil)
	}

	user, err := s.d.Users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "User not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get user", err)
	}

	now := clock()
	session := &models.Session{
		SessionID:    uuid.NewString(),
		UserID:       userID,
		Mode:         mode,
		Status:       models.StatusInProgress,
		VisaType:     user.Profile.VisaType,
		Country:      user.Profile.Country,
		SystemPrompt: prompts.BuildSystemPrompt(user.Profile, mode, now),
		Transcript:   []models.TranscriptEntry{},
		StartedAt:    now.UTC(),
	}
	if err := s.d.Sessions.Create(ctx, session); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}

	invalidateUserViews(ctx, s.d, userID)
	events.Emit(ctx, s.d.Bus, s.d.Log, events.SubjectSessionStarted, events.Event{
		Type:      events.TypeStarted,
		SessionID: session.SessionID,
		UserID:    userID,
		At:        session.StartedAt,
		Data:      map[string]any{"mode": mode, "visaType": session.VisaType, "country": session.Country},
	})
	s.d.Log.WithFields(logrus.Fields{"op": op, "session_id": session.SessionID, "user_id": userID, "mode": mode}).Info("interview started")

	endpoint := ""
	if s.endpoint != nil {
		endpoint = s.endpoint(session.SessionID)
	}
	return &StartResult{
		SessionID:   session.SessionID,
		AgentConfig: AgentConfig{AgentID: s.agentID, CustomLLMEndpoint: endpoint},
	}, nil
}

// End marks the session completed. Ending twice keeps the first completedAt.
func (s *interviewService) End(ctx context.Context, sessionID, userID string) error {
	const op = "InterviewService.End"

	sess, err := loadOwnedSession(ctx, s.d.Sessions, op, sessionID, userID)
	if err != nil {
		return err
	}

	completedAt := timeNow()
	if sess.CompletedAt != nil {
		completedAt = *sess.CompletedAt
	}
	status := models.StatusCompleted
	if err := s.d.Sessions.Update(ctx, sessionID, models.SessionUpdate{Status: &status, CompletedAt: &completedAt}); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to end session", err)
	}

	invalidateUserViews(ctx, s.d, sess.UserID)
	if sess.Status != models.StatusCompleted {
		evt := events.Event{Type: events.TypeCompleted, SessionID: sessionID, UserID: sess.UserID, At: completedAt}
		events.Emit(ctx, s.d.Bus, s.d.Log, events.SubjectSessionCompleted, evt)
		events.Emit(ctx, s.d.Feed, s.d.Log, events.FeedChannel(sessionID), evt)
	}
	return nil
}

func (s *interviewService) Get(ctx context.Context, sessionID, userID string) (*models.Session, error) {
	return loadOwnedSession(ctx, s.d.Sessions, "InterviewService.Get", sessionID, userID)
}

func (s *interviewService) Delete(ctx context.Context, sessionID, userID string) error {
	const op = "InterviewService.Delete"

	sess, err := loadOwnedSession(ctx, s.d.Sessions, op, sessionID, userID)
	if err != nil {
		return err
	}
	if err := s.d.Sessions.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "Session not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete session", err)
	}
	invalidateUserViews(ctx, s.d, sess.UserID)
	return nil
}

func (s *interviewService) Turns(ctx context.Context, sessionID, userID string, limit int) ([]models.TurnLog, error) {
	const op = "InterviewService.Turns"

	if _, err := loadOwnedSession(ctx, s.d.Sessions, op, sessionID, userID); err != nil {
		return nil, err
	}
	if s.d.Turns == nil {
		return []models.TurnLog{}, nil
	}
	rows, err := s.d.Turns.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list turns", err)
	}
	if rows == nil {
		rows = []models.TurnLog{}
	}
	return rows, nil
}
