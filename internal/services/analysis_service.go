package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/visaprep/internal/cache"
	"github.com/yoockh/visaprep/internal/events"
	"github.com/yoockh/visaprep/internal/logger"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/prompts"
	"github.com/yoockh/visaprep/internal/utils"
)

type AnalysisService interface {
	// Analyze scores a finished interview. A session analyzed before returns
	// its stored analysis without another oracle call or progress fold.
	Analyze(ctx context.Context, sessionID, userID string) (*models.AnalysisResult, error)
}

type analysisService struct {
	d        Deps
	progress ProgressService
}

func NewAnalysisService(d Deps, progress ProgressService) AnalysisService {
	return &analysisService{d: d.withDefaults(), progress: progress}
}

func (s *analysisService) Analyze(ctx context.Context, sessionID, userID string) (*models.AnalysisResult, error) {
	const op = "AnalysisService.Analyze"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Session ID is required", nil)
	}
	release, err := s.d.Locker.Acquire(ctx, cache.SessionLockKey(sessionID), cache.LockTTL)
	if err != nil {
		return nil, utils.E(utils.CodeTimeout, op, "session is busy", err)
	}
	defer release()

	sess, err := loadOwnedSession(ctx, s.d.Sessions, op, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if sess.Analysis != nil {
		return sess.Analysis, nil
	}
	if len(sess.Transcript) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session has no transcript to analyze", nil)
	}

	profile, err := s.profileFor(ctx, op, sess)
	if err != nil {
		return nil, err
	}

	log := s.d.Log.WithFields(logrus.Fields{"op": op, "session_id": sessionID, "user_id": sess.UserID})

	text, err := s.d.LLM.Generate(ctx, prompts.AnalysisPrompt(profile, sess.Transcript))
	if err != nil {
		log.WithError(err).Error("oracle analysis failed")
		return nil, utils.E(utils.CodeUpstream, op, "Failed to analyze interview", err)
	}
	raw, err := ExtractJSONObject(text)
	if err != nil {
		log.WithError(err).WithField("raw", logger.Truncate(text, 200)).Error("analysis response is not JSON")
		return nil, utils.E(utils.CodeInternal, op, "Failed to parse analysis response", err)
	}
	analysis := NormalizeAnalysis(raw)

	// progress first: the stored analysis is what marks the session done, and
	// Fold ignores a session it has already recorded
	if _, err := s.progress.Fold(ctx, sess.UserID, sessionID, &analysis); err != nil {
		return nil, err
	}

	completedAt := timeNow()
	if sess.CompletedAt != nil {
		completedAt = *sess.CompletedAt
	}
	status := models.StatusCompleted
	if err := s.d.Sessions.Update(ctx, sessionID, models.SessionUpdate{
		Status:      &status,
		CompletedAt: &completedAt,
		Analysis:    &analysis,
	}); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save analysis", err)
	}

	invalidateUserViews(ctx, s.d, sess.UserID)
	evt := events.Event{
		Type:      events.TypeAnalyzed,
		SessionID: sessionID,
		UserID:    sess.UserID,
		At:        timeNow(),
		Data: map[string]any{
			"overallScore":  analysis.OverallScore,
			"likelyOutcome": analysis.LikelyOutcome,
			"redFlags":      len(analysis.RedFlags),
		},
	}
	events.Emit(ctx, s.d.Bus, s.d.Log, events.SubjectSessionAnalyzed, evt)
	events.Emit(ctx, s.d.Feed, s.d.Log, events.FeedChannel(sessionID), evt)
	log.WithField("score", analysis.OverallScore).Info("interview analyzed")

	return &analysis, nil
}

// profileFor falls back to the start-time snapshot when the user record is gone.
func (s *analysisService) profileFor(ctx context.Context, op string, sess *models.Session) (models.UserProfile, error) {
	user, err := s.d.Users.Get(ctx, sess.UserID)
	if err == nil {
		return user.Profile, nil
	}
	if errors.Is(err, utils.ErrNotFound) {
		return models.UserProfile{VisaType: sess.VisaType, Country: sess.Country}, nil
	}
	return models.UserProfile{}, utils.E(utils.CodeInternal, op, "failed to get user", err)
}
