package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/yoockh/visaprep/internal/cache"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/utils"
)

const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"

	trendWindow    = 3
	trendThreshold = 0.5
)

type ProgressService interface {
	// Fold records one analyzed session into the user's aggregate. Folding
	// a session already in the history is a no-op.
	Fold(ctx context.Context, userID, sessionID string, a *models.AnalysisResult) (*models.Progress, error)
	Overview(ctx context.Context, userID string) (*models.ProgressOverview, error)
	Sessions(ctx context.Context, userID string) ([]models.SessionSummary, error)
}

type progressService struct {
	d Deps
}

func NewProgressService(d Deps) ProgressService {
	return &progressService{d: d.withDefaults()}
}

func (s *progressService) Fold(ctx context.Context, userID, sessionID string, a *models.AnalysisResult) (*models.Progress, error) {
	const op = "ProgressService.Fold"

	// sessions of one user may be analyzed concurrently
	release, err := s.d.Locker.Acquire(ctx, cache.ProgressLockKey(userID), cache.LockTTL)
	if err != nil {
		return nil, utils.E(utils.CodeTimeout, op, "progress is busy", err)
	}
	defer release()

	cur, err := s.d.Progress.Get(ctx, userID)
	if err != nil && !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to get progress", err)
	}
	if cur != nil && hasSession(cur, sessionID) {
		return cur, nil
	}
	next := FoldProgress(cur, userID, sessionID, a.OverallScore, a.RedFlags, timeNow())
	if err := s.d.Progress.Save(ctx, next); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save progress", err)
	}
	return next, nil
}

// FoldProgress returns cur with one more session folded in. cur may be nil.
// The average is recomputed over the whole history every time.
func FoldProgress(cur *models.Progress, userID, sessionID string, score float64, flags []models.AnalysisRedFlag, now time.Time) *models.Progress {
	next := &models.Progress{UserID: userID, WeaknessTracking: map[string]models.Weakness{}}
	if cur != nil {
		next.TotalSessions = cur.TotalSessions
		next.SessionHistory = append(next.SessionHistory, cur.SessionHistory...)
		for k, v := range cur.WeaknessTracking {
			next.WeaknessTracking[k] = v
		}
	}
	if flags == nil {
		flags = []models.AnalysisRedFlag{}
	}

	next.TotalSessions++
	next.SessionHistory = append(next.SessionHistory, models.ProgressEntry{
		SessionID: sessionID,
		Score:     score,
		RedFlags:  flags,
		Date:      now,
	})

	var sum float64
	for _, e := range next.SessionHistory {
		sum += e.Score
	}
	next.AverageScore = sum / float64(len(next.SessionHistory))

	for _, f := range flags {
		if f.Type == "" {
			continue
		}
		w := next.WeaknessTracking[f.Type]
		w.Count++
		w.LastSeen = now
		next.WeaknessTracking[f.Type] = w
	}

	next.ReadinessScore = ReadinessScore(next.AverageScore)
	next.UpdatedAt = now
	return next
}

func hasSession(p *models.Progress, sessionID string) bool {
	for _, e := range p.SessionHistory {
		if e.SessionID == sessionID {
			return true
		}
	}
	return false
}

func ReadinessScore(avg float64) int {
	r := int(math.Round(avg * 10))
	if r > 100 {
		return 100
	}
	if r < 0 {
		return 0
	}
	return r
}

// Trend compares the mean of the last three scores with the mean of up to
// three before them. scores are oldest first.
func Trend(scores []float64) string {
	if len(scores) < trendWindow {
		return TrendStable
	}
	recent := scores[len(scores)-trendWindow:]
	olderStart := len(scores) - 2*trendWindow
	if olderStart < 0 {
		olderStart = 0
	}
	older := scores[olderStart : len(scores)-trendWindow]

	recentAvg := mean(recent)
	olderAvg := recentAvg
	if len(older) > 0 {
		olderAvg = mean(older)
	}
	switch {
	case recentAvg > olderAvg+trendThreshold:
		return TrendImproving
	case recentAvg < olderAvg-trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func (s *progressService) Sessions(ctx context.Context, userID string) ([]models.SessionSummary, error) {
	const op = "ProgressService.Sessions"

	var out []models.SessionSummary
	if hit, err := s.d.Cache.GetJSON(ctx, cache.SessionsKey(userID), &out); err == nil && hit {
		return out, nil
	}

	sessions, err := s.d.Sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}
	out = make([]models.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		sum := models.SessionSummary{
			SessionID:   sess.SessionID,
			Mode:        sess.Mode,
			Status:      sess.Status,
			StartedAt:   sess.StartedAt,
			CompletedAt: sess.CompletedAt,
		}
		if sess.Analysis != nil {
			score := sess.Analysis.OverallScore
			sum.Score = &score
		}
		out = append(out, sum)
	}

	if err := s.d.Cache.SetJSON(ctx, cache.SessionsKey(userID), out, cache.ViewTTL); err != nil {
		s.d.Log.WithError(err).WithField("user_id", userID).Warn("cache set failed")
	}
	return out, nil
}

func (s *progressService) Overview(ctx context.Context, userID string) (*models.ProgressOverview, error) {
	const op = "ProgressService.Overview"

	var cached models.ProgressOverview
	if hit, err := s.d.Cache.GetJSON(ctx, cache.ProgressKey(userID), &cached); err == nil && hit {
		return &cached, nil
	}

	sessions, err := s.d.Sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}
	progress, err := s.d.Progress.Get(ctx, userID)
	if err != nil && !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to get progress", err)
	}

	out := &models.ProgressOverview{
		TotalSessions:  len(sessions),
		Trend:          TrendStable,
		SessionHistory: []models.HistoryPoint{},
		Weaknesses:     map[string]models.Weakness{},
	}

	// sessions come newest first; history and trend read oldest first
	scores := make([]float64, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		sess := sessions[i]
		if sess.Analysis == nil {
			continue
		}
		scores = append(scores, sess.Analysis.OverallScore)
		out.SessionHistory = append(out.SessionHistory, models.HistoryPoint{
			SessionID: sess.SessionID,
			Score:     sess.Analysis.OverallScore,
			Date:      sess.CompletedAt,
			Mode:      sess.Mode,
		})
	}
	out.CompletedSessions = len(scores)
	if len(scores) > 0 {
		out.AverageScore = mean(scores)
	}
	out.Trend = Trend(scores)

	if progress != nil {
		if progress.WeaknessTracking != nil {
			out.Weaknesses = progress.WeaknessTracking
		}
		out.ReadinessScore = progress.ReadinessScore
	}

	if err := s.d.Cache.SetJSON(ctx, cache.ProgressKey(userID), out, cache.ViewTTL); err != nil {
		s.d.Log.WithError(err).WithField("user_id", userID).Warn("cache set failed")
	}
	return out, nil
}
