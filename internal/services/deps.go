package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/visaprep/internal/cache"
	"github.com/yoockh/visaprep/internal/events"
	"github.com/yoockh/visaprep/internal/logger"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/providers/llm"
	"github.com/yoockh/visaprep/internal/repositories"
	"github.com/yoockh/visaprep/internal/utils"
)

// Deps is the shared wiring of the interview services. Nil optional fields
// get in-process defaults.
type Deps struct {
	Sessions repositories.SessionRepository
	Progress repositories.ProgressRepository
	Users    repositories.UserRepository
	Turns    repositories.TurnLogRepository

	Cache  cache.Cache
	Locker cache.Locker

	Bus  events.Publisher
	Feed events.Publisher

	LLM llm.Provider
	Log logrus.FieldLogger
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = cache.NewMemoryCache()
	}
	if d.Locker == nil {
		d.Locker = cache.NewMemoryLocker()
	}
	if d.Bus == nil {
		d.Bus = events.Nop{}
	}
	if d.Feed == nil {
		d.Feed = events.Nop{}
	}
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	return d
}

// clock is the wall clock; tests replace it.
var clock = time.Now

func timeNow() time.Time { return clock().UTC() }

func loadOwnedSession(ctx context.Context, sessions repositories.SessionRepository, op, sessionID, userID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Session ID is required", nil)
	}
	s, err := sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}
	if userID != "" && s.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "Access denied", nil)
	}
	return s, nil
}

func invalidateUserViews(ctx context.Context, d Deps, userID string) {
	if err := d.Cache.Del(ctx, cache.ProgressKey(userID), cache.SessionsKey(userID)); err != nil {
		d.Log.WithError(err).WithField("user_id", userID).Warn("cache invalidation failed")
	}
}

// recordTurns appends entries to the transcript, then mirrors them into the
// turn log and the live feed. Only the transcript append can fail the call.
func recordTurns(ctx context.Context, d Deps, s *models.Session, entries ...models.TranscriptEntry) ([]*models.TurnLog, error) {
	if err := d.Sessions.AppendTranscript(ctx, s.SessionID, entries...); err != nil {
		return nil, err
	}

	rows := make([]*models.TurnLog, len(entries))
	for i, e := range entries {
		rows[i] = &models.TurnLog{
			ID:        uuid.NewString(),
			UserID:    s.UserID,
			SessionID: s.SessionID,
			Speaker:   e.Speaker,
			Content:   e.Text,
			Mode:      s.Mode,
			Flags:     pq.StringArray{},
			Timestamp: e.Timestamp,
		}
	}
	if d.Turns != nil {
		if err := d.Turns.Insert(ctx, rows...); err != nil {
			d.Log.WithError(err).WithField("session_id", s.SessionID).Warn("turn log insert failed")
		}
	}
	for _, e := range entries {
		events.Emit(ctx, d.Feed, d.Log, events.FeedChannel(s.SessionID), events.Event{
			Type:      events.TypeTurn,
			SessionID: s.SessionID,
			UserID:    s.UserID,
			At:        e.Timestamp,
			Data:      e,
		})
	}
	return rows, nil
}
