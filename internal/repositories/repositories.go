// Package repositories declares the persistence contracts shared by the
// mongo, firestore, postgres and memory implementations.
package repositories

import (
	"context"
	"sort"
	"time"

	"github.com/yoockh/visaprep/internal/models"
)

// SessionRepository stores interview sessions. Get, Update, AppendTranscript
// and Delete return utils.ErrNotFound for unknown ids.
type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Update(ctx context.Context, sessionID string, u models.SessionUpdate) error
	// AppendTranscript appends entries atomically with respect to other appends.
	AppendTranscript(ctx context.Context, sessionID string, entries ...models.TranscriptEntry) error
	// ListByUser and ListByStatus return sessions newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Session, error)
	ListByStatus(ctx context.Context, status models.SessionStatus) ([]models.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// ProgressRepository stores one aggregate per user. Get returns
// utils.ErrNotFound when the user has no progress yet.
type ProgressRepository interface {
	Get(ctx context.Context, userID string) (*models.Progress, error)
	Save(ctx context.Context, p *models.Progress) error
}

// UserRepository stores accounts. Create returns utils.ErrConflict when the
// email is already registered.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, p models.UserProfile, updatedAt time.Time) error
}

// TurnLogRepository mirrors transcript entries for querying and flagging.
type TurnLogRepository interface {
	Insert(ctx context.Context, logs ...*models.TurnLog) error
	AttachFlag(ctx context.Context, id, flag string, metadata []byte) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.TurnLog, error)
}

// SortNewestFirst orders sessions by StartedAt descending.
func SortNewestFirst(sessions []models.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})
}
