package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/repositories"
	"github.com/yoockh/visaprep/internal/utils"
	"google.golang.org/api/iterator"
)

type sessionRepo struct {
	col *firestore.CollectionRef
	fs  *firestore.Client
}

func NewSessionRepo(fs *firestore.Client) repositories.SessionRepository {
	return &sessionRepo{col: fs.Collection(sessionsCollection), fs: fs}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	if s.Transcript == nil {
		s.Transcript = []models.TranscriptEntry{}
	}
	_, err := r.col.Doc(s.SessionID).Create(ctx, s)
	return err
}

func (r *sessionRepo) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	snap, err := r.col.Doc(sessionID).Get(ctx)
	if isNotFound(err) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var s models.Session
	if err := snap.DataTo(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) Update(ctx context.Context, sessionID string, u models.SessionUpdate) error {
	var updates []firestore.Update
	if u.Status != nil {
		updates = append(updates, firestore.Update{Path: "status", Value: *u.Status})
	}
	if u.CompletedAt != nil {
		updates = append(updates, firestore.Update{Path: "completedAt", Value: *u.CompletedAt})
	}
	if u.Analysis != nil {
		updates = append(updates, firestore.Update{Path: "analysis", Value: u.Analysis})
	}
	if len(updates) == 0 {
		return nil
	}
	_, err := r.col.Doc(sessionID).Update(ctx, updates)
	if isNotFound(err) {
		return utils.ErrNotFound
	}
	return err
}

// AppendTranscript reads and rewrites the transcript inside a transaction so
// concurrent appends are retried instead of lost.
func (r *sessionRepo) AppendTranscript(ctx context.Context, sessionID string, entries ...models.TranscriptEntry) error {
	if len(entries) == 0 {
		return nil
	}
	doc := r.col.Doc(sessionID)
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(doc)
		if err != nil {
			return err
		}
		var s models.Session
		if err := snap.DataTo(&s); err != nil {
			return err
		}
		transcript := append(s.Transcript, entries...)
		return tx.Update(doc, []firestore.Update{{Path: "transcript", Value: transcript}})
	})
	if isNotFound(err) {
		return utils.ErrNotFound
	}
	return err
}

func (r *sessionRepo) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	return r.query(ctx, r.col.Where("userId", "==", userID))
}

func (r *sessionRepo) ListByStatus(ctx context.Context, status models.SessionStatus) ([]models.Session, error) {
	return r.query(ctx, r.col.Where("status", "==", string(status)))
}

func (r *sessionRepo) Delete(ctx context.Context, sessionID string) error {
	_, err := r.col.Doc(sessionID).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return utils.ErrNotFound
	}
	return err
}

// query avoids orderBy so no composite index is needed; sorting happens here.
func (r *sessionRepo) query(ctx context.Context, q firestore.Query) ([]models.Session, error) {
	it := q.Documents(ctx)
	defer it.Stop()

	out := make([]models.Session, 0)
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var s models.Session
		if err := snap.DataTo(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	repositories.SortNewestFirst(out)
	return out, nil
}
