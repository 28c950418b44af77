package mongo

import (
	"context"
	"errors"

	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/repositories"
	"github.com/yoockh/visaprep/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type sessionRepo struct {
	col *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) repositories.SessionRepository {
	return &sessionRepo{col: db.Collection("sessions")}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	// $push needs an array, not null
	if s.Transcript == nil {
		s.Transcript = []models.TranscriptEntry{}
	}
	_, err := r.col.InsertOne(ctx, s)
	if mongo.IsDuplicateKeyError(err) {
		return utils.ErrConflict
	}
	return err
}

func (r *sessionRepo) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	var s models.Session
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) Update(ctx context.Context, sessionID string, u models.SessionUpdate) error {
	set := bson.M{}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.CompletedAt != nil {
		set["completed_at"] = u.CompletedAt.UTC()
	}
	if u.Analysis != nil {
		set["analysis"] = u.Analysis
	}
	if len(set) == 0 {
		return nil
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"session_id": sessionID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) AppendTranscript(ctx context.Context, sessionID string, entries ...models.TranscriptEntry) error {
	if len(entries) == 0 {
		return nil
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$push": bson.M{"transcript": bson.M{"$each": entries}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *sessionRepo) ListByStatus(ctx context.Context, status models.SessionStatus) ([]models.Session, error) {
	return r.find(ctx, bson.M{"status": status})
}

func (r *sessionRepo) Delete(ctx context.Context, sessionID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) find(ctx context.Context, filter bson.M) ([]models.Session, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Session, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	repositories.SortNewestFirst(out)
	return out, nil
}
