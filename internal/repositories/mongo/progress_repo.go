package mongo

import (
	"context"
	"errors"

	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/repositories"
	"github.com/yoockh/visaprep/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type progressRepo struct {
	col *mongo.Collection
}

func NewProgressRepo(db *mongo.Database) repositories.ProgressRepository {
	return &progressRepo{col: db.Collection("progress")}
}

func (r *progressRepo) Get(ctx context.Context, userID string) (*models.Progress, error) {
	var p models.Progress
	err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.WeaknessTracking == nil {
		p.WeaknessTracking = map[string]models.Weakness{}
	}
	return &p, nil
}

func (r *progressRepo) Save(ctx context.Context, p *models.Progress) error {
	_, err := r.col.ReplaceOne(ctx,
		bson.M{"user_id": p.UserID},
		p,
		options.Replace().SetUpsert(true),
	)
	return err
}
