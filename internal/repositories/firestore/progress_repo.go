package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/repositories"
	"github.com/yoockh/visaprep/internal/utils"
)

type progressRepo struct {
	col *firestore.CollectionRef
}

func NewProgressRepo(fs *firestore.Client) repositories.ProgressRepository {
	return &progressRepo{col: fs.Collection(progressCollection)}
}

func (r *progressRepo) Get(ctx context.Context, userID string) (*models.Progress, error) {
	snap, err := r.col.Doc(userID).Get(ctx)
	if isNotFound(err) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var p models.Progress
	if err := snap.DataTo(&p); err != nil {
		return nil, err
	}
	if p.WeaknessTracking == nil {
		p.WeaknessTracking = map[string]models.Weakness{}
	}
	return &p, nil
}

func (r *progressRepo) Save(ctx context.Context, p *models.Progress) error {
	_, err := r.col.Doc(p.UserID).Set(ctx, p)
	return err
}
