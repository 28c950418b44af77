package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/repositories"
	"github.com/yoockh/visaprep/internal/utils"
	"google.golang.org/api/iterator"
)

type userRepo struct {
	fs  *firestore.Client
	col *firestore.CollectionRef
}

func NewUserRepo(fs *firestore.Client) repositories.UserRepository {
	return &userRepo{fs: fs, col: fs.Collection(usersCollection)}
}

// Create checks the email inside the same transaction that writes the user.
func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snaps, err := tx.Documents(r.col.Where("email", "==", u.Email).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(snaps) > 0 {
			return utils.ErrConflict
		}
		return tx.Create(r.col.Doc(u.ID), u)
	})
}

func (r *userRepo) Get(ctx context.Context, userID string) (*models.User, error) {
	snap, err := r.col.Doc(userID).Get(ctx)
	if isNotFound(err) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := snap.DataTo(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	it := r.col.Where("email", "==", email).Limit(1).Documents(ctx)
	defer it.Stop()

	snap, err := it.Next()
	if errors.Is(err, iterator.Done) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := snap.DataTo(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, userID string, p models.UserProfile, updatedAt time.Time) error {
	_, err := r.col.Doc(userID).Update(ctx, []firestore.Update{
		{Path: "profile", Value: p},
		{Path: "updatedAt", Value: updatedAt},
	})
	if isNotFound(err) {
		return utils.ErrNotFound
	}
	return err
}
