package memory

import (
	"context"
	"sync"
	"time"

	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/utils"
)

type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
}

func NewUserRepo() *UserRepo {
	return &UserRepo{byID: make(map[string]*models.User), byEmail: make(map[string]string)}
}

func (r *UserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return utils.ErrConflict
	}
	c := *u
	r.byID[u.ID] = &c
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepo) Get(_ context.Context, userID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[userID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, utils.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *UserRepo) UpdateProfile(_ context.Context, userID string, p models.UserProfile, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return utils.ErrNotFound
	}
	u.Profile = p
	u.UpdatedAt = updatedAt
	return nil
}
