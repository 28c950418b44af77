package memory

import (
	"context"
	"sync"

	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/utils"
)

type ProgressRepo struct {
	mu    sync.RWMutex
	items map[string]*models.Progress
}

func NewProgressRepo() *ProgressRepo {
	return &ProgressRepo{items: make(map[string]*models.Progress)}
}

func (r *ProgressRepo) Get(_ context.Context, userID string) (*models.Progress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[userID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return cloneProgress(p), nil
}

func (r *ProgressRepo) Save(_ context.Context, p *models.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.UserID] = cloneProgress(p)
	return nil
}

func cloneProgress(p *models.Progress) *models.Progress {
	c := *p
	c.SessionHistory = make([]models.ProgressEntry, len(p.SessionHistory))
	for i, e := range p.SessionHistory {
		e.RedFlags = cloneSlice(e.RedFlags)
		c.SessionHistory[i] = e
	}
	c.WeaknessTracking = make(map[string]models.Weakness, len(p.WeaknessTracking))
	for k, v := range p.WeaknessTracking {
		c.WeaknessTracking[k] = v
	}
	return &c
}
