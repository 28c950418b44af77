package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/utils"
	"gorm.io/datatypes"
)

type TurnLogRepo struct {
	mu   sync.RWMutex
	rows []*models.TurnLog
}

func NewTurnLogRepo() *TurnLogRepo { return &TurnLogRepo{} }

func (r *TurnLogRepo) Insert(_ context.Context, logs ...*models.TurnLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range logs {
		c := *l
		c.Flags = append([]string(nil), l.Flags...)
		r.rows = append(r.rows, &c)
	}
	return nil
}

func (r *TurnLogRepo) AttachFlag(_ context.Context, id, flag string, metadata []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID == id {
			row.Flags = append(row.Flags, flag)
			if metadata != nil {
				row.Metadata = datatypes.JSON(metadata)
			}
			return nil
		}
	}
	return utils.ErrNotFound
}

// ListBySession returns rows oldest first.
func (r *TurnLogRepo) ListBySession(_ context.Context, sessionID string, limit int) ([]models.TurnLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.TurnLog
	for _, row := range r.rows {
		if row.SessionID == sessionID {
			c := *row
			c.Flags = append([]string(nil), row.Flags...)
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
