package postgres

import (
	"context"

	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/repositories"
	"github.com/yoockh/visaprep/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type turnLogRepo struct {
	db *gorm.DB
}

func NewTurnLogRepo(db *gorm.DB) repositories.TurnLogRepository {
	return &turnLogRepo{db: db}
}

func (r *turnLogRepo) Insert(ctx context.Context, logs ...*models.TurnLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(logs).Error
}

func (r *turnLogRepo) AttachFlag(ctx context.Context, id, flag string, metadata []byte) error {
	updates := map[string]any{
		"flags": gorm.Expr("array_append(flags, ?)", flag),
	}
	if metadata != nil {
		updates["metadata"] = datatypes.JSON(metadata)
	}
	res := r.db.WithContext(ctx).
		Model(&models.TurnLog{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// ListBySession returns the latest rows of a session, oldest first.
func (r *turnLogRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.TurnLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []models.TurnLog
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}
