package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// TurnLog mirrors every transcript entry into a queryable table.
// Flags holds red-flag types attached after detection.
type TurnLog struct {
	ID        string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    string         `gorm:"column:user_id;type:uuid;index" json:"userId"`
	SessionID string         `gorm:"column:session_id;type:uuid;index" json:"sessionId"`
	Speaker   Speaker        `gorm:"column:speaker;type:text" json:"speaker"`
	Content   string         `gorm:"column:content;type:text" json:"content"`
	Mode      Mode           `gorm:"column:mode;type:text" json:"mode"`
	Flags     pq.StringArray `gorm:"column:flags;type:text[]" json:"flags"`
	Timestamp time.Time      `gorm:"column:timestamp;type:timestamptz;index" json:"timestamp"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
}

func (TurnLog) TableName() string { return "turn_logs" }
