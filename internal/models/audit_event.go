package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditEvent is one applied mutation, appended inside the mutating
// transaction so the trail never records a rolled-back change.
type AuditEvent struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	SessionID string `gorm:"type:varchar(120);not null;index"`
	TeamID    int    `gorm:"not null"`

	// input_update | approval_set | pricing_update | bid_update | reset
	Action  string         `gorm:"type:varchar(40);not null;index"`
	Details datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
