package models

import (
	"time"
)

// Approval is the reviewing team's per-field verdict. Rows are materialized
// lazily as unapproved; the mutation protocol resets them to false whenever
// the matching Input changes.
type Approval struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	SessionID string `gorm:"type:varchar(120);not null;uniqueIndex:uniq_approval_session_team_field"`
	TeamID    int    `gorm:"not null;uniqueIndex:uniq_approval_session_team_field"`
	FieldName string `gorm:"type:varchar(50);not null;uniqueIndex:uniq_approval_session_team_field"`

	// Stored in the legacy "status" column.
	IsApproved bool `gorm:"column:status;not null;default:false"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Approval) TableName() string {
	return "approvals"
}
