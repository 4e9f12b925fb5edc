package models

import (
	"time"
)

// Output holds the derived valuation for one session and input team.
// Valuation is always recomputed from the full input set, never patched;
// IsApproved is true only while every per-field approval is true.
type Output struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	SessionID   string `gorm:"type:varchar(120);not null;uniqueIndex:uniq_output_session_team"`
	InputTeamID int    `gorm:"not null;uniqueIndex:uniq_output_session_team"`

	Valuation  float64 `gorm:"not null;default:0"`
	IsApproved bool    `gorm:"not null;default:false"`

	GeneratedAt time.Time `gorm:"type:timestamptz;not null"`
	CreatedAt   time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Output) TableName() string {
	return "outputs"
}
