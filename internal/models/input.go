package models

import (
	"time"
)

// InputFields is the fixed set of financial terms tracked per session and
// input team, in display order. The parallel InputUnits slice carries the
// unit shown next to each field (empty string means unitless).
var InputFields = []string{"EBITDA", "Interest Rate", "Multiple", "Factor Score"}

var InputUnits = []string{"M$", "%", "x", ""}

// UnitFor returns the display unit for a tracked field, or "" for unknown
// or unitless fields.
func UnitFor(field string) string {
	for i, f := range InputFields {
		if f == field {
			return InputUnits[i]
		}
	}
	return ""
}

// IsInputField reports whether field is one of the tracked finance fields.
func IsInputField(field string) bool {
	for _, f := range InputFields {
		if f == field {
			return true
		}
	}
	return false
}

// Input is one financial term submitted by the input team. Rows are
// materialized lazily with a placeholder value and updated in place on
// every submission; the (session, team, field) key is unique.
type Input struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement"`
	SessionID string  `gorm:"type:varchar(120);not null;uniqueIndex:uniq_input_session_team_field"`
	TeamID    int     `gorm:"not null;uniqueIndex:uniq_input_session_team_field"`
	FieldName string  `gorm:"type:varchar(50);not null;uniqueIndex:uniq_input_session_team_field"`
	Value     float64 `gorm:"not null"`

	OutputID uint64  `gorm:"not null;index"`
	Output   *Output `gorm:"foreignKey:OutputID"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Input) TableName() string {
	return "team_inputs"
}
