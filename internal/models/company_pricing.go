package models

import (
	"time"
)

// CompanyPricing is the pricing team's offer for one company: share price
// and number of shares on sale. One row per session and company.
type CompanyPricing struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	SessionID   string `gorm:"type:varchar(120);not null;uniqueIndex:uniq_pricing_session_company"`
	CompanyName string `gorm:"type:varchar(120);not null;uniqueIndex:uniq_pricing_session_company"`

	Price  float64 `gorm:"not null"`
	Shares int64   `gorm:"not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (CompanyPricing) TableName() string {
	return "company_pricing"
}
