package models

import (
	"time"
)

// InvestorAllocation is the per-investor share allocation derived for one
// company. Ratio is 1.0 when demand fits supply, supply/demand otherwise.
type InvestorAllocation struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	SessionID    string `gorm:"type:varchar(120);not null;uniqueIndex:uniq_alloc_session_investor_company"`
	InvestorName string `gorm:"type:varchar(120);not null;uniqueIndex:uniq_alloc_session_investor_company"`
	CompanyName  string `gorm:"type:varchar(120);not null;uniqueIndex:uniq_alloc_session_investor_company"`

	BidAmount       int64   `gorm:"not null"`
	AllocatedAmount int64   `gorm:"not null"`
	AllocationRatio float64 `gorm:"not null;default:1.0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (InvestorAllocation) TableName() string {
	return "investor_allocations"
}
