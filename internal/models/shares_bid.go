package models

import (
	"time"
)

// SharesBid is one investor's current bid for one company's shares.
// Resubmitting replaces the prior bid, it does not add to it.
type SharesBid struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	SessionID    string `gorm:"type:varchar(120);not null;uniqueIndex:uniq_bid_session_investor_company"`
	InvestorName string `gorm:"type:varchar(120);not null;uniqueIndex:uniq_bid_session_investor_company"`
	CompanyName  string `gorm:"type:varchar(120);not null;uniqueIndex:uniq_bid_session_investor_company"`

	Bids int64 `gorm:"not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (SharesBid) TableName() string {
	return "shares_bids"
}
