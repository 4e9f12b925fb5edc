package models

import (
	"time"
)

// Subscription labels a company's demand relative to its supply.
type Subscription string

const (
	SubscriptionUnder Subscription = "Under"
	SubscriptionOver  Subscription = "Over"

	// SubscriptionEqual exists in the schema but is never written: demand
	// exactly matching supply is labelled Over.
	SubscriptionEqual Subscription = "Equal"
)

// BiddingOutput is the derived auction result for one company: aggregate
// demand, capital raised after allocation, and the subscription label.
// Fully recomputed from pricing and bids on every mutation.
type BiddingOutput struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	SessionID   string `gorm:"type:varchar(120);not null;uniqueIndex:uniq_bidding_output_session_company"`
	CompanyName string `gorm:"type:varchar(120);not null;uniqueIndex:uniq_bidding_output_session_company"`

	SharesBidFor  int64        `gorm:"not null;default:0"`
	CapitalRaised float64      `gorm:"not null;default:0"`
	Subscription  Subscription `gorm:"type:varchar(10);not null;default:'Under'"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (BiddingOutput) TableName() string {
	return "bidding_outputs"
}
