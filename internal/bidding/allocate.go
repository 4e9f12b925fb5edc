// Package bidding implements the share-bidding variant: facilitators price
// companies, investors bid for shares, and every bid change recomputes the
// per-company subscription outcome and pro-rata allocations.
package bidding

import (
	"math"

	"github.com/shopspring/decimal"

	"dealroom/internal/models"
)

// InvestorResult is one investor's outcome for a single company.
type InvestorResult struct {
	Investor  string
	Bid       int64
	Allocated int64
	Ratio     float64
}

// CompanyResult is the derived outcome for one priced company.
type CompanyResult struct {
	Company       string
	SharesBidFor  int64
	CapitalRaised float64
	Subscription  models.Subscription
	Allocations   []InvestorResult
}

// Allocate derives a company's subscription outcome from its pricing and
// the current bid set. Under-subscription (demand strictly below supply)
// fills every bid in full; otherwise each investor gets the floor of their
// bid scaled by supply/demand, so demand exactly equal to supply is also
// reported as over-subscribed. Capital raised is the share price times the
// total allocated, not the total bid.
func Allocate(company string, price float64, supply int64, bids []models.SharesBid) CompanyResult {
	result := CompanyResult{
		Company:      company,
		Subscription: models.SubscriptionUnder,
	}

	var demand int64
	for _, b := range bids {
		demand += b.Bids
	}
	result.SharesBidFor = demand

	ratio := 1.0
	if demand >= supply && demand > 0 {
		result.Subscription = models.SubscriptionOver
		ratio = float64(supply) / float64(demand)
	}

	var allocated int64
	for _, b := range bids {
		amount := b.Bids
		if result.Subscription == models.SubscriptionOver {
			amount = int64(math.Floor(float64(b.Bids) * ratio))
		}
		allocated += amount
		result.Allocations = append(result.Allocations, InvestorResult{
			Investor:  b.InvestorName,
			Bid:       b.Bids,
			Allocated: amount,
			Ratio:     ratio,
		})
	}

	capital, _ := decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(allocated)).
		Float64()
	result.CapitalRaised = capital

	return result
}
