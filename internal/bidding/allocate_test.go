package bidding

import (
	"testing"

	"dealroom/internal/models"
)

func bid(investor string, n int64) models.SharesBid {
	return models.SharesBid{InvestorName: investor, Bids: n}
}

func TestAllocateUnderSubscribed(t *testing.T) {
	result := Allocate("Acme", 10, 3000, []models.SharesBid{
		bid("alice", 1000),
		bid("bob", 500),
	})

	if result.Subscription != models.SubscriptionUnder {
		t.Fatalf("subscription = %s, want Under", result.Subscription)
	}
	if result.SharesBidFor != 1500 {
		t.Fatalf("shares bid for = %d, want 1500", result.SharesBidFor)
	}
	for _, a := range result.Allocations {
		if a.Allocated != a.Bid {
			t.Errorf("%s allocated %d of %d under-subscribed", a.Investor, a.Allocated, a.Bid)
		}
		if a.Ratio != 1 {
			t.Errorf("%s ratio = %v, want 1", a.Investor, a.Ratio)
		}
	}
	if result.CapitalRaised != 15000 {
		t.Fatalf("capital raised = %v, want 15000", result.CapitalRaised)
	}
}

func TestAllocateOverSubscribedProRata(t *testing.T) {
	result := Allocate("Acme", 4, 2500, []models.SharesBid{
		bid("alice", 1500),
		bid("bob", 1500),
	})

	if result.Subscription != models.SubscriptionOver {
		t.Fatalf("subscription = %s, want Over", result.Subscription)
	}
	if result.SharesBidFor != 3000 {
		t.Fatalf("shares bid for = %d, want 3000", result.SharesBidFor)
	}

	var allocated int64
	for _, a := range result.Allocations {
		// floor(1500 * 2500/3000) = 1250
		if a.Allocated != 1250 {
			t.Errorf("%s allocated %d, want 1250", a.Investor, a.Allocated)
		}
		if a.Allocated > a.Bid {
			t.Errorf("%s allocated %d above bid %d", a.Investor, a.Allocated, a.Bid)
		}
		allocated += a.Allocated
	}
	if allocated > 2500 {
		t.Fatalf("total allocated %d exceeds supply 2500", allocated)
	}
	// Capital follows what was actually allocated, not what was bid.
	if result.CapitalRaised != 10000 {
		t.Fatalf("capital raised = %v, want 10000 (2500 * 4)", result.CapitalRaised)
	}
}

func TestAllocateExactDemandReportsOver(t *testing.T) {
	result := Allocate("Acme", 2, 2000, []models.SharesBid{
		bid("alice", 1200),
		bid("bob", 800),
	})

	if result.Subscription != models.SubscriptionOver {
		t.Fatalf("subscription = %s, want Over at exact demand", result.Subscription)
	}
	// Ratio is exactly 1, so every bid still fills in full.
	for _, a := range result.Allocations {
		if a.Allocated != a.Bid {
			t.Errorf("%s allocated %d of %d at exact demand", a.Investor, a.Allocated, a.Bid)
		}
	}
	if result.CapitalRaised != 4000 {
		t.Fatalf("capital raised = %v, want 4000", result.CapitalRaised)
	}
}

func TestAllocateNoBids(t *testing.T) {
	result := Allocate("Acme", 10, 1000, nil)

	if result.Subscription != models.SubscriptionUnder {
		t.Fatalf("subscription = %s, want Under with no bids", result.Subscription)
	}
	if result.SharesBidFor != 0 || result.CapitalRaised != 0 {
		t.Fatalf("empty book produced {bid %d, capital %v}", result.SharesBidFor, result.CapitalRaised)
	}
	if len(result.Allocations) != 0 {
		t.Fatalf("empty book produced %d allocations", len(result.Allocations))
	}
}

func TestAllocateFloorNeverRoundsUp(t *testing.T) {
	result := Allocate("Acme", 1, 1000, []models.SharesBid{
		bid("alice", 999),
		bid("bob", 999),
		bid("carol", 999),
	})

	var allocated int64
	for _, a := range result.Allocations {
		// floor(999 * 1000/2997) = 333
		if a.Allocated != 333 {
			t.Errorf("%s allocated %d, want 333", a.Investor, a.Allocated)
		}
		allocated += a.Allocated
	}
	if allocated > 1000 {
		t.Fatalf("total allocated %d exceeds supply", allocated)
	}
}
