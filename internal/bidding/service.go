package bidding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"dealroom/internal/models"
	"dealroom/internal/repository"
)

var (
	ErrCompanyNotFound  = errors.New("company has no pricing")
	ErrNonPositivePrice = errors.New("price must be greater than 0")
	ErrNonPositiveCount = errors.New("share count must be greater than 0")
)

type Service struct {
	Repo   repository.BiddingRepository
	Logger *zap.Logger
}

// Board is the read view shared by the polling terminals and the
// facilitator API: all pricing, bids and derived outcomes for a session.
type Board struct {
	Pricing     []models.CompanyPricing
	Bids        []models.SharesBid
	Outputs     []models.BiddingOutput
	Allocations []models.InvestorAllocation
}

// LoadBoard fetches the session's full bidding state. Reads are
// independent, so they run concurrently.
func (s *Service) LoadBoard(ctx context.Context, sessionID string) (*Board, error) {
	board := &Board{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		board.Pricing, err = s.Repo.ListCompanyPricing(gctx, sessionID)
		return err
	})
	g.Go(func() error {
		var err error
		board.Bids, err = s.Repo.ListBids(gctx, sessionID)
		return err
	})
	g.Go(func() error {
		var err error
		board.Outputs, err = s.Repo.ListBiddingOutputs(gctx, sessionID)
		return err
	})
	g.Go(func() error {
		var err error
		board.Allocations, err = s.Repo.ListAllocations(gctx, sessionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load bidding board %q: %w", sessionID, err)
	}
	return board, nil
}

// SetCompanyPricing records the facilitator's price and share supply for a
// company and recomputes its outcome against any bids already placed.
func (s *Service) SetCompanyPricing(ctx context.Context, sessionID, company string, price float64, shares int64) error {
	if !(price > 0) {
		return ErrNonPositivePrice
	}
	if shares <= 0 {
		return ErrNonPositiveCount
	}

	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		item := models.CompanyPricing{
			SessionID:   sessionID,
			CompanyName: company,
			Price:       price,
			Shares:      shares,
		}
		if err := s.Repo.UpsertCompanyPricingTx(ctx, tx, &item); err != nil {
			return err
		}
		if err := s.RecomputeCompanyTx(ctx, tx, sessionID, company); err != nil {
			return err
		}
		return s.audit(ctx, tx, sessionID, "pricing_update", map[string]any{
			"company": company,
			"price":   price,
			"shares":  shares,
		})
	})
	if err != nil {
		return fmt.Errorf("set pricing %s: %w", company, err)
	}

	if s.Logger != nil {
		s.Logger.Info("company priced",
			zap.String("session", sessionID),
			zap.String("company", company),
			zap.Float64("price", price),
			zap.Int64("shares", shares),
		)
	}
	return nil
}

// PlaceBid records an investor's bid for a company, replacing any earlier
// bid by the same investor, then recomputes every priced company. Bids for
// companies the facilitator has not priced yet are stored and simply wait
// for pricing to arrive.
func (s *Service) PlaceBid(ctx context.Context, sessionID, investor, company string, count int64) error {
	if count <= 0 {
		return ErrNonPositiveCount
	}

	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		item := models.SharesBid{
			SessionID:    sessionID,
			InvestorName: investor,
			CompanyName:  company,
			Bids:         count,
		}
		if err := s.Repo.UpsertSharesBidTx(ctx, tx, &item); err != nil {
			return err
		}
		if err := s.RecomputeAllTx(ctx, tx, sessionID); err != nil {
			return err
		}
		return s.audit(ctx, tx, sessionID, "bid_update", map[string]any{
			"investor": investor,
			"company":  company,
			"bids":     count,
		})
	})
	if err != nil {
		return fmt.Errorf("place bid %s/%s: %w", investor, company, err)
	}

	if s.Logger != nil {
		s.Logger.Info("bid placed",
			zap.String("session", sessionID),
			zap.String("investor", investor),
			zap.String("company", company),
			zap.Int64("bids", count),
		)
	}
	return nil
}

// RecomputeCompanyTx rederives one company's output and allocations from
// its pricing and current bids, inside the caller's transaction.
func (s *Service) RecomputeCompanyTx(ctx context.Context, tx *gorm.DB, sessionID, company string) error {
	pricing, err := s.Repo.GetCompanyPricingTx(ctx, tx, sessionID, company)
	if err != nil {
		return err
	}
	if pricing == nil {
		return fmt.Errorf("%w: %q", ErrCompanyNotFound, company)
	}

	bids, err := s.Repo.ListCompanyBidsTx(ctx, tx, sessionID, company)
	if err != nil {
		return err
	}

	result := Allocate(company, pricing.Price, pricing.Shares, bids)

	output := models.BiddingOutput{
		SessionID:     sessionID,
		CompanyName:   company,
		SharesBidFor:  result.SharesBidFor,
		CapitalRaised: result.CapitalRaised,
		Subscription:  result.Subscription,
	}
	if err := s.Repo.UpsertBiddingOutputTx(ctx, tx, &output); err != nil {
		return err
	}

	for _, alloc := range result.Allocations {
		item := models.InvestorAllocation{
			SessionID:       sessionID,
			InvestorName:    alloc.Investor,
			CompanyName:     company,
			BidAmount:       alloc.Bid,
			AllocatedAmount: alloc.Allocated,
			AllocationRatio: alloc.Ratio,
		}
		if err := s.Repo.UpsertInvestorAllocationTx(ctx, tx, &item); err != nil {
			return err
		}
	}
	return nil
}

// RecomputeAllTx rederives every priced company in the session. Companies
// without pricing are skipped, not failed: an investor may bid before the
// facilitator prices.
func (s *Service) RecomputeAllTx(ctx context.Context, tx *gorm.DB, sessionID string) error {
	pricing, err := s.Repo.ListCompanyPricingTx(ctx, tx, sessionID)
	if err != nil {
		return err
	}
	for _, p := range pricing {
		if err := s.RecomputeCompanyTx(ctx, tx, sessionID, p.CompanyName); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) audit(ctx context.Context, tx *gorm.DB, sessionID, action string, details map[string]any) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return err
	}
	return s.Repo.InsertAuditEventTx(ctx, tx, &models.AuditEvent{
		SessionID: sessionID,
		Action:    action,
		Details:   datatypes.JSON(payload),
	})
}
