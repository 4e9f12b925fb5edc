package repository

import (
	"context"

	"gorm.io/gorm"

	"dealroom/internal/models"
)

// FinanceRepository is the store surface for the financial-terms variant.
// Methods with a Tx suffix run against the caller's transaction; the rest
// are single reads that may run outside any transaction.
type FinanceRepository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	ListInputs(ctx context.Context, sessionID string, teamID int) ([]models.Input, error)
	ListInputsTx(ctx context.Context, tx *gorm.DB, sessionID string, teamID int) ([]models.Input, error)
	FindInputTx(ctx context.Context, tx *gorm.DB, sessionID string, teamID int, field string) (*models.Input, error)
	CreateMissingInputTx(ctx context.Context, tx *gorm.DB, item *models.Input) error
	UpsertInputTx(ctx context.Context, tx *gorm.DB, item *models.Input) error

	ListApprovals(ctx context.Context, sessionID string, teamID int) ([]models.Approval, error)
	ListApprovalsTx(ctx context.Context, tx *gorm.DB, sessionID string, teamID int) ([]models.Approval, error)
	FindApprovalTx(ctx context.Context, tx *gorm.DB, sessionID string, teamID int, field string) (*models.Approval, error)
	CreateMissingApprovalTx(ctx context.Context, tx *gorm.DB, item *models.Approval) error
	UpsertApprovalTx(ctx context.Context, tx *gorm.DB, item *models.Approval) error

	ListOutputs(ctx context.Context, sessionID string, teamID int) ([]models.Output, error)
	FindOutputTx(ctx context.Context, tx *gorm.DB, sessionID string, teamID int) (*models.Output, error)
	CreateOutputTx(ctx context.Context, tx *gorm.DB, item *models.Output) error
	UpsertOutputTx(ctx context.Context, tx *gorm.DB, item *models.Output) error
	SetOutputApprovedTx(ctx context.Context, tx *gorm.DB, sessionID string, teamID int, approved bool) error

	TruncateFinanceTx(ctx context.Context, tx *gorm.DB) error

	InsertAuditEventTx(ctx context.Context, tx *gorm.DB, item *models.AuditEvent) error
}

// BiddingRepository is the store surface for the share-bidding variant.
type BiddingRepository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	GetCompanyPricingTx(ctx context.Context, tx *gorm.DB, sessionID, companyName string) (*models.CompanyPricing, error)
	ListCompanyPricing(ctx context.Context, sessionID string) ([]models.CompanyPricing, error)
	ListCompanyPricingTx(ctx context.Context, tx *gorm.DB, sessionID string) ([]models.CompanyPricing, error)
	UpsertCompanyPricingTx(ctx context.Context, tx *gorm.DB, item *models.CompanyPricing) error

	ListBids(ctx context.Context, sessionID string) ([]models.SharesBid, error)
	ListCompanyBidsTx(ctx context.Context, tx *gorm.DB, sessionID, companyName string) ([]models.SharesBid, error)
	UpsertSharesBidTx(ctx context.Context, tx *gorm.DB, item *models.SharesBid) error

	ListBiddingOutputs(ctx context.Context, sessionID string) ([]models.BiddingOutput, error)
	UpsertBiddingOutputTx(ctx context.Context, tx *gorm.DB, item *models.BiddingOutput) error

	ListAllocations(ctx context.Context, sessionID string) ([]models.InvestorAllocation, error)
	ListInvestorAllocations(ctx context.Context, sessionID, investorName string) ([]models.InvestorAllocation, error)
	UpsertInvestorAllocationTx(ctx context.Context, tx *gorm.DB, item *models.InvestorAllocation) error

	TruncateBiddingTx(ctx context.Context, tx *gorm.DB) error

	InsertAuditEventTx(ctx context.Context, tx *gorm.DB, item *models.AuditEvent) error
}

// Repository is the full store surface used by the CLI commands and the
// facilitator API.
type Repository interface {
	FinanceRepository
	BiddingRepository
}
