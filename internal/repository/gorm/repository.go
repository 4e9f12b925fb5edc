package gormrepository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dealroom/internal/models"
)

// Store implements repository.Repository on a gorm connection. Writes that
// belong to a mutation always run through the Tx methods so the caller
// controls the transaction boundary.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- finance: inputs --------------------------------------------------------

func (s *Store) ListInputs(ctx context.Context, sessionID string, teamID int) ([]models.Input, error) {
	return s.ListInputsTx(ctx, s.db, sessionID, teamID)
}

func (s *Store) ListInputsTx(ctx context.Context, tx *gorm.DB, sessionID string, teamID int) ([]models.Input, error) {
	var items []models.Input
	err := tx.WithContext(ctx).
		Where("session_id = ? AND team_id = ?", sessionID, teamID).
		Order("field_name asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) FindInputTx(ctx context.Context, tx *gorm.DB, sessionID string, teamID int, field string) (*models.Input, error) {
	var item models.Input
	err := tx.WithContext(ctx).
		Where("session_id = ? AND team_id = ? AND field_name = ?", sessionID, teamID, field).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateMissingInputTx inserts a placeholder row and is a no-op when the
// unique key already exists, so concurrent materialization cannot clobber a
// submitted value.
func (s *Store) CreateMissingInputTx(ctx context.Context, tx *gorm.DB, item *models.Input) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "team_id"}, {Name: "field_name"}},
		DoNothing: true,
	}).Create(item).Error
}

func (s *Store) UpsertInputTx(ctx context.Context, tx *gorm.DB, item *models.Input) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "team_id"}, {Name: "field_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "output_id", "updated_at"}),
	}).Create(item).Error
}

// --- finance: approvals -----------------------------------------------------

func (s *Store) ListApprovals(ctx context.Context, sessionID string, teamID int) ([]models.Approval, error) {
	return s.ListApprovalsTx(ctx, s.db, sessionID, teamID)
}

func (s *Store) ListApprovalsTx(ctx context.Context, tx *gorm.DB, sessionID string, teamID int) ([]models.Approval, error) {
	var items []models.Approval
	err := tx.WithContext(ctx).
		Where("session_id = ? AND team_id = ?", sessionID, teamID).
		Order("field_name asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) FindApprovalTx(ctx context.Context, tx *gorm.DB, sessionID string, teamID int, field string) (*models.Approval, error) {
	var item models.Approval
	err := tx.WithContext(ctx).
		Where("session_id = ? AND team_id = ? AND field_name = ?", sessionID, teamID, field).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateMissingApprovalTx(ctx context.Context, tx *gorm.DB, item *models.Approval) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "team_id"}, {Name: "field_name"}},
		DoNothing: true,
	}).Create(item).Error
}

func (s *Store) UpsertApprovalTx(ctx context.Context, tx *gorm.DB, item *models.Approval) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "team_id"}, {Name: "field_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(item).Error
}

// --- finance: outputs -------------------------------------------------------

func (s *Store) ListOutputs(ctx context.Context, sessionID string, teamID int) ([]models.Output, error) {
	var items []models.Output
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND input_team_id = ?", sessionID, teamID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) FindOutputTx(ctx context.Context, tx *gorm.DB, sessionID string, teamID int) (*models.Output, error) {
	var item models.Output
	err := tx.WithContext(ctx).
		Where("session_id = ? AND input_team_id = ?", sessionID, teamID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateOutputTx(ctx context.Context, tx *gorm.DB, item *models.Output) error {
	return tx.WithContext(ctx).Create(item).Error
}

func (s *Store) UpsertOutputTx(ctx context.Context, tx *gorm.DB, item *models.Output) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "input_team_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"valuation", "is_approved", "generated_at", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) SetOutputApprovedTx(ctx context.Context, tx *gorm.DB, sessionID string, teamID int, approved bool) error {
	return tx.WithContext(ctx).
		Model(&models.Output{}).
		Where("session_id = ? AND input_team_id = ?", sessionID, teamID).
		Update("is_approved", approved).Error
}

func (s *Store) TruncateFinanceTx(ctx context.Context, tx *gorm.DB) error {
	// Inputs reference outputs, so they go first.
	for _, model := range []any{&models.Input{}, &models.Approval{}, &models.Output{}} {
		if err := tx.WithContext(ctx).
			Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// --- bidding ----------------------------------------------------------------

func (s *Store) GetCompanyPricingTx(ctx context.Context, tx *gorm.DB, sessionID, companyName string) (*models.CompanyPricing, error) {
	var item models.CompanyPricing
	err := tx.WithContext(ctx).
		Where("session_id = ? AND company_name = ?", sessionID, companyName).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListCompanyPricing(ctx context.Context, sessionID string) ([]models.CompanyPricing, error) {
	return s.ListCompanyPricingTx(ctx, s.db, sessionID)
}

func (s *Store) ListCompanyPricingTx(ctx context.Context, tx *gorm.DB, sessionID string) ([]models.CompanyPricing, error) {
	var items []models.CompanyPricing
	err := tx.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("company_name asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpsertCompanyPricingTx(ctx context.Context, tx *gorm.DB, item *models.CompanyPricing) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "company_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "shares", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) ListBids(ctx context.Context, sessionID string) ([]models.SharesBid, error) {
	var items []models.SharesBid
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("company_name asc, investor_name asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListCompanyBidsTx(ctx context.Context, tx *gorm.DB, sessionID, companyName string) ([]models.SharesBid, error) {
	var items []models.SharesBid
	err := tx.WithContext(ctx).
		Where("session_id = ? AND company_name = ?", sessionID, companyName).
		Order("investor_name asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpsertSharesBidTx(ctx context.Context, tx *gorm.DB, item *models.SharesBid) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "investor_name"}, {Name: "company_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"bids", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) ListBiddingOutputs(ctx context.Context, sessionID string) ([]models.BiddingOutput, error) {
	var items []models.BiddingOutput
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("company_name asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpsertBiddingOutputTx(ctx context.Context, tx *gorm.DB, item *models.BiddingOutput) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "company_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"shares_bid_for", "capital_raised", "subscription", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) ListAllocations(ctx context.Context, sessionID string) ([]models.InvestorAllocation, error) {
	var items []models.InvestorAllocation
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("company_name asc, investor_name asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListInvestorAllocations(ctx context.Context, sessionID, investorName string) ([]models.InvestorAllocation, error) {
	var items []models.InvestorAllocation
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND investor_name = ?", sessionID, investorName).
		Order("company_name asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpsertInvestorAllocationTx(ctx context.Context, tx *gorm.DB, item *models.InvestorAllocation) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "investor_name"}, {Name: "company_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"bid_amount", "allocated_amount", "allocation_ratio", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) TruncateBiddingTx(ctx context.Context, tx *gorm.DB) error {
	for _, model := range []any{
		&models.InvestorAllocation{},
		&models.BiddingOutput{},
		&models.SharesBid{},
		&models.CompanyPricing{},
	} {
		if err := tx.WithContext(ctx).
			Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// --- audit ------------------------------------------------------------------

func (s *Store) InsertAuditEventTx(ctx context.Context, tx *gorm.DB, item *models.AuditEvent) error {
	return tx.WithContext(ctx).Create(item).Error
}
