package db

import (
	"gorm.io/gorm"

	"dealroom/internal/models"
)

// AutoMigrate creates or updates the schema for both simulation variants.
// Safe to run from every terminal process; existing data is preserved.
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		// Finance variant. Output first: team_inputs carries its FK.
		&models.Output{},
		&models.Input{},
		&models.Approval{},
		// Bidding variant.
		&models.CompanyPricing{},
		&models.SharesBid{},
		&models.BiddingOutput{},
		&models.InvestorAllocation{},
		// Shared.
		&models.AuditEvent{},
	)
}
