package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"dealroom/internal/console"
	"dealroom/internal/models"
)

var flagResetVariant string

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe simulation data so the next class starts clean",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch flagResetVariant {
		case "finance", "bidding", "all":
		default:
			return fmt.Errorf("unknown variant %q (finance, bidding or all)", flagResetVariant)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sure, err := console.PromptConfirm(fmt.Sprintf("Delete all %s data?", flagResetVariant))
		if err != nil || !sure {
			fmt.Println("Aborted.")
			return nil
		}

		ctx := cmd.Context()
		err = a.store.InTx(ctx, func(tx *gorm.DB) error {
			if flagResetVariant == "finance" || flagResetVariant == "all" {
				if err := a.store.TruncateFinanceTx(ctx, tx); err != nil {
					return err
				}
			}
			if flagResetVariant == "bidding" || flagResetVariant == "all" {
				if err := a.store.TruncateBiddingTx(ctx, tx); err != nil {
					return err
				}
			}
			details, err := json.Marshal(map[string]any{"variant": flagResetVariant})
			if err != nil {
				return err
			}
			return a.store.InsertAuditEventTx(ctx, tx, &models.AuditEvent{
				SessionID: a.cfg.Session.ID,
				Action:    "reset",
				Details:   datatypes.JSON(details),
			})
		})
		if err != nil {
			return fmt.Errorf("reset %s: %w", flagResetVariant, err)
		}

		fmt.Printf("Reset complete (%s).\n", flagResetVariant)
		return nil
	},
}

func init() {
	resetCmd.Flags().StringVar(&flagResetVariant, "variant", "all", "which variant to wipe: finance, bidding or all")
}
