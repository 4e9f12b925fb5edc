package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dealroom/internal/bidding"
	"dealroom/internal/console"
)

var flagInvestor string

var biddingCmd = &cobra.Command{
	Use:   "bidding",
	Short: "Bidding variant terminals (facilitator and investors)",
}

var biddingPriceCmd = &cobra.Command{
	Use:   "price",
	Short: "Run the facilitator terminal that prices companies",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPricingTerminal(cmd.Context())
	},
}

var biddingInvestCmd = &cobra.Command{
	Use:   "invest",
	Short: "Run an investor terminal that bids for shares",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInvestorTerminal(cmd.Context())
	},
}

func init() {
	biddingInvestCmd.Flags().StringVar(&flagInvestor, "investor", "", "investor name shown on the board")
	biddingCmd.AddCommand(biddingPriceCmd)
	biddingCmd.AddCommand(biddingInvestCmd)
}

func runPricingTerminal(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	svc := &bidding.Service{Repo: a.store, Logger: a.logger}
	sessionID := a.cfg.Session.ID
	title := fmt.Sprintf("Share Bidding - Facilitator (session %s)", sessionID)
	footer := "[e] price a company   [q/ESC] quit"

	coord := &console.Coordinator{
		Interval:    a.cfg.Poll.Interval,
		SettlePause: a.cfg.Poll.PauseAfterEdit,
		EditKey:     'e',
		QuitKeys:    []byte{'q', console.KeyEsc},
		Logger:      a.logger,
		Render: func(ctx context.Context) error {
			board, err := svc.LoadBoard(ctx, sessionID)
			if err != nil {
				return err
			}
			fmt.Print(console.PricingBoard(title, board, footer))
			return nil
		},
		Edit: func(ctx context.Context) error {
			return pricingFlow(ctx, svc, sessionID)
		},
	}
	return coord.Run(ctx)
}

func runInvestorTerminal(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	investor := flagInvestor
	if investor == "" {
		name, err := console.PromptText("Investor name", "", func(s string) error {
			if s == "" {
				return errors.New("enter a name")
			}
			return nil
		})
		if err != nil {
			return nil
		}
		investor = name
	}

	svc := &bidding.Service{Repo: a.store, Logger: a.logger}
	sessionID := a.cfg.Session.ID
	title := fmt.Sprintf("Share Bidding - %s (session %s)", investor, sessionID)
	footer := "[e] place a bid   [q/ESC] quit"

	coord := &console.Coordinator{
		Interval:    a.cfg.Poll.Interval,
		SettlePause: a.cfg.Poll.PauseAfterEdit,
		EditKey:     'e',
		QuitKeys:    []byte{'q', console.KeyEsc},
		Logger:      a.logger,
		Render: func(ctx context.Context) error {
			board, err := svc.LoadBoard(ctx, sessionID)
			if err != nil {
				return err
			}
			fmt.Print(console.InvestorBoard(title, board, investor, footer))
			return nil
		},
		Edit: func(ctx context.Context) error {
			return bidFlow(ctx, svc, sessionID, investor)
		},
	}
	return coord.Run(ctx)
}

// pricingFlow records one company's price and share supply.
func pricingFlow(ctx context.Context, svc *bidding.Service, sessionID string) error {
	company, err := console.PromptText("Company name", "", func(s string) error {
		if s == "" {
			return errors.New("enter a company name")
		}
		return nil
	})
	if err != nil {
		return nil
	}

	price, err := console.PromptFloat("Share price")
	if err != nil {
		return nil
	}
	shares, err := console.PromptInt("Shares on offer")
	if err != nil {
		return nil
	}

	if err := svc.SetCompanyPricing(ctx, sessionID, company, price, shares); err != nil {
		return err
	}
	fmt.Printf("%s priced at %.2f for %d shares.\n", company, price, shares)
	return nil
}

// bidFlow records one bid; picking a company the facilitator has not
// priced yet is allowed, the bid waits for pricing.
func bidFlow(ctx context.Context, svc *bidding.Service, sessionID, investor string) error {
	board, err := svc.LoadBoard(ctx, sessionID)
	if err != nil {
		return err
	}

	var company string
	if len(board.Pricing) > 0 {
		options := make([]string, 0, len(board.Pricing)+1)
		for _, p := range board.Pricing {
			options = append(options, p.CompanyName)
		}
		options = append(options, "Other / Back")
		choice, err := console.PromptSelect("Which company?", options)
		if err != nil {
			return nil
		}
		if choice < len(board.Pricing) {
			company = board.Pricing[choice].CompanyName
		}
	}
	if company == "" {
		name, err := console.PromptText("Company name (empty to cancel)", "", nil)
		if err != nil || name == "" {
			return nil
		}
		company = name
	}

	count, err := console.PromptInt("Shares to bid for")
	if err != nil {
		return nil
	}

	if err := svc.PlaceBid(ctx, sessionID, investor, company, count); err != nil {
		return err
	}
	fmt.Printf("Bid recorded: %d shares of %s.\n", count, company)
	return nil
}
