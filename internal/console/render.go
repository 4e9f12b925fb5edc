package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"dealroom/internal/bidding"
	"dealroom/internal/models"
	"dealroom/internal/session"
)

// clearScreen repositions the cursor at the origin and wipes the display,
// so each poll tick repaints in place instead of scrolling.
const clearScreen = "\x1b[2J\x1b[H"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// printer formats numbers with thousands separators for the money columns.
var printer = message.NewPrinter(language.English)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		}).
		Headers(headers...)
}

func approvalLabel(approved bool) string {
	if approved {
		return okStyle.Render("OK")
	}
	return warnStyle.Render("TBD")
}

// FinanceView renders the shared terms table for both finance terminals.
// The footer names the keys the calling terminal listens for.
func FinanceView(title string, snap *session.Snapshot, footer string) string {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	tbl := newTable("#", "Field", "Value", "Unit", "Status")
	for i, field := range models.InputFields {
		value := dimStyle.Render("-")
		if v, ok := snap.InputValue(field); ok {
			value = printer.Sprintf("%.2f", v)
		}
		tbl.Row(
			fmt.Sprintf("%d", i+1),
			field,
			value,
			models.UnitFor(field),
			approvalLabel(snap.FieldApproved(field)),
		)
	}
	b.WriteString(tbl.Render())
	b.WriteString("\n\n")

	if len(snap.Outputs) > 0 {
		out := snap.Outputs[0]
		b.WriteString(headerStyle.Render("Valuation: "))
		b.WriteString(printer.Sprintf("%.2f M$", out.Valuation))
		b.WriteString("  ")
		if out.IsApproved {
			b.WriteString(okStyle.Render("FINAL"))
		} else {
			b.WriteString(warnStyle.Render("DRAFT"))
		}
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(footer))
	b.WriteString("\n")
	return b.String()
}

// PricingBoard renders the facilitator's view: pricing plus outcomes.
func PricingBoard(title string, board *bidding.Board, footer string) string {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	pricing := newTable("Company", "Price", "Shares")
	for _, p := range board.Pricing {
		pricing.Row(
			p.CompanyName,
			printer.Sprintf("%.2f", p.Price),
			printer.Sprintf("%d", p.Shares),
		)
	}
	b.WriteString(pricing.Render())
	b.WriteString("\n\n")

	b.WriteString(outcomeTable(board))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(footer))
	b.WriteString("\n")
	return b.String()
}

// InvestorBoard renders an investor's view: outcomes, the investor's own
// allocations, and the full bid book.
func InvestorBoard(title string, board *bidding.Board, investor, footer string) string {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(outcomeTable(board))
	b.WriteString("\n\n")

	mine := newTable("Company", "Bid", "Allocated", "Ratio")
	for _, a := range board.Allocations {
		if a.InvestorName != investor {
			continue
		}
		mine.Row(
			a.CompanyName,
			printer.Sprintf("%d", a.BidAmount),
			printer.Sprintf("%d", a.AllocatedAmount),
			fmt.Sprintf("%.4f", a.AllocationRatio),
		)
	}
	b.WriteString(headerStyle.Render("Your allocations"))
	b.WriteString("\n")
	b.WriteString(mine.Render())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(footer))
	b.WriteString("\n")
	return b.String()
}

func outcomeTable(board *bidding.Board) string {
	tbl := newTable("Company", "Shares Bid For", "Capital Raised", "Subscription")
	for _, out := range board.Outputs {
		label := okStyle.Render(string(out.Subscription))
		if out.Subscription == models.SubscriptionOver {
			label = warnStyle.Render(string(out.Subscription))
		}
		tbl.Row(
			out.CompanyName,
			printer.Sprintf("%d", out.SharesBidFor),
			printer.Sprintf("%.2f", out.CapitalRaised),
			label,
		)
	}
	return tbl.Render()
}
