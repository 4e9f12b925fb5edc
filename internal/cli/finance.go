package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dealroom/internal/console"
	"dealroom/internal/models"
	"dealroom/internal/session"
)

var financeCmd = &cobra.Command{
	Use:   "finance",
	Short: "Finance variant terminals (input team and reviewing team)",
}

var financeInputCmd = &cobra.Command{
	Use:   "input",
	Short: "Run the input team terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFinanceTerminal(cmd.Context(), false)
	},
}

var financeReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run the reviewing team terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFinanceTerminal(cmd.Context(), true)
	},
}

func init() {
	financeCmd.AddCommand(financeInputCmd)
	financeCmd.AddCommand(financeReviewCmd)
}

// financeFlows runs the interactive rounds for both finance terminals.
// The prompt functions are fields so tests can script answers.
type financeFlows struct {
	svc       *session.Service
	sessionID string
	teamID    int

	selectOption func(label string, options []string) (int, error)
	readValue    func(label string) (float64, error)
	confirm      func(label string) (bool, error)
}

func newFinanceFlows(svc *session.Service, sessionID string, teamID int) *financeFlows {
	return &financeFlows{
		svc:          svc,
		sessionID:    sessionID,
		teamID:       teamID,
		selectOption: console.PromptSelect,
		readValue:    console.PromptFloat,
		confirm:      console.PromptConfirm,
	}
}

func runFinanceTerminal(ctx context.Context, review bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	svc := &session.Service{Repo: a.store, Logger: a.logger}
	sessionID := a.cfg.Session.ID
	teamID := a.cfg.Session.TeamID
	flows := newFinanceFlows(svc, sessionID, teamID)

	title := fmt.Sprintf("Deal Terms - Input Team (session %s)", sessionID)
	footer := "[e] edit a term   [ESC] quit"
	edit := flows.editInput
	quitKeys := []byte{console.KeyEsc}
	if review {
		title = fmt.Sprintf("Deal Terms - Reviewing Team (session %s)", sessionID)
		footer = "[e] review a term   [q/ESC] quit"
		edit = flows.review
		quitKeys = []byte{'q', console.KeyEsc}
	}

	coord := &console.Coordinator{
		Interval:    a.cfg.Poll.Interval,
		SettlePause: a.cfg.Poll.PauseAfterEdit,
		EditKey:     'e',
		QuitKeys:    quitKeys,
		Logger:      a.logger,
		Render: func(ctx context.Context) error {
			snap, err := svc.EnsureSession(ctx, sessionID, teamID)
			if err != nil {
				return err
			}
			fmt.Print(console.FinanceView(title, snap, footer))
			return nil
		},
		Edit: edit,
	}
	return coord.Run(ctx)
}

// checkFinalized offers the keep-watching confirm whenever a menu opens on
// a finalized session. The second return is true when the round should end
// without showing the menu.
func (f *financeFlows) checkFinalized(snap *session.Snapshot) (bool, error) {
	if !snap.Finalized() {
		return false, nil
	}
	keep, err := f.confirm("All terms are final. Keep this terminal open?")
	if err != nil || !keep {
		return true, console.ErrQuit
	}
	return true, nil
}

// editInput runs one edit round for the input team: pick a field, enter
// the new value, submit. Changing an approved field needs an explicit
// confirm, since submitting resets that field's approval.
func (f *financeFlows) editInput(ctx context.Context) error {
	snap, err := f.svc.EnsureSession(ctx, f.sessionID, f.teamID)
	if err != nil {
		return err
	}
	if done, err := f.checkFinalized(snap); done {
		return err
	}

	options := append([]string{}, models.InputFields...)
	options = append(options, "Back")
	choice, err := f.selectOption("Which term do you want to change?", options)
	if err != nil || choice == len(models.InputFields) {
		return nil
	}
	field := models.InputFields[choice]

	if current, ok := snap.InputValue(field); ok {
		fmt.Printf("Current %s: %s\n", field, strconv.FormatFloat(current, 'f', -1, 64))
	}
	if snap.FieldApproved(field) {
		proceed, err := f.confirm(fmt.Sprintf(
			"%s is currently approved. Changing the value resets the approval. Continue?", field))
		if err != nil || !proceed {
			fmt.Println("No changes applied.")
			return nil
		}
	}

	value, err := f.readValue(fmt.Sprintf("New value for %s", field))
	if err != nil {
		return nil
	}

	applied, err := f.svc.SubmitInputValue(ctx, f.sessionID, f.teamID, field, value)
	if err != nil {
		return err
	}
	if applied {
		fmt.Printf("%s updated.\n", field)
	} else {
		fmt.Printf("%s unchanged.\n", field)
	}
	return nil
}

// review runs one review round: pick a field, approve or reject it.
func (f *financeFlows) review(ctx context.Context) error {
	snap, err := f.svc.EnsureSession(ctx, f.sessionID, f.teamID)
	if err != nil {
		return err
	}
	if done, err := f.checkFinalized(snap); done {
		return err
	}

	options := append([]string{}, models.InputFields...)
	options = append(options, "Back")
	choice, err := f.selectOption("Which term do you want to review?", options)
	if err != nil || choice == len(models.InputFields) {
		return nil
	}
	field := models.InputFields[choice]

	if value, ok := snap.InputValue(field); ok {
		fmt.Printf("%s is currently %s %s\n", field,
			strconv.FormatFloat(value, 'f', -1, 64), models.UnitFor(field))
	}

	approve, err := f.confirm(fmt.Sprintf("Approve %s?", field))
	if err != nil {
		return nil
	}

	changed, err := f.svc.SetApproval(ctx, f.sessionID, f.teamID, field, approve)
	if err != nil {
		return err
	}
	if changed {
		fmt.Printf("%s review recorded.\n", field)
	} else {
		fmt.Printf("%s already had that status.\n", field)
	}
	return nil
}
