// Package session implements the shared-session state machine for the
// financial-terms variant: lazy materialization of the per-field record
// set, the approval aggregate, and the mutation protocol that keeps the
// derived output consistent with inputs and approvals.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"dealroom/internal/db"
	"dealroom/internal/models"
	"dealroom/internal/repository"
)

var (
	ErrUnknownField     = errors.New("unknown input field")
	ErrNonPositiveValue = errors.New("value must be a finite number greater than 0")
)

// placeholderValue seeds inputs materialized before the team has entered
// anything real.
const placeholderValue = 1

type Service struct {
	Repo   repository.FinanceRepository
	Logger *zap.Logger
}

// Snapshot is the reconciled view of one session+team: the full record
// set after materialization, plus the derived aggregate approval state.
type Snapshot struct {
	Inputs    []models.Input
	Approvals []models.Approval
	Outputs   []models.Output

	// AllApproved is true when every tracked field has an approval row
	// and every one of them is approved.
	AllApproved bool
	OutputID    uint64
}

// Finalized reports whether the session's output has been promoted to
// approved, i.e. every field is approved and the output row reflects it.
func (s *Snapshot) Finalized() bool {
	return s.AllApproved && len(s.Outputs) > 0 && s.Outputs[0].IsApproved
}

// MissingFields returns tracked fields with no input row. Empty after a
// successful reconciliation; retained for rendering between states.
func (s *Snapshot) MissingFields() []string {
	var missing []string
	for _, field := range models.InputFields {
		found := false
		for _, in := range s.Inputs {
			if in.FieldName == field {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, field)
		}
	}
	return missing
}

// InputValue returns the current value for field, if present.
func (s *Snapshot) InputValue(field string) (float64, bool) {
	for _, in := range s.Inputs {
		if in.FieldName == field {
			return in.Value, true
		}
	}
	return 0, false
}

// FieldApproved returns the approval status for field.
func (s *Snapshot) FieldApproved(field string) bool {
	for _, a := range s.Approvals {
		if a.FieldName == field {
			return a.IsApproved
		}
	}
	return false
}

// EnsureSession is the single read path: it fetches the session's records,
// materializes any missing ones inside one transaction, and derives the
// aggregate approval state. Calling it again with no intervening edits
// performs no further writes and returns an identical snapshot.
func (s *Service) EnsureSession(ctx context.Context, sessionID string, teamID int) (*Snapshot, error) {
	var (
		inputs    []models.Input
		approvals []models.Approval
		outputs   []models.Output
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inputs, err = s.Repo.ListInputs(gctx, sessionID, teamID)
		return err
	})
	g.Go(func() error {
		var err error
		approvals, err = s.Repo.ListApprovals(gctx, sessionID, teamID)
		return err
	})
	g.Go(func() error {
		var err error
		outputs, err = s.Repo.ListOutputs(gctx, sessionID, teamID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load session %q: %w", sessionID, err)
	}

	snap := &Snapshot{}
	outputExisted := len(outputs) > 0

	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		var output models.Output
		if outputExisted {
			output = outputs[0]
		} else {
			output = models.Output{
				SessionID:   sessionID,
				InputTeamID: teamID,
				Valuation:   0,
				IsApproved:  false,
				GeneratedAt: db.NowUTC(),
			}
			if err := s.Repo.CreateOutputTx(ctx, tx, &output); err != nil {
				return err
			}
		}

		missingApprovals := missingFieldSet(approvalFields(approvals))
		for _, field := range missingApprovals {
			item := models.Approval{
				SessionID:  sessionID,
				TeamID:     teamID,
				FieldName:  field,
				IsApproved: false,
			}
			if err := s.Repo.CreateMissingApprovalTx(ctx, tx, &item); err != nil {
				return err
			}
		}
		if len(missingApprovals) > 0 {
			fresh, err := s.Repo.ListApprovalsTx(ctx, tx, sessionID, teamID)
			if err != nil {
				return err
			}
			approvals = fresh
		}

		missingInputs := missingFieldSet(inputFields(inputs))
		for _, field := range missingInputs {
			item := models.Input{
				SessionID: sessionID,
				TeamID:    teamID,
				FieldName: field,
				Value:     placeholderValue,
				OutputID:  output.ID,
			}
			if err := s.Repo.CreateMissingInputTx(ctx, tx, &item); err != nil {
				return err
			}
		}
		if len(missingInputs) > 0 {
			fresh, err := s.Repo.ListInputsTx(ctx, tx, sessionID, teamID)
			if err != nil {
				return err
			}
			inputs = fresh
		}

		allApproved := aggregateApproved(approvals)

		// A fully approved set promotes the output, but only when the
		// output predates this call: a session materialized just now
		// cannot be born finalized.
		if allApproved && outputExisted && !output.IsApproved {
			if err := s.Repo.SetOutputApprovedTx(ctx, tx, sessionID, teamID, true); err != nil {
				return err
			}
			output.IsApproved = true
		}

		snap.Inputs = inputs
		snap.Approvals = approvals
		snap.Outputs = []models.Output{output}
		snap.AllApproved = allApproved
		snap.OutputID = output.ID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile session %q: %w", sessionID, err)
	}

	return snap, nil
}

// SubmitInputValue applies the input team's edit for one field. Returns
// false when nothing was persisted (equal value). When the field was
// approved, the approval is reset and the output invalidated in the same
// transaction; when all fields are present the valuation is recomputed.
func (s *Service) SubmitInputValue(ctx context.Context, sessionID string, teamID int, field string, newValue float64) (bool, error) {
	if !models.IsInputField(field) {
		return false, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if !(newValue > 0) || math.IsInf(newValue, 0) {
		return false, ErrNonPositiveValue
	}

	applied := false
	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		existing, err := s.Repo.FindInputTx(ctx, tx, sessionID, teamID, field)
		if err != nil {
			return err
		}
		if existing != nil && existing.Value == newValue {
			return nil
		}

		output, err := s.Repo.FindOutputTx(ctx, tx, sessionID, teamID)
		if err != nil {
			return err
		}
		if output == nil {
			output = &models.Output{
				SessionID:   sessionID,
				InputTeamID: teamID,
				GeneratedAt: db.NowUTC(),
			}
			if err := s.Repo.CreateOutputTx(ctx, tx, output); err != nil {
				return err
			}
		}

		approval, err := s.Repo.FindApprovalTx(ctx, tx, sessionID, teamID, field)
		if err != nil {
			return err
		}
		wasApproved := approval != nil && approval.IsApproved

		item := models.Input{
			SessionID: sessionID,
			TeamID:    teamID,
			FieldName: field,
			Value:     newValue,
			OutputID:  output.ID,
		}
		if err := s.Repo.UpsertInputTx(ctx, tx, &item); err != nil {
			return err
		}

		if wasApproved {
			reset := models.Approval{
				SessionID:  sessionID,
				TeamID:     teamID,
				FieldName:  field,
				IsApproved: false,
			}
			if err := s.Repo.UpsertApprovalTx(ctx, tx, &reset); err != nil {
				return err
			}
		}

		inputs, err := s.Repo.ListInputsTx(ctx, tx, sessionID, teamID)
		if err != nil {
			return err
		}
		if len(missingFieldSet(inputFields(inputs))) == 0 {
			valuation := Valuation(inputValues(inputs))
			recomputed := models.Output{
				SessionID:   sessionID,
				InputTeamID: teamID,
				Valuation:   valuation,
				IsApproved:  false,
				GeneratedAt: db.NowUTC(),
			}
			if err := s.Repo.UpsertOutputTx(ctx, tx, &recomputed); err != nil {
				return err
			}
		}

		if err := s.audit(ctx, tx, sessionID, teamID, "input_update", map[string]any{
			"field":        field,
			"value":        newValue,
			"was_approved": wasApproved,
		}); err != nil {
			return err
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("submit %s: %w", field, err)
	}

	if applied && s.Logger != nil {
		s.Logger.Info("input updated",
			zap.String("session", sessionID),
			zap.String("field", field),
			zap.Float64("value", newValue),
		)
	}
	return applied, nil
}

// SetApproval records the reviewing team's verdict for one field and
// re-derives the output's aggregate approval in the same transaction.
// Returns false when the approval already had the requested status.
func (s *Service) SetApproval(ctx context.Context, sessionID string, teamID int, field string, approved bool) (bool, error) {
	if !models.IsInputField(field) {
		return false, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	changed := false
	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		existing, err := s.Repo.FindApprovalTx(ctx, tx, sessionID, teamID, field)
		if err != nil {
			return err
		}
		if existing != nil && existing.IsApproved == approved {
			return nil
		}

		item := models.Approval{
			SessionID:  sessionID,
			TeamID:     teamID,
			FieldName:  field,
			IsApproved: approved,
		}
		if err := s.Repo.UpsertApprovalTx(ctx, tx, &item); err != nil {
			return err
		}

		approvals, err := s.Repo.ListApprovalsTx(ctx, tx, sessionID, teamID)
		if err != nil {
			return err
		}
		allApproved := aggregateApproved(approvals)

		if err := s.Repo.SetOutputApprovedTx(ctx, tx, sessionID, teamID, allApproved); err != nil {
			return err
		}

		if err := s.audit(ctx, tx, sessionID, teamID, "approval_set", map[string]any{
			"field":        field,
			"approved":     approved,
			"all_approved": allApproved,
		}); err != nil {
			return err
		}

		changed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("set approval %s: %w", field, err)
	}

	if changed && s.Logger != nil {
		s.Logger.Info("approval updated",
			zap.String("session", sessionID),
			zap.String("field", field),
			zap.Bool("approved", approved),
		)
	}
	return changed, nil
}

func (s *Service) audit(ctx context.Context, tx *gorm.DB, sessionID string, teamID int, action string, details map[string]any) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return err
	}
	return s.Repo.InsertAuditEventTx(ctx, tx, &models.AuditEvent{
		SessionID: sessionID,
		TeamID:    teamID,
		Action:    action,
		Details:   datatypes.JSON(payload),
	})
}

func approvalFields(items []models.Approval) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, a := range items {
		set[a.FieldName] = true
	}
	return set
}

func inputFields(items []models.Input) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, in := range items {
		set[in.FieldName] = true
	}
	return set
}

func inputValues(items []models.Input) map[string]float64 {
	values := make(map[string]float64, len(items))
	for _, in := range items {
		values[in.FieldName] = in.Value
	}
	return values
}

// missingFieldSet returns tracked fields absent from present, in the
// canonical field order.
func missingFieldSet(present map[string]bool) []string {
	var missing []string
	for _, field := range models.InputFields {
		if !present[field] {
			missing = append(missing, field)
		}
	}
	return missing
}

// aggregateApproved is the aggregate rule: every tracked field must have
// an approval row and every row must be approved.
func aggregateApproved(approvals []models.Approval) bool {
	present := approvalFields(approvals)
	if len(missingFieldSet(present)) > 0 {
		return false
	}
	for _, a := range approvals {
		if !a.IsApproved {
			return false
		}
	}
	return true
}
