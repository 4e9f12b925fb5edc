package cli

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"dealroom/internal/console"
	"dealroom/internal/db"
	"dealroom/internal/models"
	gormrepository "dealroom/internal/repository/gorm"
	"dealroom/internal/session"
)

func newTestFlows(t *testing.T) *financeFlows {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Every pooled connection to :memory: is its own database; pin the
	// pool so concurrent reads see the same one.
	sqldb, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := &session.Service{Repo: gormrepository.New(gdb)}
	flows := newFinanceFlows(svc, "s1", 1)
	flows.selectOption = func(label string, options []string) (int, error) {
		t.Fatal("unexpected select prompt")
		return 0, nil
	}
	flows.readValue = func(label string) (float64, error) {
		t.Fatal("unexpected value prompt")
		return 0, nil
	}
	flows.confirm = func(label string) (bool, error) {
		t.Fatal("unexpected confirm prompt")
		return false, nil
	}
	return flows
}

func fieldIndex(t *testing.T, field string) int {
	t.Helper()
	for i, f := range models.InputFields {
		if f == field {
			return i
		}
	}
	t.Fatalf("unknown field %q", field)
	return -1
}

func TestEditInputDeclinedConfirmKeepsApprovedValue(t *testing.T) {
	flows := newTestFlows(t)
	ctx := context.Background()

	if _, err := flows.svc.EnsureSession(ctx, "s1", 1); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if _, err := flows.svc.SubmitInputValue(ctx, "s1", 1, "EBITDA", 10); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := flows.svc.SetApproval(ctx, "s1", 1, "EBITDA", true); err != nil {
		t.Fatalf("approve: %v", err)
	}

	flows.selectOption = func(label string, options []string) (int, error) {
		return fieldIndex(t, "EBITDA"), nil
	}
	flows.confirm = func(label string) (bool, error) {
		return false, nil
	}
	flows.readValue = func(label string) (float64, error) {
		t.Fatal("value prompted after a declined confirm")
		return 0, nil
	}

	if err := flows.editInput(ctx); err != nil {
		t.Fatalf("editInput: %v", err)
	}

	snap, err := flows.svc.EnsureSession(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if got, _ := snap.InputValue("EBITDA"); got != 10 {
		t.Fatalf("EBITDA = %v after declined confirm, want 10", got)
	}
	if !snap.FieldApproved("EBITDA") {
		t.Fatal("approval reset despite declined confirm")
	}
}

func TestEditInputConfirmedEditResetsApproval(t *testing.T) {
	flows := newTestFlows(t)
	ctx := context.Background()

	if _, err := flows.svc.EnsureSession(ctx, "s1", 1); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if _, err := flows.svc.SubmitInputValue(ctx, "s1", 1, "EBITDA", 10); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := flows.svc.SetApproval(ctx, "s1", 1, "EBITDA", true); err != nil {
		t.Fatalf("approve: %v", err)
	}

	flows.selectOption = func(label string, options []string) (int, error) {
		return fieldIndex(t, "EBITDA"), nil
	}
	flows.confirm = func(label string) (bool, error) {
		return true, nil
	}
	flows.readValue = func(label string) (float64, error) {
		return 12, nil
	}

	if err := flows.editInput(ctx); err != nil {
		t.Fatalf("editInput: %v", err)
	}

	snap, err := flows.svc.EnsureSession(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if got, _ := snap.InputValue("EBITDA"); got != 12 {
		t.Fatalf("EBITDA = %v, want 12", got)
	}
	if snap.FieldApproved("EBITDA") {
		t.Fatal("approval survived a confirmed edit")
	}
}

func TestEditInputUnapprovedFieldSkipsConfirm(t *testing.T) {
	flows := newTestFlows(t)
	ctx := context.Background()

	if _, err := flows.svc.EnsureSession(ctx, "s1", 1); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	flows.selectOption = func(label string, options []string) (int, error) {
		return fieldIndex(t, "Multiple"), nil
	}
	flows.readValue = func(label string) (float64, error) {
		return 3, nil
	}

	if err := flows.editInput(ctx); err != nil {
		t.Fatalf("editInput: %v", err)
	}

	snap, err := flows.svc.EnsureSession(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if got, _ := snap.InputValue("Multiple"); got != 3 {
		t.Fatalf("Multiple = %v, want 3", got)
	}
}

func finalizeSession(t *testing.T, flows *financeFlows, ctx context.Context) {
	t.Helper()
	if _, err := flows.svc.EnsureSession(ctx, "s1", 1); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	for _, field := range models.InputFields {
		if _, err := flows.svc.SetApproval(ctx, "s1", 1, field, true); err != nil {
			t.Fatalf("approve %s: %v", field, err)
		}
	}
}

func TestFinalizedMenuDeclineQuits(t *testing.T) {
	flows := newTestFlows(t)
	ctx := context.Background()
	finalizeSession(t, flows, ctx)

	flows.confirm = func(label string) (bool, error) {
		return false, nil
	}

	if err := flows.editInput(ctx); !errors.Is(err, console.ErrQuit) {
		t.Fatalf("editInput on finalized session = %v, want ErrQuit", err)
	}
	if err := flows.review(ctx); !errors.Is(err, console.ErrQuit) {
		t.Fatalf("review on finalized session = %v, want ErrQuit", err)
	}
}

func TestFinalizedMenuKeepWatching(t *testing.T) {
	flows := newTestFlows(t)
	ctx := context.Background()
	finalizeSession(t, flows, ctx)

	confirms := 0
	flows.confirm = func(label string) (bool, error) {
		confirms++
		return true, nil
	}

	// Keeping the terminal open skips the menu and resumes polling; the
	// confirm is offered again on the next menu open.
	if err := flows.editInput(ctx); err != nil {
		t.Fatalf("editInput: %v", err)
	}
	if err := flows.editInput(ctx); err != nil {
		t.Fatalf("second editInput: %v", err)
	}
	if confirms != 2 {
		t.Fatalf("confirms = %d, want one per menu open", confirms)
	}
}
