package session

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"dealroom/internal/db"
	"dealroom/internal/models"
	gormrepository "dealroom/internal/repository/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
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
	return &Service{Repo: gormrepository.New(gdb)}, gdb
}

func countRows(t *testing.T, gdb *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := gdb.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestEnsureSessionMaterializesEmptySession(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()

	snap, err := svc.EnsureSession(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	if got, want := len(snap.Inputs), len(models.InputFields); got != want {
		t.Fatalf("inputs = %d, want %d", got, want)
	}
	if got, want := len(snap.Approvals), len(models.InputFields); got != want {
		t.Fatalf("approvals = %d, want %d", got, want)
	}
	if len(snap.Outputs) != 1 {
		t.Fatalf("outputs = %d, want 1", len(snap.Outputs))
	}
	for _, in := range snap.Inputs {
		if in.Value != placeholderValue {
			t.Errorf("%s value = %v, want placeholder %d", in.FieldName, in.Value, placeholderValue)
		}
		if in.OutputID != snap.OutputID {
			t.Errorf("%s output_id = %d, want %d", in.FieldName, in.OutputID, snap.OutputID)
		}
	}
	for _, a := range snap.Approvals {
		if a.IsApproved {
			t.Errorf("%s materialized approved", a.FieldName)
		}
	}
	out := snap.Outputs[0]
	if out.Valuation != 0 || out.IsApproved {
		t.Fatalf("fresh output = {valuation %v, approved %v}, want {0, false}", out.Valuation, out.IsApproved)
	}
	if snap.AllApproved {
		t.Fatal("fresh session reported all approved")
	}
	if n := countRows(t, gdb, &models.Input{}); n != int64(len(models.InputFields)) {
		t.Fatalf("input rows = %d", n)
	}
}

func TestEnsureSessionIsIdempotent(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()

	first, err := svc.EnsureSession(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("first EnsureSession: %v", err)
	}
	second, err := svc.EnsureSession(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("second EnsureSession: %v", err)
	}

	if n := countRows(t, gdb, &models.Input{}); n != int64(len(models.InputFields)) {
		t.Fatalf("input rows grew to %d", n)
	}
	if n := countRows(t, gdb, &models.Approval{}); n != int64(len(models.InputFields)) {
		t.Fatalf("approval rows grew to %d", n)
	}
	if n := countRows(t, gdb, &models.Output{}); n != 1 {
		t.Fatalf("output rows grew to %d", n)
	}

	if first.OutputID != second.OutputID {
		t.Fatalf("output id changed: %d -> %d", first.OutputID, second.OutputID)
	}
	for i := range first.Inputs {
		a, b := first.Inputs[i], second.Inputs[i]
		if a.ID != b.ID || a.FieldName != b.FieldName || a.Value != b.Value {
			t.Fatalf("input %d changed: %+v -> %+v", i, a, b)
		}
	}
	for i := range first.Approvals {
		a, b := first.Approvals[i], second.Approvals[i]
		if a.ID != b.ID || a.IsApproved != b.IsApproved {
			t.Fatalf("approval %d changed: %+v -> %+v", i, a, b)
		}
	}
}

func TestEnsureSessionScopesByTeam(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()

	if _, err := svc.EnsureSession(ctx, "s1", 1); err != nil {
		t.Fatalf("team 1: %v", err)
	}
	if _, err := svc.EnsureSession(ctx, "s1", 2); err != nil {
		t.Fatalf("team 2: %v", err)
	}

	if n := countRows(t, gdb, &models.Input{}); n != int64(2*len(models.InputFields)) {
		t.Fatalf("input rows = %d, want per-team sets", n)
	}
	if n := countRows(t, gdb, &models.Output{}); n != 2 {
		t.Fatalf("output rows = %d, want one per team", n)
	}
}

func TestSubmitInputValueRecomputesValuation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.EnsureSession(ctx, "s1", 1); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	for field, value := range map[string]float64{
		"EBITDA":        10,
		"Interest Rate": 5,
		"Multiple":      3,
		"Factor Score":  2,
	} {
		applied, err := svc.SubmitInputValue(ctx, "s1", 1, field, value)
		if err != nil {
			t.Fatalf("submit %s: %v", field, err)
		}
		if !applied {
			t.Fatalf("submit %s reported no-op", field)
		}
	}

	snap, err := svc.EnsureSession(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if got := snap.Outputs[0].Valuation; got != 60 {
		t.Fatalf("valuation = %v, want 60 (10 * 3 * 2)", got)
	}
	if snap.Outputs[0].IsApproved {
		t.Fatal("recomputed output still approved")
	}
}

func TestSubmitInputValueEqualValueIsNoOp(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()

	if _, err := svc.EnsureSession(ctx, "s1", 1); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if _, err := svc.SubmitInputValue(ctx, "s1", 1, "EBITDA", 10); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	audits := countRows(t, gdb, &models.AuditEvent{})

	applied, err := svc.SubmitInputValue(ctx, "s1", 1, "EBITDA", 10)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if applied {
		t.Fatal("equal value reported as applied")
	}
	if n := countRows(t, gdb, &models.AuditEvent{}); n != audits {
		t.Fatalf("no-op wrote an audit event (%d -> %d)", audits, n)
	}
}

func TestSubmitInputValueResetsApproval(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.EnsureSession(ctx, "s1", 1); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if _, err := svc.SubmitInputValue(ctx, "s1", 1, "EBITDA", 10); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.SetApproval(ctx, "s1", 1, "EBITDA", true); err != nil {
		t.Fatalf("approve: %v", err)
	}

	applied, err := svc.SubmitInputValue(ctx, "s1", 1, "EBITDA", 12)
	if err != nil {
		t.Fatalf("edit after approval: %v", err)
	}
	if !applied {
		t.Fatal("edit after approval reported no-op")
	}

	snap, err := svc.EnsureSession(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if snap.FieldApproved("EBITDA") {
		t.Fatal("approval survived an edit")
	}
	if snap.Outputs[0].IsApproved {
		t.Fatal("output stayed approved after an edit")
	}
	if got, ok := snap.InputValue("EBITDA"); !ok || got != 12 {
		t.Fatalf("EBITDA = %v, want 12", got)
	}
}

func TestSetApprovalPromotesAndDemotesOutput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.EnsureSession(ctx, "s1", 1); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	for _, field := range models.InputFields {
		changed, err := svc.SetApproval(ctx, "s1", 1, field, true)
		if err != nil {
			t.Fatalf("approve %s: %v", field, err)
		}
		if !changed {
			t.Fatalf("approve %s reported no-op", field)
		}
	}

	snap, err := svc.EnsureSession(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if !snap.AllApproved || !snap.Outputs[0].IsApproved {
		t.Fatalf("all fields approved but snapshot = {all %v, output %v}",
			snap.AllApproved, snap.Outputs[0].IsApproved)
	}
	if !snap.Finalized() {
		t.Fatal("Finalized() = false after full approval")
	}

	// One rejection demotes the aggregate.
	if _, err := svc.SetApproval(ctx, "s1", 1, "Multiple", false); err != nil {
		t.Fatalf("reject: %v", err)
	}
	snap, err = svc.EnsureSession(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if snap.AllApproved || snap.Outputs[0].IsApproved {
		t.Fatalf("rejection left snapshot = {all %v, output %v}",
			snap.AllApproved, snap.Outputs[0].IsApproved)
	}
}

func TestSetApprovalUnchangedIsNoOp(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.EnsureSession(ctx, "s1", 1); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	changed, err := svc.SetApproval(ctx, "s1", 1, "EBITDA", false)
	if err != nil {
		t.Fatalf("SetApproval: %v", err)
	}
	if changed {
		t.Fatal("setting an approval to its current status reported a change")
	}
}

func TestSubmitInputValueValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SubmitInputValue(ctx, "s1", 1, "Revenue", 10); err == nil {
		t.Fatal("unknown field accepted")
	}
	for _, v := range []float64{0, -3} {
		if _, err := svc.SubmitInputValue(ctx, "s1", 1, "EBITDA", v); err == nil {
			t.Fatalf("value %v accepted", v)
		}
	}
}

func TestValuation(t *testing.T) {
	got := Valuation(map[string]float64{
		"EBITDA":        10,
		"Interest Rate": 5,
		"Multiple":      3,
		"Factor Score":  2,
	})
	if got != 60 {
		t.Fatalf("Valuation = %v, want 60", got)
	}
}
