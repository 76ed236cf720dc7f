package testutil_test

import (
	"testing"

	"budgetbot/internal/errors"
	"budgetbot/internal/models"
	"budgetbot/internal/money"
	"budgetbot/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"categories", "cycles", "envelopes", "transactions", "cashflow", "alerts", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}

	testutil.AssertMoney(t, "cashflow", testutil.GetCashflowBalance(t, db), "0.00")
}

func TestSetupTestDBIsolated(t *testing.T) {
	db1 := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db1)
	db2 := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db2)

	testutil.CreateTestCategory(t, db1, "100")

	if n := testutil.CountRows(t, db2, &models.Category{}, ""); n != 0 {
		t.Errorf("expected second database to be empty, got %d categories", n)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	category := testutil.CreateTestCategory(t, db, "200")
	if category.ID == "" {
		t.Fatal("category should have an ID")
	}
	rent := testutil.CreateTestRentCategory(t, db, "1800")
	if !rent.IsRent {
		t.Error("rent fixture should be flagged as rent")
	}

	cycle := testutil.CreateTestCycle(t, db, testutil.Date(2024, 3, 1), 1)
	if cycle.Year != 2024 || cycle.Month != 3 {
		t.Errorf("expected 2024-03, got %d-%02d", cycle.Year, cycle.Month)
	}

	testutil.CreateTestEnvelope(t, db, cycle.ID, category.ID, "100", "-30")
	env := testutil.GetEnvelope(t, db, cycle.ID, category.ID)
	testutil.AssertMoney(t, "initial", env.Initial, "100.00")
	testutil.AssertMoney(t, "current", env.Current, "-30.00")
	if !env.Overspent() {
		t.Error("envelope should be overspent")
	}

	testutil.SetCashflowBalance(t, db, "12.34")
	testutil.AssertMoney(t, "cashflow", testutil.GetCashflowBalance(t, db), "12.34")
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrCycleNotFound, "custom message")
	testutil.AssertAppError(t, err, "CYCLE_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}

func TestAssertMoney(t *testing.T) {
	testutil.AssertMoney(t, "amount", money.FromCents(1050), "10.50")
}
