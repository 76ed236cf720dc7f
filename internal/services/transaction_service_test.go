package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"budgetbot/internal/events"
	"budgetbot/internal/models"
	"budgetbot/internal/money"
	"budgetbot/internal/pagination"
	"budgetbot/internal/testutil"
)

// budgetFixture is a cycle allocated over a groceries and a rent category.
type budgetFixture struct {
	db        *gorm.DB
	svc       TransactionServicer
	events    *events.Recorder
	cycle     *models.Cycle
	groceries *models.Category
	rent      *models.Category
}

func setupBudget(t *testing.T) *budgetFixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	groceries := testutil.CreateTestCategoryWithName(t, db, "Groceries", "200.00", false)
	rent := testutil.CreateTestRentCategory(t, db, "1800.00")
	cycle, err := NewCycleService(db, nil).CreateCycle(testutil.Date(2024, 3, 1), money.MustParse("2500"))
	testutil.AssertNoError(t, err)

	rec := events.NewRecorder(nil)
	return &budgetFixture{
		db:        db,
		svc:       NewTransactionService(db, rec),
		events:    rec,
		cycle:     cycle,
		groceries: groceries,
		rent:      rent,
	}
}

func (f *budgetFixture) apply(t *testing.T, kind models.TransactionKind, categoryID *string, amount string) *models.Transaction {
	t.Helper()
	tx, err := f.svc.ApplyTransaction(TransactionInput{
		CycleID:    f.cycle.ID,
		CategoryID: categoryID,
		Kind:       kind,
		Amount:     money.MustParse(amount),
	})
	testutil.AssertNoError(t, err)
	return tx
}

func TestApplyTransaction(t *testing.T) {
	t.Run("expense_debits_envelope_and_cashflow", func(t *testing.T) {
		f := setupBudget(t)

		tx := f.apply(t, "", &f.groceries.ID, "30.00")

		if tx.Kind != models.TransactionKindExpense {
			t.Errorf("expected default kind expense, got %s", tx.Kind)
		}
		if tx.Timestamp.IsZero() {
			t.Error("expected timestamp to be set")
		}
		testutil.AssertMoney(t, "envelope", testutil.GetEnvelope(t, f.db, f.cycle.ID, f.groceries.ID).Current, "70.00")
		testutil.AssertMoney(t, "cashflow", testutil.GetCashflowBalance(t, f.db), "-30.00")
		if types := f.events.Types(); len(types) != 1 || types[0] != events.TypeTransactionApplied {
			t.Errorf("expected one transaction.applied event, got %v", types)
		}
	})

	t.Run("overspend_is_allowed_and_alerts_once", func(t *testing.T) {
		f := setupBudget(t)

		first := f.apply(t, models.TransactionKindExpense, &f.groceries.ID, "130.00")
		f.apply(t, models.TransactionKindExpense, &f.groceries.ID, "5.00")

		testutil.AssertMoney(t, "envelope", testutil.GetEnvelope(t, f.db, f.cycle.ID, f.groceries.ID).Current, "-35.00")

		var alerts []models.Alert
		testutil.AssertNoError(t, f.db.Find(&alerts).Error)
		if len(alerts) != 1 {
			t.Fatalf("expected 1 alert, got %d", len(alerts))
		}
		if alerts[0].TransactionID != first.ID || alerts[0].Kind != models.AlertKindOverspent {
			t.Errorf("unexpected alert %+v", alerts[0])
		}
		testutil.AssertMoney(t, "alert", alerts[0].Amount, "30.00")

		want := []events.Type{events.TypeTransactionApplied, events.TypeEnvelopeOverspent, events.TypeTransactionApplied}
		got := f.events.Types()
		if len(got) != len(want) {
			t.Fatalf("expected events %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("event %d: expected %s, got %s", i, want[i], got[i])
			}
		}
	})

	t.Run("rent_expense_uses_rent_category", func(t *testing.T) {
		f := setupBudget(t)

		tx := f.apply(t, models.TransactionKindRentExpense, nil, "850.00")

		if tx.CategoryID == nil || *tx.CategoryID != f.rent.ID {
			t.Error("expected rent category to be recorded")
		}
		testutil.AssertMoney(t, "rent", testutil.GetEnvelope(t, f.db, f.cycle.ID, f.rent.ID).Current, "50.00")
		testutil.AssertMoney(t, "cashflow", testutil.GetCashflowBalance(t, f.db), "-850.00")
	})

	t.Run("rent_expense_with_other_category", func(t *testing.T) {
		f := setupBudget(t)

		_, err := f.svc.ApplyTransaction(TransactionInput{
			CycleID:    f.cycle.ID,
			CategoryID: &f.groceries.ID,
			Kind:       models.TransactionKindRentExpense,
			Amount:     money.MustParse("10"),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rent_expense_without_rent_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		cycle := testutil.CreateTestCycle(t, db, testutil.Date(2024, 3, 1), 1)
		svc := NewTransactionService(db, nil)

		_, err := svc.ApplyTransaction(TransactionInput{CycleID: cycle.ID, Kind: models.TransactionKindRentExpense, Amount: money.MustParse("10")})
		testutil.AssertAppError(t, err, "NO_RENT_CATEGORY")
	})

	t.Run("rent_expense_with_two_rent_categories", func(t *testing.T) {
		f := setupBudget(t)
		testutil.CreateTestCategoryWithName(t, f.db, "Flat", "1000", true)

		_, err := f.svc.ApplyTransaction(TransactionInput{CycleID: f.cycle.ID, Kind: models.TransactionKindRentExpense, Amount: money.MustParse("10")})
		testutil.AssertAppError(t, err, "MULTIPLE_RENT_CATEGORIES")
	})

	t.Run("paycheck_sweeps_and_resets", func(t *testing.T) {
		f := setupBudget(t)
		f.apply(t, models.TransactionKindExpense, &f.groceries.ID, "40.00")
		f.apply(t, models.TransactionKindRentExpense, nil, "900.00")
		// cashflow -940, groceries 60, rent 0

		tx := f.apply(t, models.TransactionKindPaycheck, &f.groceries.ID, "2000.00")

		if tx.CategoryID != nil {
			t.Error("paycheck should not record a category")
		}
		testutil.AssertMoney(t, "groceries", testutil.GetEnvelope(t, f.db, f.cycle.ID, f.groceries.ID).Current, "100.00")
		testutil.AssertMoney(t, "rent", testutil.GetEnvelope(t, f.db, f.cycle.ID, f.rent.ID).Current, "900.00")
		// -940 + 2000 + 60 swept from groceries
		testutil.AssertMoney(t, "cashflow", testutil.GetCashflowBalance(t, f.db), "1120.00")
	})

	t.Run("atm_credits_cashflow_only", func(t *testing.T) {
		f := setupBudget(t)

		f.apply(t, models.TransactionKindATM, nil, "60.00")

		testutil.AssertMoney(t, "cashflow", testutil.GetCashflowBalance(t, f.db), "60.00")
		testutil.AssertMoney(t, "groceries", testutil.GetEnvelope(t, f.db, f.cycle.ID, f.groceries.ID).Current, "100.00")
	})

	t.Run("expense_requires_category", func(t *testing.T) {
		f := setupBudget(t)

		_, err := f.svc.ApplyTransaction(TransactionInput{CycleID: f.cycle.ID, Amount: money.MustParse("10")})
		testutil.AssertAppError(t, err, "CATEGORY_REQUIRED")
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		f := setupBudget(t)

		for _, amount := range []string{"0", "-5.00"} {
			_, err := f.svc.ApplyTransaction(TransactionInput{CycleID: f.cycle.ID, CategoryID: &f.groceries.ID, Amount: money.MustParse(amount)})
			testutil.AssertAppError(t, err, "INVALID_INPUT")
		}
	})

	t.Run("unknown_kind", func(t *testing.T) {
		f := setupBudget(t)

		_, err := f.svc.ApplyTransaction(TransactionInput{CycleID: f.cycle.ID, Kind: "refund", Amount: money.MustParse("10")})
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_KIND")
	})

	t.Run("missing_cycle", func(t *testing.T) {
		f := setupBudget(t)

		_, err := f.svc.ApplyTransaction(TransactionInput{
			CycleID:    "00000000-0000-0000-0000-000000000000",
			CategoryID: &f.groceries.ID,
			Amount:     money.MustParse("10"),
		})
		testutil.AssertAppError(t, err, "CYCLE_NOT_FOUND")
	})

	t.Run("missing_envelope_writes_nothing", func(t *testing.T) {
		f := setupBudget(t)
		late := testutil.CreateTestCategory(t, f.db, "50")

		_, err := f.svc.ApplyTransaction(TransactionInput{CycleID: f.cycle.ID, CategoryID: &late.ID, Amount: money.MustParse("10")})
		testutil.AssertAppError(t, err, "ENVELOPE_NOT_FOUND")

		if n := testutil.CountRows(t, f.db, &models.Transaction{}, ""); n != 0 {
			t.Errorf("expected no transactions, got %d", n)
		}
		testutil.AssertMoney(t, "cashflow", testutil.GetCashflowBalance(t, f.db), "0.00")
		if len(f.events.Events()) != 0 {
			t.Error("expected no events for a failed transaction")
		}
	})

	t.Run("missing_cashflow", func(t *testing.T) {
		f := setupBudget(t)
		testutil.AssertNoError(t, f.db.Delete(&models.Cashflow{ID: models.CashflowID}).Error)

		_, err := f.svc.ApplyTransaction(TransactionInput{CycleID: f.cycle.ID, Kind: models.TransactionKindATM, Amount: money.MustParse("10")})
		testutil.AssertAppError(t, err, "CASHFLOW_NOT_INITIALIZED")
	})

	t.Run("publish_failure_is_not_surfaced", func(t *testing.T) {
		f := setupBudget(t)
		svc := NewTransactionService(f.db, events.NewRecorder(errors.New("broker down")))

		_, err := svc.ApplyTransaction(TransactionInput{CycleID: f.cycle.ID, CategoryID: &f.groceries.ID, Amount: money.MustParse("10")})
		testutil.AssertNoError(t, err)
	})

	t.Run("timestamps_strictly_increase", func(t *testing.T) {
		f := setupBudget(t)

		var last time.Time
		for i := 0; i < 5; i++ {
			tx := f.apply(t, models.TransactionKindATM, nil, "1.00")
			if !tx.Timestamp.After(last) {
				t.Fatalf("timestamp %v not after %v", tx.Timestamp, last)
			}
			last = tx.Timestamp
		}
	})
}

func TestClock(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newClock(func() time.Time { return fixed })

	first := c.Next()
	second := c.Next()

	if !first.Equal(fixed) {
		t.Errorf("expected %v, got %v", fixed, first)
	}
	if second.Sub(first) != time.Microsecond {
		t.Errorf("expected second tick one microsecond later, got %v", second.Sub(first))
	}
}

func TestReverseTransaction(t *testing.T) {
	t.Run("reverse_of_apply_restores_envelope", func(t *testing.T) {
		for _, amount := range []string{"30.00", "130.00", "0.01"} {
			f := setupBudget(t)
			before := testutil.GetEnvelope(t, f.db, f.cycle.ID, f.groceries.ID).Current

			tx := f.apply(t, models.TransactionKindExpense, &f.groceries.ID, amount)
			testutil.AssertNoError(t, f.svc.ReverseTransaction(tx.ID))

			testutil.AssertMoney(t, "envelope after "+amount, testutil.GetEnvelope(t, f.db, f.cycle.ID, f.groceries.ID).Current, before.String())
			testutil.AssertMoney(t, "cashflow after "+amount, testutil.GetCashflowBalance(t, f.db), "0.00")
		}
	})

	t.Run("removes_record_and_alert", func(t *testing.T) {
		f := setupBudget(t)
		tx := f.apply(t, models.TransactionKindExpense, &f.groceries.ID, "150.00")

		testutil.AssertNoError(t, f.svc.ReverseTransaction(tx.ID))

		if n := testutil.CountRows(t, f.db, &models.Transaction{}, ""); n != 0 {
			t.Errorf("expected no transactions, got %d", n)
		}
		if n := testutil.CountRows(t, f.db, &models.Alert{}, ""); n != 0 {
			t.Errorf("expected no alerts, got %d", n)
		}
		types := f.events.Types()
		if types[len(types)-1] != events.TypeTransactionReversed {
			t.Errorf("expected last event transaction.reversed, got %s", types[len(types)-1])
		}
	})

	t.Run("missing_envelope_is_noop", func(t *testing.T) {
		f := setupBudget(t)
		tx := f.apply(t, models.TransactionKindExpense, &f.groceries.ID, "20.00")
		testutil.AssertNoError(t, f.db.Where("cycle_id = ?", f.cycle.ID).Delete(&models.Envelope{}).Error)

		testutil.AssertNoError(t, f.svc.ReverseTransaction(tx.ID))

		if n := testutil.CountRows(t, f.db, &models.Transaction{}, ""); n != 0 {
			t.Errorf("expected transaction to be removed, got %d", n)
		}
		testutil.AssertMoney(t, "cashflow", testutil.GetCashflowBalance(t, f.db), "0.00")
	})

	t.Run("paycheck_only_reverses_cash_credit", func(t *testing.T) {
		f := setupBudget(t)
		f.apply(t, models.TransactionKindExpense, &f.groceries.ID, "40.00")
		paycheck := f.apply(t, models.TransactionKindPaycheck, nil, "1000.00")

		testutil.AssertNoError(t, f.svc.ReverseTransaction(paycheck.ID))

		// Envelope resets stay: groceries back at 100, rent topped up to 1800.
		testutil.AssertMoney(t, "groceries", testutil.GetEnvelope(t, f.db, f.cycle.ID, f.groceries.ID).Current, "100.00")
		testutil.AssertMoney(t, "rent", testutil.GetEnvelope(t, f.db, f.cycle.ID, f.rent.ID).Current, "1800.00")
		// -40 + 1000 + 60 - 1000
		testutil.AssertMoney(t, "cashflow", testutil.GetCashflowBalance(t, f.db), "20.00")
	})

	t.Run("atm", func(t *testing.T) {
		f := setupBudget(t)
		tx := f.apply(t, models.TransactionKindATM, nil, "25.00")

		testutil.AssertNoError(t, f.svc.ReverseTransaction(tx.ID))

		testutil.AssertMoney(t, "cashflow", testutil.GetCashflowBalance(t, f.db), "0.00")
	})

	t.Run("not_found", func(t *testing.T) {
		f := setupBudget(t)

		err := f.svc.ReverseTransaction("00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestGetTransactions(t *testing.T) {
	f := setupBudget(t)
	f.apply(t, models.TransactionKindExpense, &f.groceries.ID, "10.00")
	f.apply(t, models.TransactionKindExpense, &f.groceries.ID, "20.00")
	f.apply(t, models.TransactionKindRentExpense, nil, "30.00")
	last := f.apply(t, models.TransactionKindATM, nil, "40.00")

	t.Run("newest_first", func(t *testing.T) {
		result, err := f.svc.GetTransactions(pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 4 {
			t.Errorf("expected 4 items, got %d", result.TotalItems)
		}
		if result.Data[0].ID != last.ID {
			t.Errorf("expected newest transaction first")
		}
	})

	t.Run("filter_by_category", func(t *testing.T) {
		result, err := f.svc.GetTransactions(pagination.PageRequest{}, TransactionFilter{CategoryID: &f.groceries.ID})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 2 {
			t.Errorf("expected 2 items, got %d", result.TotalItems)
		}
	})

	t.Run("filter_by_kind", func(t *testing.T) {
		kind := models.TransactionKindRentExpense
		result, err := f.svc.GetTransactions(pagination.PageRequest{}, TransactionFilter{Kind: &kind})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Errorf("expected 1 item, got %d", result.TotalItems)
		}
	})

	t.Run("filter_by_cycle", func(t *testing.T) {
		other := "00000000-0000-0000-0000-000000000000"
		result, err := f.svc.GetTransactions(pagination.PageRequest{}, TransactionFilter{CycleID: &other})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 0 || len(result.Data) != 0 {
			t.Errorf("expected no items, got %d", result.TotalItems)
		}
	})

	t.Run("paginates", func(t *testing.T) {
		result, err := f.svc.GetTransactions(pagination.PageRequest{Page: 2, PageSize: 3}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 1 || result.TotalPages != 2 {
			t.Errorf("expected 1 item on page 2 of 2, got %d items, %d pages", len(result.Data), result.TotalPages)
		}
	})
}

func TestGetTransactionByID(t *testing.T) {
	f := setupBudget(t)
	created := f.apply(t, models.TransactionKindExpense, &f.groceries.ID, "12.34")

	t.Run("found", func(t *testing.T) {
		tx, err := f.svc.GetTransactionByID(created.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertMoney(t, "amount", tx.Amount, "12.34")
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := f.svc.GetTransactionByID("00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}
