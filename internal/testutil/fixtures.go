package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"budgetbot/internal/models"
	"budgetbot/internal/money"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestCategory creates a non-rent category with a unique name and the
// given monthly budget.
func CreateTestCategory(t *testing.T, db *gorm.DB, monthlyBudget string) *models.Category {
	t.Helper()
	return CreateTestCategoryWithName(t, db, fmt.Sprintf("Test Category %d", nextID()), monthlyBudget, false)
}

// CreateTestRentCategory creates the rent category.
func CreateTestRentCategory(t *testing.T, db *gorm.DB, monthlyBudget string) *models.Category {
	t.Helper()
	return CreateTestCategoryWithName(t, db, "Rent", monthlyBudget, true)
}

// CreateTestCategoryWithName creates a category with explicit fields.
func CreateTestCategoryWithName(t *testing.T, db *gorm.DB, name, monthlyBudget string, isRent bool) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:          name,
		MonthlyBudget: money.MustParse(monthlyBudget),
		IsRent:        isRent,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestCycle inserts a bare cycle row without running allocation.
func CreateTestCycle(t *testing.T, db *gorm.DB, startDate time.Time, ordinal int) *models.Cycle {
	t.Helper()

	cycle := &models.Cycle{
		StartDate: startDate,
		PayAmount: money.MustParse("2000"),
		Year:      startDate.Year(),
		Month:     int(startDate.Month()),
		Ordinal:   ordinal,
	}
	if err := db.Create(cycle).Error; err != nil {
		t.Fatalf("failed to create test cycle: %v", err)
	}
	return cycle
}

// CreateTestEnvelope inserts an envelope with the given initial and current balances.
func CreateTestEnvelope(t *testing.T, db *gorm.DB, cycleID, categoryID, initial, current string) *models.Envelope {
	t.Helper()

	envelope := &models.Envelope{
		CycleID:    cycleID,
		CategoryID: categoryID,
		Initial:    money.MustParse(initial),
		Current:    money.MustParse(current),
	}
	if err := db.Create(envelope).Error; err != nil {
		t.Fatalf("failed to create test envelope: %v", err)
	}
	return envelope
}

// SetCashflowBalance overwrites the cashflow balance.
func SetCashflowBalance(t *testing.T, db *gorm.DB, balance string) {
	t.Helper()

	if err := db.Model(&models.Cashflow{}).
		Where("id = ?", models.CashflowID).
		Update("balance", money.MustParse(balance)).Error; err != nil {
		t.Fatalf("failed to set cashflow balance: %v", err)
	}
}

// GetEnvelope reloads an envelope from the database.
func GetEnvelope(t *testing.T, db *gorm.DB, cycleID, categoryID string) *models.Envelope {
	t.Helper()

	var envelope models.Envelope
	if err := db.Where("cycle_id = ? AND category_id = ?", cycleID, categoryID).First(&envelope).Error; err != nil {
		t.Fatalf("failed to load envelope (%s, %s): %v", cycleID, categoryID, err)
	}
	return &envelope
}

// GetCashflowBalance reloads the cashflow balance.
func GetCashflowBalance(t *testing.T, db *gorm.DB) money.Money {
	t.Helper()

	var cashflow models.Cashflow
	if err := db.First(&cashflow, models.CashflowID).Error; err != nil {
		t.Fatalf("failed to load cashflow: %v", err)
	}
	return cashflow.Balance
}

// CountRows returns the number of rows of model matching the optional condition.
func CountRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return count
}
