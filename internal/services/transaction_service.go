package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "budgetbot/internal/errors"
	"budgetbot/internal/events"
	"budgetbot/internal/models"
	"budgetbot/internal/pagination"
)

// transactionService applies transactions to envelopes and the cashflow
// balance and reverses them on deletion.
type transactionService struct {
	db        *gorm.DB
	publisher events.Publisher
	clock     *clock
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, publisher events.Publisher) TransactionServicer {
	return &transactionService{
		db:        db,
		publisher: publisher,
		clock:     newClock(time.Now),
	}
}

// clock hands out strictly increasing timestamps at microsecond resolution,
// the precision PostgreSQL keeps.
type clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func newClock(now func() time.Time) *clock {
	return &clock{now: now}
}

func (c *clock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

// ApplyTransaction records a transaction and applies its effect on envelopes
// and the cashflow balance in one database transaction.
func (s *transactionService) ApplyTransaction(in TransactionInput) (*models.Transaction, error) {
	kind := in.Kind
	if kind == "" {
		kind = models.TransactionKindExpense
	}
	if !kind.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransactionKind, fmt.Sprintf("unsupported transaction kind %q", kind))
	}
	if !in.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.CycleID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "cycle ID is required")
	}
	if kind == models.TransactionKindExpense && (in.CategoryID == nil || *in.CategoryID == "") {
		return nil, apperrors.ErrCategoryRequired
	}

	record := &models.Transaction{
		CycleID:     in.CycleID,
		Kind:        kind,
		Amount:      in.Amount,
		Description: in.Description,
	}
	var pending []events.Event

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cycle models.Cycle
		if err := tx.Where("id = ?", in.CycleID).First(&cycle).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCycleNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		cashflow, err := lockCashflow(tx)
		if err != nil {
			return err
		}

		switch kind {
		case models.TransactionKindExpense, models.TransactionKindRentExpense:
			categoryID, err := s.debitCategory(tx, kind, in.CategoryID)
			if err != nil {
				return err
			}
			record.CategoryID = &categoryID

			envelope, err := lockEnvelope(tx, cycle.ID, categoryID)
			if err != nil {
				return err
			}

			wasOverspent := envelope.Overspent()
			envelope.Current = envelope.Current.Sub(in.Amount)
			cashflow.Balance = cashflow.Balance.Sub(in.Amount)

			if err := s.createRecord(tx, record); err != nil {
				return err
			}
			if err := saveEnvelope(tx, envelope); err != nil {
				return err
			}
			if !wasOverspent && envelope.Overspent() {
				alert, err := recordOverspendAlert(tx, envelope, record)
				if err != nil {
					return err
				}
				pending = append(pending, events.New(events.TypeEnvelopeOverspent, cycle.ID, events.EnvelopeOverspent{
					CycleID:       cycle.ID,
					CategoryID:    categoryID,
					TransactionID: record.ID,
					Overspent:     alert.Amount,
				}))
			}

		case models.TransactionKindPaycheck:
			cashflow.Balance = cashflow.Balance.Add(in.Amount)
			if err := s.resetEnvelopes(tx, cycle.ID, cashflow); err != nil {
				return err
			}
			if err := s.createRecord(tx, record); err != nil {
				return err
			}

		case models.TransactionKindATM:
			cashflow.Balance = cashflow.Balance.Add(in.Amount)
			if err := s.createRecord(tx, record); err != nil {
				return err
			}
		}

		return saveCashflow(tx, cashflow)
	})
	if err != nil {
		return nil, err
	}

	pending = append([]events.Event{transactionEvent(events.TypeTransactionApplied, record)}, pending...)
	events.Notify(context.Background(), s.publisher, pending...)
	return record, nil
}

// debitCategory resolves the category a debit applies to. Rent expenses
// always go to the single rent category.
func (s *transactionService) debitCategory(tx *gorm.DB, kind models.TransactionKind, requested *string) (string, error) {
	if kind == models.TransactionKindExpense {
		return *requested, nil
	}

	var rent []models.Category
	if err := tx.Where("is_rent = ?", true).Limit(2).Find(&rent).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	switch len(rent) {
	case 0:
		return "", apperrors.ErrNoRentCategory
	case 1:
	default:
		return "", apperrors.ErrMultipleRentCategories
	}
	if requested != nil && *requested != "" && *requested != rent[0].ID {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "category is not the rent category")
	}
	return rent[0].ID, nil
}

// resetEnvelopes sweeps each non-rent envelope of the cycle into the cashflow
// and refills it with half its monthly budget. Rent envelopes are topped up
// by half their monthly budget instead.
func (s *transactionService) resetEnvelopes(tx *gorm.DB, cycleID string, cashflow *models.Cashflow) error {
	var envelopes []models.Envelope
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Category").
		Where("cycle_id = ?", cycleID).
		Find(&envelopes).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range envelopes {
		env := &envelopes[i]
		if env.Category == nil {
			continue
		}
		half := env.Category.HalfBudget()
		if env.Category.IsRent {
			env.Current = env.Current.Add(half)
		} else {
			cashflow.Balance = cashflow.Balance.Add(env.Current)
			env.Current = half
		}
		if err := saveEnvelope(tx, env); err != nil {
			return err
		}
	}
	return nil
}

func (s *transactionService) createRecord(tx *gorm.DB, record *models.Transaction) error {
	record.Timestamp = s.clock.Next()
	if err := tx.Create(record).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func lockEnvelope(tx *gorm.DB, cycleID, categoryID string) (*models.Envelope, error) {
	var envelope models.Envelope
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cycle_id = ? AND category_id = ?", cycleID, categoryID).
		First(&envelope).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEnvelopeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &envelope, nil
}

func saveEnvelope(tx *gorm.DB, envelope *models.Envelope) error {
	err := tx.Model(&models.Envelope{}).
		Where("cycle_id = ? AND category_id = ?", envelope.CycleID, envelope.CategoryID).
		Updates(map[string]interface{}{
			"current":    envelope.Current,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func recordOverspendAlert(tx *gorm.DB, envelope *models.Envelope, record *models.Transaction) (*models.Alert, error) {
	overspent := envelope.Current.Abs()
	alert := &models.Alert{
		CycleID:       envelope.CycleID,
		CategoryID:    envelope.CategoryID,
		TransactionID: record.ID,
		Kind:          models.AlertKindOverspent,
		Amount:        overspent,
		Message:       fmt.Sprintf("Envelope overspent by %s", overspent),
	}
	if err := tx.Create(alert).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return alert, nil
}

func transactionEvent(t events.Type, record *models.Transaction) events.Event {
	return events.New(t, record.CycleID, events.TransactionChanged{
		TransactionID: record.ID,
		CycleID:       record.CycleID,
		CategoryID:    record.CategoryID,
		Kind:          string(record.Kind),
		Amount:        record.Amount,
	})
}

// GetTransactions retrieves a paginated, filtered list of transactions, newest first.
func (s *transactionService) GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := applyTransactionFilters(s.db.Model(&models.Transaction{}), filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := applyTransactionFilters(s.db, filter).
		Scopes(pagination.Paginate(page)).
		Order("timestamp DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.CycleID != nil {
		q = q.Where("cycle_id = ?", *f.CycleID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Kind != nil {
		q = q.Where("kind = ?", *f.Kind)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID.
func (s *transactionService) GetTransactionByID(transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ?", transactionID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// ReverseTransaction undoes the direct balance changes of a transaction and
// deletes it. Envelope resets done by a paycheck are not undone.
func (s *transactionService) ReverseTransaction(transactionID string) error {
	var record models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", transactionID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		cashflow, err := lockCashflow(tx)
		if err != nil {
			return err
		}

		switch {
		case record.Kind.DebitsEnvelope():
			cashflow.Balance = cashflow.Balance.Add(record.Amount)
			if record.CategoryID != nil {
				envelope, err := lockEnvelope(tx, record.CycleID, *record.CategoryID)
				switch {
				case errors.Is(err, apperrors.ErrEnvelopeNotFound):
					// Envelope is gone; only the record is removed.
				case err != nil:
					return err
				default:
					envelope.Current = envelope.Current.Add(record.Amount)
					if err := saveEnvelope(tx, envelope); err != nil {
						return err
					}
				}
			}
		default:
			cashflow.Balance = cashflow.Balance.Sub(record.Amount)
		}

		if err := tx.Where("transaction_id = ?", record.ID).Delete(&models.Alert{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&record).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return saveCashflow(tx, cashflow)
	})
	if err != nil {
		return err
	}

	events.Notify(context.Background(), s.publisher, transactionEvent(events.TypeTransactionReversed, &record))
	return nil
}
