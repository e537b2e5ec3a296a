package service

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	ledgersvc "schoolku_backend/internals/features/finance/ledger/service"
	"schoolku_backend/internals/features/finance/payments/model"
	tariffsvc "schoolku_backend/internals/features/finance/tariffs/service"
	helper "schoolku_backend/internals/helpers"
)

type CommitInput struct {
	Plan           PaymentPlan
	IdempotencyKey *string
	Note           *string
	Actor          uuid.UUID
}

// CommitPayment turns a computed plan into transaction + coverage rows in one
// storage transaction. Race safety rests on the coverage table's unique
// (student, year, month) index plus a post-insert count check: a racing
// commit targeting any of the same months aborts the whole write with
// ErrCoverageConflict and no partial mutation. A repeated idempotency key
// fails with ErrDuplicateRequest before any coverage is written. On success
// the synchronizer runs for the student so the ledger reflects the payment
// immediately.
func CommitPayment(db *gorm.DB, in CommitInput) (model.PaymentTransaction, error) {
	var txn model.PaymentTransaction
	plan := in.Plan

	coverages := make([]model.PaymentCoverage, 0, len(plan.Months))
	for _, pm := range plan.Months {
		if pm.Skipped || pm.AllocatedAmount <= 0 {
			continue
		}
		coverages = append(coverages, model.PaymentCoverage{
			PaymentCoverageStudentID: plan.StudentID,
			PaymentCoverageYear:      pm.Year,
			PaymentCoverageMonth:     pm.Month,
			PaymentCoverageMonthKey:  pm.Key,
			PaymentCoverageAmount:    pm.AllocatedAmount,
		})
	}
	if len(coverages) == 0 {
		return txn, ErrNothingToPay
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		txn = model.PaymentTransaction{
			PaymentTransactionStudentID:      plan.StudentID,
			PaymentTransactionKind:           plan.Kind,
			PaymentTransactionAmount:         plan.ExpectedAmount,
			PaymentTransactionStatus:         model.PaymentTransactionStatusActive,
			PaymentTransactionIdempotencyKey: in.IdempotencyKey,
			PaymentTransactionTariffSnapshot: encodeTariffSnapshot(plan.Tariff),
			PaymentTransactionNote:           in.Note,
			PaymentTransactionCreatedBy:      in.Actor,
		}
		if err := tx.Create(&txn).Error; err != nil {
			// the idempotency key carries the table's only unique constraint
			if helper.IsUniqueViolation(err) {
				return ErrDuplicateRequest
			}
			return err
		}

		for i := range coverages {
			coverages[i].PaymentCoverageTransactionID = txn.PaymentTransactionID
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&coverages)
		if res.Error != nil {
			if helper.IsUniqueViolation(res.Error) {
				return ErrCoverageConflict
			}
			return res.Error
		}
		// optimistic-concurrency check: a shortfall means a concurrent
		// transaction covered one of the same months first
		if res.RowsAffected != int64(len(coverages)) {
			return ErrCoverageConflict
		}
		return nil
	})
	if err != nil {
		return txn, err
	}

	if err := resyncStudent(db, plan.StudentID); err != nil {
		return txn, err
	}
	return txn, nil
}

// RevertTransaction deletes the transaction's coverage rows (hard delete,
// freeing those months) and flips the status to reversed, atomically; the
// follow-up sync restores the affected months to set/partially_paid.
func RevertTransaction(db *gorm.DB, transactionID uuid.UUID) (model.PaymentTransaction, error) {
	var txn model.PaymentTransaction

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&txn, "payment_transaction_id = ?", transactionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}
		if txn.PaymentTransactionStatus == model.PaymentTransactionStatusReversed {
			return ErrTransactionReversed
		}

		if err := tx.
			Where("payment_coverage_transaction_id = ?", transactionID).
			Delete(&model.PaymentCoverage{}).Error; err != nil {
			return err
		}

		now := time.Now()
		txn.PaymentTransactionStatus = model.PaymentTransactionStatusReversed
		txn.PaymentTransactionReversedAt = &now
		return tx.Model(&model.PaymentTransaction{}).
			Where("payment_transaction_id = ?", transactionID).
			Updates(map[string]any{
				"payment_transaction_status":      model.PaymentTransactionStatusReversed,
				"payment_transaction_reversed_at": now,
			}).Error
	})
	if err != nil {
		return txn, err
	}

	if err := resyncStudent(db, txn.PaymentTransactionStudentID); err != nil {
		return txn, err
	}
	return txn, nil
}

func resyncStudent(db *gorm.DB, studentID uuid.UUID) error {
	settings, err := tariffsvc.ResolveCurrent(db)
	if err != nil {
		return err
	}
	_, err = ledgersvc.SyncObligations(db, ledgersvc.SyncInput{
		StudentIDs:          []uuid.UUID{studentID},
		MonthlyAmount:       settings.MonthlyAmount,
		FutureMonthsHorizon: maxFutureMonths,
		ChargeableMonths:    settings.ChargeableMonths,
	})
	return err
}

func encodeTariffSnapshot(s tariffsvc.TariffSettings) datatypes.JSON {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
