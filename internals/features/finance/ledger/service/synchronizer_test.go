package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"schoolku_backend/internals/databases/testdb"
	discountmodel "schoolku_backend/internals/features/finance/discounts/model"
	discountsvc "schoolku_backend/internals/features/finance/discounts/service"
	"schoolku_backend/internals/features/finance/ledger/model"
	paymodel "schoolku_backend/internals/features/finance/payments/model"
	studentmodel "schoolku_backend/internals/features/school/students/model"
	helper "schoolku_backend/internals/helpers"
)

var (
	syncNow      = time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	allMonths    = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	syncEnrolled = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
)

func seedStudent(t *testing.T, db *gorm.DB, enrolledAt time.Time) uuid.UUID {
	t.Helper()
	st := studentmodel.Student{StudentName: "Budi"}
	require.NoError(t, db.Create(&st).Error)
	require.NoError(t, db.Create(&studentmodel.StudentEnrollment{
		StudentEnrollmentStudentID: st.StudentID,
		StudentEnrollmentStartDate: enrolledAt,
		StudentEnrollmentStatus:    studentmodel.StudentEnrollmentStatusActive,
	}).Error)
	return st.StudentID
}

func seedPaidMonth(t *testing.T, db *gorm.DB, studentID uuid.UUID, year, month, amount int) uuid.UUID {
	t.Helper()
	txn := paymodel.PaymentTransaction{
		PaymentTransactionStudentID: studentID,
		PaymentTransactionKind:      paymodel.PaymentTransactionKindMonthly,
		PaymentTransactionAmount:    amount,
		PaymentTransactionStatus:    paymodel.PaymentTransactionStatusActive,
	}
	require.NoError(t, db.Create(&txn).Error)
	require.NoError(t, db.Create(&paymodel.PaymentCoverage{
		PaymentCoverageTransactionID: txn.PaymentTransactionID,
		PaymentCoverageStudentID:     studentID,
		PaymentCoverageYear:          year,
		PaymentCoverageMonth:         month,
		PaymentCoverageMonthKey:      helper.FormatMonthKey(year, month),
		PaymentCoverageAmount:        amount,
	}).Error)
	return txn.PaymentTransactionID
}

func loadObligations(t *testing.T, db *gorm.DB, studentID uuid.UUID) []model.MonthlyObligation {
	t.Helper()
	var rows []model.MonthlyObligation
	require.NoError(t, db.
		Where("monthly_obligation_student_id = ?", studentID).
		Order("monthly_obligation_month_key ASC").
		Find(&rows).Error)
	return rows
}

func TestSyncObligationsMaterializesEnrollmentRange(t *testing.T) {
	db := testdb.Open(t)
	studentID := seedStudent(t, db, syncEnrolled)

	res, err := SyncObligations(db, SyncInput{
		StudentIDs:       []uuid.UUID{studentID},
		MonthlyAmount:    300000,
		ChargeableMonths: allMonths,
		Now:              syncNow,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.SyncedStudents)
	assert.Equal(t, 3, res.UpsertedRows)
	assert.False(t, res.Degraded)

	rows := loadObligations(t, db, studentID)
	require.Len(t, rows, 3)
	assert.Equal(t, "2026-01", rows[0].MonthlyObligationMonthKey)
	assert.Equal(t, "2026-03", rows[2].MonthlyObligationMonthKey)
	for _, r := range rows {
		assert.Equal(t, 300000, r.MonthlyObligationNetAmount)
		assert.Equal(t, 300000, r.MonthlyObligationRemainingAmount)
		assert.Equal(t, model.MonthlyObligationStatusSet, r.MonthlyObligationStatus)
		assert.Equal(t, model.MonthlyObligationSourceBase, r.MonthlyObligationSource)
	}
}

func TestSyncObligationsIsIdempotent(t *testing.T) {
	db := testdb.Open(t)
	studentID := seedStudent(t, db, syncEnrolled)

	in := SyncInput{
		StudentIDs:       []uuid.UUID{studentID},
		MonthlyAmount:    300000,
		ChargeableMonths: allMonths,
		Now:              syncNow,
	}
	_, err := SyncObligations(db, in)
	require.NoError(t, err)
	_, err = SyncObligations(db, in)
	require.NoError(t, err)

	rows := loadObligations(t, db, studentID)
	assert.Len(t, rows, 3, "re-sync upserts, never duplicates")
}

func TestSyncObligationsAppliesCoverage(t *testing.T) {
	db := testdb.Open(t)
	studentID := seedStudent(t, db, syncEnrolled)
	seedPaidMonth(t, db, studentID, 2026, 1, 300000)

	_, err := SyncObligations(db, SyncInput{
		StudentIDs:       []uuid.UUID{studentID},
		MonthlyAmount:    300000,
		ChargeableMonths: allMonths,
		Now:              syncNow,
	})
	require.NoError(t, err)

	rows := loadObligations(t, db, studentID)
	require.Len(t, rows, 3)
	assert.Equal(t, model.MonthlyObligationStatusPaid, rows[0].MonthlyObligationStatus)
	assert.Equal(t, 0, rows[0].MonthlyObligationRemainingAmount)
	assert.Equal(t, model.MonthlyObligationStatusSet, rows[1].MonthlyObligationStatus)
	assert.Equal(t, model.MonthlyObligationStatusSet, rows[2].MonthlyObligationStatus)
}

func TestSyncObligationsIgnoresReversedTransactions(t *testing.T) {
	db := testdb.Open(t)
	studentID := seedStudent(t, db, syncEnrolled)
	txnID := seedPaidMonth(t, db, studentID, 2026, 1, 300000)
	require.NoError(t, db.Model(&paymodel.PaymentTransaction{}).
		Where("payment_transaction_id = ?", txnID).
		Update("payment_transaction_status", paymodel.PaymentTransactionStatusReversed).Error)

	_, err := SyncObligations(db, SyncInput{
		StudentIDs:       []uuid.UUID{studentID},
		MonthlyAmount:    300000,
		ChargeableMonths: allMonths,
		Now:              syncNow,
	})
	require.NoError(t, err)

	rows := loadObligations(t, db, studentID)
	assert.Equal(t, model.MonthlyObligationStatusSet, rows[0].MonthlyObligationStatus)
	assert.Equal(t, 300000, rows[0].MonthlyObligationRemainingAmount)
}

func TestSyncObligationsPartialPayment(t *testing.T) {
	db := testdb.Open(t)
	studentID := seedStudent(t, db, syncEnrolled)
	seedPaidMonth(t, db, studentID, 2026, 1, 100000)

	_, err := SyncObligations(db, SyncInput{
		StudentIDs:       []uuid.UUID{studentID},
		MonthlyAmount:    300000,
		ChargeableMonths: allMonths,
		Now:              syncNow,
	})
	require.NoError(t, err)

	rows := loadObligations(t, db, studentID)
	assert.Equal(t, model.MonthlyObligationStatusPartiallyPaid, rows[0].MonthlyObligationStatus)
	assert.Equal(t, 100000, rows[0].MonthlyObligationPaidAmount)
	assert.Equal(t, 200000, rows[0].MonthlyObligationRemainingAmount)
}

func TestSyncObligationsSkipsNonChargeableMonths(t *testing.T) {
	db := testdb.Open(t)
	studentID := seedStudent(t, db, syncEnrolled)

	_, err := SyncObligations(db, SyncInput{
		StudentIDs:       []uuid.UUID{studentID},
		MonthlyAmount:    300000,
		ChargeableMonths: []int{1, 3},
		Now:              syncNow,
	})
	require.NoError(t, err)

	rows := loadObligations(t, db, studentID)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-01", rows[0].MonthlyObligationMonthKey)
	assert.Equal(t, "2026-03", rows[1].MonthlyObligationMonthKey)
}

func TestSyncObligationsAppliesDiscounts(t *testing.T) {
	db := testdb.Open(t)
	studentID := seedStudent(t, db, syncEnrolled)

	require.NoError(t, db.Create(&discountmodel.StudentDiscount{
		StudentDiscountStudentID:  studentID,
		StudentDiscountKind:       discountmodel.StudentDiscountKindPercent,
		StudentDiscountValue:      20,
		StudentDiscountStartMonth: "2026-02",
		StudentDiscountMonthCount: 2,
		StudentDiscountActive:     true,
		StudentDiscountMonthlySnapshot: discountsvc.EncodeSnapshot([]discountsvc.SnapshotEntry{
			{Key: "2026-02", Amount: 240000},
			{Key: "2026-03", Amount: 240000},
		}),
	}).Error)

	_, err := SyncObligations(db, SyncInput{
		StudentIDs:       []uuid.UUID{studentID},
		MonthlyAmount:    300000,
		ChargeableMonths: allMonths,
		Now:              syncNow,
	})
	require.NoError(t, err)

	rows := loadObligations(t, db, studentID)
	require.Len(t, rows, 3)
	assert.Equal(t, model.MonthlyObligationSourceBase, rows[0].MonthlyObligationSource)
	assert.Equal(t, 240000, rows[1].MonthlyObligationNetAmount)
	assert.Equal(t, 60000, rows[1].MonthlyObligationDiscountAmount)
	assert.Equal(t, model.MonthlyObligationSourceDiscount, rows[1].MonthlyObligationSource)
	assert.Equal(t, 240000, rows[2].MonthlyObligationNetAmount)
}

func TestSyncObligationsFutureHorizon(t *testing.T) {
	db := testdb.Open(t)
	studentID := seedStudent(t, db, syncEnrolled)

	_, err := SyncObligations(db, SyncInput{
		StudentIDs:          []uuid.UUID{studentID},
		MonthlyAmount:       300000,
		FutureMonthsHorizon: 3,
		ChargeableMonths:    allMonths,
		Now:                 syncNow,
	})
	require.NoError(t, err)

	rows := loadObligations(t, db, studentID)
	require.Len(t, rows, 6)
	assert.Equal(t, "2026-06", rows[5].MonthlyObligationMonthKey)
}

func TestSyncObligationsNoopInputs(t *testing.T) {
	db := testdb.Open(t)

	res, err := SyncObligations(db, SyncInput{MonthlyAmount: 300000})
	require.NoError(t, err)
	assert.Zero(t, res.SyncedStudents)

	res, err = SyncObligations(db, SyncInput{StudentIDs: []uuid.UUID{uuid.New()}})
	require.NoError(t, err)
	assert.Zero(t, res.SyncedStudents)
}
