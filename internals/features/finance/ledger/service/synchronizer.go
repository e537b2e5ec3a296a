package service

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	discountsvc "schoolku_backend/internals/features/finance/discounts/service"
	"schoolku_backend/internals/features/finance/ledger/model"
	paymodel "schoolku_backend/internals/features/finance/payments/model"
	studentsvc "schoolku_backend/internals/features/school/students/service"
	helper "schoolku_backend/internals/helpers"
)

// Obligation synchronizer: the one write path for monthly_obligations. It
// (re)materializes one ledger row per (student, year, month) from enrollment
// start through the horizon, applying tariff + discounts + coverage. It is
// idempotent and invoked lazily by every caller that needs a fresh ledger; it
// never touches payment_coverages or payment_transactions.

const syncChunkSize = 100

type SyncInput struct {
	StudentIDs          []uuid.UUID
	MonthlyAmount       int
	FutureMonthsHorizon int
	ChargeableMonths    []int
	Now                 time.Time // zero → time.Now()
}

type SyncResult struct {
	SyncedStudents int
	UpsertedRows   int
	// Degraded is set when an optional column is missing in the target
	// schema (mid-migration environment); the sync then runs a reduced
	// read path instead of failing the request.
	Degraded bool
}

func SyncObligations(db *gorm.DB, in SyncInput) (SyncResult, error) {
	var res SyncResult
	if len(in.StudentIDs) == 0 || in.MonthlyAmount <= 0 {
		return res, nil
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	chargeable := map[int]bool{}
	for _, m := range in.ChargeableMonths {
		chargeable[m] = true
	}

	// chunked to bound transaction size
	for start := 0; start < len(in.StudentIDs); start += syncChunkSize {
		end := start + syncChunkSize
		if end > len(in.StudentIDs) {
			end = len(in.StudentIDs)
		}
		chunk := in.StudentIDs[start:end]

		err := db.Transaction(func(tx *gorm.DB) error {
			for _, studentID := range chunk {
				n, degraded, err := syncOne(tx, studentID, in.MonthlyAmount, in.FutureMonthsHorizon, chargeable, now)
				if err != nil {
					return err
				}
				res.SyncedStudents++
				res.UpsertedRows += n
				res.Degraded = res.Degraded || degraded
			}
			return nil
		})
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func syncOne(tx *gorm.DB, studentID uuid.UUID, monthlyAmount, horizon int, chargeable map[int]bool, now time.Time) (int, bool, error) {
	degraded := false

	enrolledAt, err := studentsvc.ActiveEnrollmentStartDate(tx, studentID)
	if err != nil {
		return 0, false, err
	}

	discounts, err := discountsvc.LoadStudentDiscounts(tx, studentID)
	if err != nil {
		if !helper.IsUndefinedColumn(err) {
			return 0, false, err
		}
		degraded = true
		discounts = nil
	}
	discountMap := discountsvc.BuildDiscountMonthMap(discounts, monthlyAmount, now)

	covered, err := loadCoverageSums(tx, studentID)
	if err != nil {
		if !helper.IsUndefinedColumn(err) {
			return 0, false, err
		}
		degraded = true
		covered = map[string]int{}
	}

	startIdx := helper.MonthIndex(enrolledAt.Year(), int(enrolledAt.Month()))
	endIdx := helper.MonthIndex(now.Year(), int(now.Month())) + horizon

	rows := make([]model.MonthlyObligation, 0, endIdx-startIdx+1)
	for idx := startIdx; idx <= endIdx; idx++ {
		year, month := helper.MonthFromIndex(idx)
		if len(chargeable) > 0 && !chargeable[month] {
			continue
		}
		key := helper.FormatMonthKey(year, month)

		net := monthlyAmount
		source := model.MonthlyObligationSourceBase
		if v, ok := discountMap[key]; ok {
			net = v
			source = model.MonthlyObligationSourceDiscount
		}
		discountAmount := monthlyAmount - net
		if discountAmount < 0 {
			discountAmount = 0
		}

		paid := covered[key]
		remaining := net - paid
		if remaining < 0 {
			remaining = 0
		}

		status := model.MonthlyObligationStatusSet
		switch {
		case net <= 0 || paid >= net:
			status = model.MonthlyObligationStatusPaid
		case paid > 0:
			status = model.MonthlyObligationStatusPartiallyPaid
		}

		rows = append(rows, model.MonthlyObligation{
			MonthlyObligationStudentID:       studentID,
			MonthlyObligationYear:            year,
			MonthlyObligationMonth:           month,
			MonthlyObligationMonthKey:        key,
			MonthlyObligationBaseAmount:      monthlyAmount,
			MonthlyObligationDiscountAmount:  discountAmount,
			MonthlyObligationNetAmount:       net,
			MonthlyObligationPaidAmount:      paid,
			MonthlyObligationRemainingAmount: remaining,
			MonthlyObligationStatus:          status,
			MonthlyObligationSource:          source,
		})
	}
	if len(rows) == 0 {
		return 0, degraded, nil
	}

	err = tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "monthly_obligation_student_id"},
			{Name: "monthly_obligation_year"},
			{Name: "monthly_obligation_month"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"monthly_obligation_month_key",
			"monthly_obligation_base_amount",
			"monthly_obligation_discount_amount",
			"monthly_obligation_net_amount",
			"monthly_obligation_paid_amount",
			"monthly_obligation_remaining_amount",
			"monthly_obligation_status",
			"monthly_obligation_source",
			"monthly_obligation_updated_at",
		}),
	}).Create(&rows).Error
	if err != nil {
		return 0, degraded, err
	}
	return len(rows), degraded, nil
}

// loadCoverageSums aggregates how much of each month is already paid by
// ACTIVE transactions. A month can be partially covered across transactions.
func loadCoverageSums(tx *gorm.DB, studentID uuid.UUID) (map[string]int, error) {
	type row struct {
		MonthKey string
		Total    int
	}
	var sums []row
	err := tx.Model(&paymodel.PaymentCoverage{}).
		Select("payment_coverage_month_key AS month_key, SUM(payment_coverage_amount) AS total").
		Joins("JOIN payment_transactions ON payment_transaction_id = payment_coverage_transaction_id").
		Where("payment_coverage_student_id = ? AND payment_transaction_status = ?",
			studentID, paymodel.PaymentTransactionStatusActive).
		Group("payment_coverage_month_key").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(sums))
	for _, r := range sums {
		out[r.MonthKey] = r.Total
	}
	return out, nil
}
