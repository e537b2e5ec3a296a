package database

import (
	"log"

	"gorm.io/gorm"

	discountModel "schoolku_backend/internals/features/finance/discounts/model"
	ledgerModel "schoolku_backend/internals/features/finance/ledger/model"
	paymentModel "schoolku_backend/internals/features/finance/payments/model"
	tariffModel "schoolku_backend/internals/features/finance/tariffs/model"
	studentModel "schoolku_backend/internals/features/school/students/model"
)

// AllModels is the migration order: referenced tables first.
func AllModels() []any {
	return []any{
		&studentModel.Student{},
		&studentModel.StudentEnrollment{},
		&tariffModel.TariffVersion{},
		&tariffModel.TariffAuditLog{},
		&discountModel.StudentDiscount{},
		&paymentModel.PaymentTransaction{},
		&paymentModel.PaymentCoverage{},
		&ledgerModel.MonthlyObligation{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

// rawIndexes holds statements AutoMigrate cannot express. The partial unique
// index keeps the tariff table at a single ACTIVE row no matter who writes.
var rawIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_tariff_version_active
		ON tariff_versions (tariff_version_status)
		WHERE tariff_version_status = 'active'`,
}

func RunMigrations() {
	if err := AutoMigrate(DB); err != nil {
		log.Fatalf("[ERROR] migration failed: %v", err)
	}
	for _, stmt := range rawIndexes {
		if err := DB.Exec(stmt).Error; err != nil {
			log.Fatalf("[ERROR] migration failed: %v", err)
		}
	}
	log.Println("[INFO] migrations applied.")
}
