package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	discountRoute "schoolku_backend/internals/features/finance/discounts/route"
	ledgerRoute "schoolku_backend/internals/features/finance/ledger/route"
	paymentRoute "schoolku_backend/internals/features/finance/payments/route"
	tariffRoute "schoolku_backend/internals/features/finance/tariffs/route"
	studentRoute "schoolku_backend/internals/features/school/students/route"
	authMiddleware "schoolku_backend/internals/middlewares/auth"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// ===================== ADMIN =====================
	log.Println("[INFO] Setting up ADMIN group...")
	admin := app.Group("/api/a",
		authMiddleware.AdminJWT(authMiddleware.AdminJWTOpts{
			Secret:              os.Getenv("JWT_SECRET"),
			AllowCookieFallback: true,
		}),
	)

	// ===================== MOUNT ROUTES =====================
	log.Println("[INFO] Mounting Ledger routes...")
	ledgerRoute.LedgerAdminRoutes(admin, db) // before student CRUD: /students/debts vs /students/:id

	log.Println("[INFO] Mounting Student routes...")
	studentRoute.StudentAdminRoutes(admin, db)

	log.Println("[INFO] Mounting Tariff routes...")
	tariffRoute.TariffAdminRoutes(admin, db)

	log.Println("[INFO] Mounting Discount routes...")
	discountRoute.DiscountAdminRoutes(admin, db)

	log.Println("[INFO] Mounting Payment routes...")
	paymentRoute.PaymentAdminRoutes(admin, db)
}
