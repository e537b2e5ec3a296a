package router

import (
	ledgerController "schoolku_backend/internals/features/finance/ledger/controller"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Mounted BEFORE the student CRUD routes so /students/debts is matched
// ahead of /students/:id.
func LedgerAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := &ledgerController.LedgerHandler{DB: db}
	students := r.Group("/students")
	students.Get("/debts", ctl.ListDebts)         // GET /api/a/students/debts
	students.Get("/:id/ledger", ctl.StudentLedger) // GET /api/a/students/:id/ledger
}
