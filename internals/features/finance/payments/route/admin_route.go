package router

import (
	paymentController "schoolku_backend/internals/features/finance/payments/controller"
	"schoolku_backend/internals/middlewares"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func PaymentAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := &paymentController.PaymentHandler{DB: db}
	payments := r.Group("/payments", middlewares.PaymentRateLimiter())
	payments.Post("/preview", ctl.Preview)       // POST /api/a/payments/preview
	payments.Post("/", ctl.Create)               // POST /api/a/payments
	payments.Post("/:id/revert", ctl.Revert)     // POST /api/a/payments/:id/revert
	payments.Get("/student/:id", ctl.ListByStudent) // GET /api/a/payments/student/:id
}
