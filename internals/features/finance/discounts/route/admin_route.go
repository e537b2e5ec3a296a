package router

import (
	discountController "schoolku_backend/internals/features/finance/discounts/controller"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func DiscountAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := &discountController.DiscountHandler{DB: db}
	discounts := r.Group("/discounts")
	discounts.Post("/", ctl.Create)              // POST /api/a/discounts
	discounts.Post("/:id/deactivate", ctl.Deactivate) // POST /api/a/discounts/:id/deactivate
	discounts.Get("/student/:id", ctl.ListByStudent) // GET /api/a/discounts/student/:id
}
