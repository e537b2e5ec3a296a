package router

import (
	tariffController "schoolku_backend/internals/features/finance/tariffs/controller"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func TariffAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := &tariffController.TariffHandler{DB: db}
	tariffs := r.Group("/tariffs")
	tariffs.Get("/current", ctl.GetCurrent)   // GET  /api/a/tariffs/current
	tariffs.Post("/versions", ctl.CreateVersion) // POST /api/a/tariffs/versions
	tariffs.Post("/rollback", ctl.Rollback)   // POST /api/a/tariffs/rollback
	tariffs.Get("/audit-logs", ctl.ListAuditLogs) // GET  /api/a/tariffs/audit-logs
}
