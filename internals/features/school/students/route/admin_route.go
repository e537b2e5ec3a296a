package router

import (
	studentController "schoolku_backend/internals/features/school/students/controller"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func StudentAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := &studentController.StudentHandler{DB: db}
	students := r.Group("/students")
	students.Post("/", ctl.Create)    // POST /api/a/students
	students.Get("/", ctl.List)       // GET  /api/a/students
	students.Get("/:id", ctl.Detail)  // GET  /api/a/students/:id
}
