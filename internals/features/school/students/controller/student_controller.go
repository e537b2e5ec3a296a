package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/school/students/dto"
	"schoolku_backend/internals/features/school/students/model"
	helper "schoolku_backend/internals/helpers"
)

type StudentHandler struct {
	DB *gorm.DB
}

// -----------------------------------------
// Create (POST /students)
// -----------------------------------------
func (h *StudentHandler) Create(c *fiber.Ctx) error {
	var in dto.StudentCreateDTO
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if ferrs := helper.ValidateStruct(in); ferrs != nil {
		return helper.JsonValidationError(c, ferrs)
	}

	st := model.Student{
		StudentName:      strings.TrimSpace(in.StudentName),
		StudentClassroom: in.StudentClassroom,
	}
	var enr model.StudentEnrollment

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&st).Error; err != nil {
			return err
		}
		start := st.StudentCreatedAt
		if in.EnrollmentStart != nil {
			start = *in.EnrollmentStart
		}
		enr = model.StudentEnrollment{
			StudentEnrollmentStudentID: st.StudentID,
			StudentEnrollmentStartDate: start,
			StudentEnrollmentStatus:    model.StudentEnrollmentStatusActive,
		}
		return tx.Create(&enr).Error
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonCreated(c, "created", dto.ToStudentResponse(st, &enr))
}

// -----------------------------------------
// List (GET /students)
// Query: classroom, search, page, per_page, sort_by (name|created_at)
// -----------------------------------------
func (h *StudentHandler) List(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)

	q := h.DB.Model(&model.Student{})
	if v := strings.TrimSpace(c.Query("classroom")); v != "" {
		q = q.Where("student_classroom = ?", v)
	}
	if v := strings.TrimSpace(c.Query("search")); v != "" {
		q = q.Where("LOWER(student_name) LIKE ?", "%"+strings.ToLower(v)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	allowed := map[string]string{
		"name":       "student_name",
		"created_at": "student_created_at",
	}
	order, err := p.SafeOrderClause(allowed, "created_at")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid sort")
	}

	var list []model.Student
	if err := q.
		Order(strings.TrimPrefix(order, "ORDER BY ")).
		Limit(p.Limit()).
		Offset(p.Offset()).
		Find(&list).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.StudentResponse, 0, len(list))
	for _, st := range list {
		resp = append(resp, dto.ToStudentResponse(st, nil))
	}
	return helper.JsonList(c, "", resp, helper.BuildMeta(total, p))
}

// -----------------------------------------
// Detail (GET /students/:id)
// -----------------------------------------
func (h *StudentHandler) Detail(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	var st model.Student
	if err := h.DB.First(&st, "student_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "student not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var enr model.StudentEnrollment
	var enrPtr *model.StudentEnrollment
	err = h.DB.
		Where("student_enrollment_student_id = ? AND student_enrollment_status = ?",
			id, model.StudentEnrollmentStatusActive).
		Order("student_enrollment_start_date DESC").
		First(&enr).Error
	if err == nil {
		enrPtr = &enr
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "", dto.ToStudentResponse(st, enrPtr))
}
