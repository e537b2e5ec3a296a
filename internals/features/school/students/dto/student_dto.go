package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/school/students/model"
)

////////////////////////////////////////////////////////////////////////////////
// STUDENTS — DTO
////////////////////////////////////////////////////////////////////////////////

type StudentCreateDTO struct {
	StudentName      string     `json:"student_name" validate:"required,min=2,max=120"`
	StudentClassroom *string    `json:"student_classroom,omitempty" validate:"omitempty,max=60"`
	EnrollmentStart  *time.Time `json:"enrollment_start,omitempty"` // nil → enrolled today
}

type StudentResponse struct {
	StudentID        uuid.UUID  `json:"student_id"`
	StudentName      string     `json:"student_name"`
	StudentClassroom *string    `json:"student_classroom,omitempty"`
	EnrollmentStart  *time.Time `json:"enrollment_start,omitempty"`
	StudentCreatedAt time.Time  `json:"student_created_at"`
}

func ToStudentResponse(m model.Student, enr *model.StudentEnrollment) StudentResponse {
	resp := StudentResponse{
		StudentID:        m.StudentID,
		StudentName:      m.StudentName,
		StudentClassroom: m.StudentClassroom,
		StudentCreatedAt: m.StudentCreatedAt,
	}
	if enr != nil {
		resp.EnrollmentStart = &enr.StudentEnrollmentStartDate
	}
	return resp
}
