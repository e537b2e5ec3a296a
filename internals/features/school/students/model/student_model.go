package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// =========================================================
// MODEL — students
// =========================================================

type Student struct {
	StudentID uuid.UUID `gorm:"column:student_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`

	StudentName      string  `gorm:"column:student_name;type:varchar(120);not null;index:ix_student_name" json:"student_name"`
	StudentClassroom *string `gorm:"column:student_classroom;type:varchar(60);index:ix_student_classroom" json:"student_classroom,omitempty"`

	StudentCreatedAt time.Time      `gorm:"column:student_created_at;not null;default:now()" json:"student_created_at"`
	StudentUpdatedAt time.Time      `gorm:"column:student_updated_at;not null;default:now()" json:"student_updated_at"`
	StudentDeletedAt gorm.DeletedAt `gorm:"column:student_deleted_at;index" json:"-"`
}

func (Student) TableName() string { return "students" }

func (m *Student) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now()
	if m.StudentID == uuid.Nil {
		m.StudentID = uuid.New()
	}
	if m.StudentCreatedAt.IsZero() {
		m.StudentCreatedAt = now
	}
	m.StudentUpdatedAt = now
	return nil
}

func (m *Student) BeforeUpdate(tx *gorm.DB) (err error) {
	m.StudentUpdatedAt = time.Now()
	return nil
}

// =========================================================
// MODEL — student_enrollments (one active per student)
// =========================================================

type StudentEnrollmentStatus string

const (
	StudentEnrollmentStatusActive StudentEnrollmentStatus = "active"
	StudentEnrollmentStatusLeft   StudentEnrollmentStatus = "left"
)

type StudentEnrollment struct {
	StudentEnrollmentID uuid.UUID `gorm:"column:student_enrollment_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"student_enrollment_id"`

	StudentEnrollmentStudentID uuid.UUID               `gorm:"column:student_enrollment_student_id;type:uuid;not null;index:ix_student_enrollment_student" json:"student_enrollment_student_id"`
	StudentEnrollmentStartDate time.Time               `gorm:"column:student_enrollment_start_date;not null" json:"student_enrollment_start_date"`
	StudentEnrollmentStatus    StudentEnrollmentStatus `gorm:"column:student_enrollment_status;type:varchar(20);not null;default:'active';index:ix_student_enrollment_status" json:"student_enrollment_status"`

	StudentEnrollmentCreatedAt time.Time `gorm:"column:student_enrollment_created_at;not null;default:now()" json:"student_enrollment_created_at"`
	StudentEnrollmentUpdatedAt time.Time `gorm:"column:student_enrollment_updated_at;not null;default:now()" json:"student_enrollment_updated_at"`
}

func (StudentEnrollment) TableName() string { return "student_enrollments" }

func (m *StudentEnrollment) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now()
	if m.StudentEnrollmentID == uuid.Nil {
		m.StudentEnrollmentID = uuid.New()
	}
	if m.StudentEnrollmentCreatedAt.IsZero() {
		m.StudentEnrollmentCreatedAt = now
	}
	m.StudentEnrollmentUpdatedAt = now
	return nil
}

func (m *StudentEnrollment) BeforeUpdate(tx *gorm.DB) (err error) {
	m.StudentEnrollmentUpdatedAt = time.Now()
	return nil
}
