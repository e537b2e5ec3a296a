package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/school/students/model"
)

var ErrStudentNotFound = errors.New("student not found")

// ActiveEnrollmentStartDate resolves when billing starts for a student: the
// start date of the active enrollment, falling back to the account creation
// date when the student was registered without an explicit enrollment row.
func ActiveEnrollmentStartDate(db *gorm.DB, studentID uuid.UUID) (time.Time, error) {
	var st model.Student
	if err := db.First(&st, "student_id = ?", studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, ErrStudentNotFound
		}
		return time.Time{}, err
	}

	var enr model.StudentEnrollment
	err := db.
		Where("student_enrollment_student_id = ? AND student_enrollment_status = ?",
			studentID, model.StudentEnrollmentStatusActive).
		Order("student_enrollment_start_date DESC").
		First(&enr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return st.StudentCreatedAt, nil
		}
		return time.Time{}, err
	}
	return enr.StudentEnrollmentStartDate, nil
}
