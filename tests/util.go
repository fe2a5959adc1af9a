package testutil

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/dropwatch/core"
	"github.com/trezcool/dropwatch/core/student"
)

// NewValidator returns a validator with the app's custom validators registered.
func NewValidator() *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())
	return validate
}

// CreateStudent stores a Student with the given metrics straight into repo.
func CreateStudent(
	t *testing.T,
	repo student.Repository,
	id, name string,
	attendance, avgGrade, behavioralScore int,
	createdAt ...time.Time,
) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	s := student.Student{
		ID:           id,
		Name:         name,
		Email:        "student@college.edu",
		Phone:        "+91-9876543210",
		LastActivity: student.ActivityCreated,
		CreatedAt:    tstamp,
		UpdatedAt:    tstamp,
	}
	s.SetMetrics(attendance, avgGrade, behavioralScore)
	s, err := repo.CreateStudent(s)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}
