package student

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/dropwatch/core"
	"github.com/trezcool/dropwatch/core/risk"
)

// LastActivity markers
const (
	ActivityCreated        = "Just added"
	ActivityMetricsUpdated = "Metrics updated"
)

var NowFunc = time.Now // mockable

// Student is one tracked student. RiskScore and Status are derived from the three metrics
// and are only ever written by SetMetrics / Refresh.
type Student struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Attendance      int        `json:"attendance"`
	AvgGrade        int        `json:"avg_grade"`
	BehavioralScore int        `json:"behavioral_score"`
	RiskScore       float64    `json:"risk_score"`
	Status          risk.Level `json:"status"`
	LastActivity    string     `json:"last_activity"`
	CreatedAt       time.Time  `json:"created_at"` // UTC
	UpdatedAt       time.Time  `json:"updated_at"` // UTC
}

// SetMetrics replaces the three input metrics and recomputes the derived fields.
func (s *Student) SetMetrics(attendance, avgGrade, behavioralScore int) {
	s.Attendance = attendance
	s.AvgGrade = avgGrade
	s.BehavioralScore = behavioralScore
	s.Refresh()
}

// Refresh recomputes RiskScore and Status from the current metrics.
func (s *Student) Refresh() {
	score := risk.Score(s.Attendance, s.AvgGrade, s.BehavioralScore)
	s.RiskScore = score
	s.Status = risk.Categorize(score).Level
}

// IsConsistent reports whether RiskScore and Status match the current metrics.
func (s Student) IsConsistent() bool {
	score := risk.Score(s.Attendance, s.AvgGrade, s.BehavioralScore)
	return s.RiskScore == score && s.Status == risk.Categorize(score).Level
}

func (s Student) NeedsIntervention() bool {
	return risk.NeedsIntervention(s.RiskScore)
}

func (s Student) Color() string {
	return s.Status.Color()
}

// checkRecord reports every field a stored Student may not hold:
// blank contact fields, a malformed email and metrics outside their domains.
func (s Student) checkRecord() error {
	var flds []core.FieldError
	if core.CleanString(s.Name) == "" {
		flds = append(flds, core.FieldError{Field: "name", Error: "name is required"})
	}
	switch email := core.CleanString(s.Email); {
	case email == "":
		flds = append(flds, core.FieldError{Field: "email", Error: "email is required"})
	case !core.IsEmailShaped(email):
		flds = append(flds, core.FieldError{Field: "email", Error: "email is invalid"})
	}
	if core.CleanString(s.Phone) == "" {
		flds = append(flds, core.FieldError{Field: "phone", Error: "phone is required"})
	}
	if s.Attendance < risk.MinAttendance || s.Attendance > risk.MaxAttendance {
		flds = append(flds, core.FieldError{Field: "attendance", Error: "attendance must be between 0-100"})
	}
	if s.AvgGrade < risk.MinGrade || s.AvgGrade > risk.MaxGrade {
		flds = append(flds, core.FieldError{Field: "avg_grade", Error: "avg_grade must be between 0-100"})
	}
	if s.BehavioralScore < risk.MinBehavior || s.BehavioralScore > risk.MaxBehavior {
		flds = append(flds, core.FieldError{Field: "behavioral_score", Error: "behavioral_score must be between 1-10"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// NewStudent contains information needed to create a new Student.
// Metrics arrive as text (eg. from a form) and are parsed after validation.
type NewStudent struct {
	Name            string          `json:"name" validate:"notblank"`
	Email           string          `json:"email" validate:"notblank,emailshape"`
	Phone           string          `json:"phone" validate:"notblank"`
	Attendance      core.FlexString `json:"attendance" validate:"notblank,intrange=0:100"`
	AvgGrade        core.FlexString `json:"avg_grade" validate:"notblank,intrange=0:100"`
	BehavioralScore core.FlexString `json:"behavioral_score" validate:"notblank,intrange=1:10"`
}

// Validate cleans the input and reports every failing field at once.
func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Attendance = core.FlexString(core.CleanString(ns.Attendance.String()))
	ns.AvgGrade = core.FlexString(core.CleanString(ns.AvgGrade.String()))
	ns.BehavioralScore = core.FlexString(core.CleanString(ns.BehavioralScore.String()))
	return validate.Struct(ns)
}

// build returns a Student from validated input. ID is left to the caller.
func (ns NewStudent) build() Student {
	now := NowFunc().UTC()
	s := Student{
		Name:         ns.Name,
		Email:        ns.Email,
		Phone:        ns.Phone,
		LastActivity: ActivityCreated,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.SetMetrics(atoi(ns.Attendance), atoi(ns.AvgGrade), atoi(ns.BehavioralScore))
	return s
}

// UpdateMetrics defines the metrics that may be provided to re-assess an existing Student.
type UpdateMetrics struct {
	Attendance      core.FlexString `json:"attendance" validate:"notblank,intrange=0:100"`
	AvgGrade        core.FlexString `json:"avg_grade" validate:"notblank,intrange=0:100"`
	BehavioralScore core.FlexString `json:"behavioral_score" validate:"notblank,intrange=1:10"`
}

func (um *UpdateMetrics) Validate(validate *validator.Validate) error {
	um.Attendance = core.FlexString(core.CleanString(um.Attendance.String()))
	um.AvgGrade = core.FlexString(core.CleanString(um.AvgGrade.String()))
	um.BehavioralScore = core.FlexString(core.CleanString(um.BehavioralScore.String()))
	return validate.Struct(um)
}

// Values returns the parsed metrics. Only meaningful after Validate.
func (um UpdateMetrics) Values() (attendance, avgGrade, behavioralScore int) {
	return atoi(um.Attendance), atoi(um.AvgGrade), atoi(um.BehavioralScore)
}

// atoi is only called on validated input.
func atoi(fs core.FlexString) int {
	n, _ := strconv.Atoi(strings.TrimSpace(fs.String()))
	return n
}
