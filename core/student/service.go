package student

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/dropwatch/core"
)

var (
	// errors
	ErrNotFound    = errors.New("student not found")
	ErrDuplicateID = errors.New("a student with this id already exists")

	idPrefix      = "STUD"
	maxIDAttempts = 5

	// NewIDFunc draws a fresh student id. Uniqueness is enforced by the Repository.
	NewIDFunc = func() string { // mockable
		hex := strings.ReplaceAll(uuid.New().String(), "-", "")
		return idPrefix + strings.ToUpper(hex[:8])
	}
)

type (
	// Repository owns the roster. Implementations return copies, never references to stored records.
	Repository interface {
		// CreateStudent stores a new record at the end of the roster; ErrDuplicateID if its ID is taken.
		CreateStudent(s Student) (Student, error)
		// QueryAllStudents returns the roster in insertion order.
		QueryAllStudents() ([]Student, error)
		GetStudentByID(id string) (Student, error)
		// UpdateStudent applies update to the stored record under a single write lock
		// and returns the record as it was before and after. ID and CreatedAt cannot change.
		UpdateStudent(id string, update func(s *Student)) (before, after Student, err error)
		DeleteStudentsByID(ids ...string) error
	}

	ServiceInterface interface {
		Create(ns NewStudent) (Student, error)
		Insert(s Student) (Student, error)
		QueryAll() ([]Student, error)
		Query(filter QueryFilter) ([]Student, error)
		GetByID(id string) (Student, error)
		UpdateMetrics(id string, um UpdateMetrics) (Student, error)
		Delete(ids ...string) error
		Aggregate() (Stats, error)
		Distribution() ([]LevelCount, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		mailSvc  core.EmailService
		conf     *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, validate *validator.Validate, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:     repo,
		validate: validate,
		mailSvc:  mailSvc,
		conf:     conf,
	}
}

// Create validates raw input, assigns a fresh id and inserts the new Student.
func (svc *Service) Create(ns NewStudent) (Student, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	s := ns.build()

	for attempt := 1; ; attempt++ {
		s.ID = NewIDFunc()
		created, err := svc.insert(s)
		if err == nil {
			return created, nil
		}
		if errors.Cause(err) != ErrDuplicateID || attempt >= maxIDAttempts {
			return Student{}, errors.Wrap(err, "creating student")
		}
	}
}

// Insert stores a pre-built record after checking every field, recomputing its derived fields first.
// s.ID must be set.
func (svc *Service) Insert(s Student) (Student, error) {
	if core.CleanString(s.ID) == "" {
		return Student{}, core.NewValidationError(nil, core.FieldError{Field: "id", Error: "id is required"})
	}
	if err := s.checkRecord(); err != nil {
		return Student{}, err
	}
	s.ID = core.CleanString(s.ID)
	s.Name = core.CleanString(s.Name)
	s.Email = core.CleanString(s.Email)
	s.Phone = core.CleanString(s.Phone)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = NowFunc().UTC()
		s.UpdatedAt = s.CreatedAt
	}
	return svc.insert(s)
}

func (svc *Service) insert(s Student) (Student, error) {
	s.Refresh()
	created, err := svc.repo.CreateStudent(s)
	if err != nil {
		return Student{}, err
	}
	if created.NeedsIntervention() {
		svc.sendInterventionAlert(created)
	}
	return created, nil
}

func (svc *Service) QueryAll() ([]Student, error) {
	return svc.repo.QueryAllStudents()
}

// Query returns the students matching filter, in roster order.
func (svc *Service) Query(filter QueryFilter) ([]Student, error) {
	students, err := svc.repo.QueryAllStudents()
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	filter.Clean()
	if filter.IsEmpty() {
		return students, nil
	}
	return Filter(students, filter), nil
}

func (svc *Service) GetByID(id string) (Student, error) {
	return svc.repo.GetStudentByID(core.CleanString(id))
}

// UpdateMetrics re-assesses a Student with new metrics.
// An alert is sent when the update moves the Student over the intervention threshold.
func (svc *Service) UpdateMetrics(id string, um UpdateMetrics) (Student, error) {
	if err := um.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	attendance, avgGrade, behavioralScore := um.Values()
	now := NowFunc().UTC()

	before, updated, err := svc.repo.UpdateStudent(core.CleanString(id), func(s *Student) {
		s.SetMetrics(attendance, avgGrade, behavioralScore)
		s.LastActivity = ActivityMetricsUpdated
		s.UpdatedAt = now
	})
	if err != nil {
		return Student{}, errors.Wrap(err, "updating student")
	}
	if !before.NeedsIntervention() && updated.NeedsIntervention() {
		svc.sendInterventionAlert(updated)
	}
	return updated, nil
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteStudentsByID(ids...)
}

// Aggregate derives the dashboard figures from the current roster.
func (svc *Service) Aggregate() (Stats, error) {
	students, err := svc.repo.QueryAllStudents()
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying students")
	}
	return Aggregate(students), nil
}

// Distribution counts the current roster per risk level.
func (svc *Service) Distribution() ([]LevelCount, error) {
	students, err := svc.repo.QueryAllStudents()
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return Distribute(students), nil
}

func (svc *Service) sendInterventionAlert(s Student) {
	if svc.mailSvc == nil || svc.conf == nil {
		return
	}
	to := svc.conf.AlertAddresses()
	if len(to) == 0 {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           to,
		Subject:      fmt.Sprintf("Intervention alert: %s (%s)", s.Name, s.ID),
		TemplateName: "intervention_alert",
		TemplateData: newAlertData(s),
	})
}

type alertData struct {
	Student
	RiskPercent float64
	Color       string
}

func newAlertData(s Student) alertData {
	return alertData{
		Student:     s,
		RiskPercent: s.RiskScore * 100,
		Color:       s.Color(),
	}
}
