package student_test

import (
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/dropwatch/core"
	"github.com/trezcool/dropwatch/core/risk"
	"github.com/trezcool/dropwatch/core/student"
	"github.com/trezcool/dropwatch/storage/database/inmem"
	"github.com/trezcool/dropwatch/tests"
)

type mailRecorder struct {
	mu   sync.Mutex
	sent []*core.EmailMessage
}

func (m *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, messages...)
}

func setup(t *testing.T, recipients ...string) (*student.Service, student.Repository, *mailRecorder) {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	repo := inmemdb.NewStudentRepository(db)

	conf := &core.Config{AppName: "Dropwatch"}
	conf.Alerts.Recipients = recipients

	mails := new(mailRecorder)
	return student.NewService(repo, testutil.NewValidator(), mails, conf), repo, mails
}

func validInput() student.NewStudent {
	return student.NewStudent{
		Name:            "  Jane Smith ",
		Email:           "jane.smith@college.edu",
		Phone:           "+91-9876543211",
		Attendance:      "45",
		AvgGrade:        "65",
		BehavioralScore: "4",
	}
}

func TestService_Create(t *testing.T) {
	svc, repo, _ := setup(t)

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	student.NowFunc = func() time.Time { return now }
	defer func() { student.NowFunc = time.Now }()

	s, err := svc.Create(validInput())
	require.NoError(t, err)

	assert.Regexp(t, `^STUD[0-9A-F]{8}$`, s.ID)
	assert.Equal(t, "Jane Smith", s.Name)
	assert.Equal(t, 45, s.Attendance)
	assert.Equal(t, 65, s.AvgGrade)
	assert.Equal(t, 4, s.BehavioralScore)
	assert.InDelta(t, 0.4925, s.RiskScore, 1e-9)
	assert.Equal(t, risk.Medium, s.Status)
	assert.Equal(t, student.ActivityCreated, s.LastActivity)
	assert.Equal(t, now, s.CreatedAt)

	stored, err := repo.GetStudentByID(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, stored)
}

func TestService_Create_validation(t *testing.T) {
	tests := []struct {
		name    string
		input   func(ns *student.NewStudent)
		wantErr []string // failing fields
	}{
		{name: "attendance above range", input: func(ns *student.NewStudent) { ns.Attendance = "150" }, wantErr: []string{"attendance"}},
		{name: "attendance not a number", input: func(ns *student.NewStudent) { ns.Attendance = "lol" }, wantErr: []string{"attendance"}},
		{name: "negative grade", input: func(ns *student.NewStudent) { ns.AvgGrade = "-1" }, wantErr: []string{"avg_grade"}},
		{name: "behavior zero", input: func(ns *student.NewStudent) { ns.BehavioralScore = "0" }, wantErr: []string{"behavioral_score"}},
		{name: "behavior eleven", input: func(ns *student.NewStudent) { ns.BehavioralScore = "11" }, wantErr: []string{"behavioral_score"}},
		{name: "bad email", input: func(ns *student.NewStudent) { ns.Email = "jane@college" }, wantErr: []string{"email"}},
		{
			name: "everything missing",
			input: func(ns *student.NewStudent) {
				*ns = student.NewStudent{Name: "   ", Phone: "\t"}
			},
			wantErr: []string{"name", "email", "phone", "attendance", "avg_grade", "behavioral_score"},
		},
		{name: "bounds are inclusive", input: func(ns *student.NewStudent) {
			ns.Attendance, ns.AvgGrade, ns.BehavioralScore = "0", "100", "1"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := setup(t)
			input := validInput()
			tt.input(&input)

			_, err := svc.Create(input)
			all, _ := repo.QueryAllStudents()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				assert.Len(t, all, 1)
				return
			}

			var vErrs validator.ValidationErrors
			require.True(t, errors.As(err, &vErrs), "want validator.ValidationErrors, got %v", err)
			fields := make([]string, 0, len(vErrs))
			for _, fe := range vErrs {
				fields = append(fields, fe.Field())
			}
			assert.ElementsMatch(t, tt.wantErr, fields)
			assert.Empty(t, all, "nothing inserted")
		})
	}
}

func TestService_Create_retriesIDCollisions(t *testing.T) {
	svc, repo, _ := setup(t)
	testutil.CreateStudent(t, repo, "STUDTAKEN", "Taken", 90, 90, 9)

	drawn := []string{"STUDTAKEN", "STUDTAKEN", "STUDFRESH"}
	student.NewIDFunc = func() string {
		id := drawn[0]
		drawn = drawn[1:]
		return id
	}
	defer func() { student.NewIDFunc = defaultIDFunc }()

	s, err := svc.Create(validInput())
	require.NoError(t, err)
	assert.Equal(t, "STUDFRESH", s.ID)
	assert.Empty(t, drawn)
}

func TestService_Create_givesUpOnCollisions(t *testing.T) {
	svc, repo, _ := setup(t)
	testutil.CreateStudent(t, repo, "STUDTAKEN", "Taken", 90, 90, 9)

	student.NewIDFunc = func() string { return "STUDTAKEN" }
	defer func() { student.NewIDFunc = defaultIDFunc }()

	_, err := svc.Create(validInput())
	assert.Equal(t, student.ErrDuplicateID, errors.Cause(err))
}

var defaultIDFunc = student.NewIDFunc

func TestService_Insert(t *testing.T) {
	svc, repo, _ := setup(t)

	// derived fields given by the caller are ignored
	s, err := svc.Insert(student.Student{
		ID: "BBCO22120", Name: " Jane Smith", Email: "jane.smith@college.edu", Phone: "+91-9876543211",
		Attendance: 45, AvgGrade: 65, BehavioralScore: 4,
		RiskScore: 0.8, Status: risk.High,
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", s.Name)
	assert.InDelta(t, 0.4925, s.RiskScore, 1e-9)
	assert.Equal(t, risk.Medium, s.Status)
	assert.False(t, s.CreatedAt.IsZero())

	valid := func(id string) student.Student {
		return student.Student{
			ID: id, Name: "Amy", Email: "amy@college.edu", Phone: "1",
			Attendance: 10, AvgGrade: 10, BehavioralScore: 1,
		}
	}

	tests := []struct {
		name      string
		input     func(s *student.Student)
		wantErr   error
		wantField map[string]string
	}{
		{name: "duplicate id", input: func(s *student.Student) { s.ID = "BBCO22120" }, wantErr: student.ErrDuplicateID},
		{
			name:      "blank id",
			input:     func(s *student.Student) { s.ID = " " },
			wantField: map[string]string{"id": "id is required"},
		},
		{
			name:  "metrics out of domain",
			input: func(s *student.Student) { s.Attendance, s.AvgGrade, s.BehavioralScore = 101, -5, 0 },
			wantField: map[string]string{
				"attendance":       "attendance must be between 0-100",
				"avg_grade":        "avg_grade must be between 0-100",
				"behavioral_score": "behavioral_score must be between 1-10",
			},
		},
		{
			name:  "contact fields",
			input: func(s *student.Student) { s.Name, s.Email, s.Phone = "   ", "not-an-email", "" },
			wantField: map[string]string{
				"name":  "name is required",
				"email": "email is invalid",
				"phone": "phone is required",
			},
		},
		{
			name:      "blank email",
			input:     func(s *student.Student) { s.Email = "\t" },
			wantField: map[string]string{"email": "email is required"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid("S1")
			tt.input(&input)
			_, err := svc.Insert(input)

			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			} else {
				var vErr *core.ValidationError
				require.True(t, errors.As(err, &vErr), "want *core.ValidationError, got %v", err)
				assert.Equal(t, tt.wantField, vErr.FieldMap())
			}

			all, err := repo.QueryAllStudents()
			require.NoError(t, err)
			assert.Len(t, all, 1, "nothing inserted")
		})
	}
}

func TestService_rosterInvariant(t *testing.T) {
	svc, _, _ := setup(t)
	require.NoError(t, student.Seed(svc))

	for _, m := range [][3]string{{"0", "0", "1"}, {"100", "100", "10"}, {"70", "40", "5"}, {"33", "66", "9"}} {
		_, err := svc.Create(student.NewStudent{
			Name: "N", Email: "n@college.edu", Phone: "1",
			Attendance: core.FlexString(m[0]), AvgGrade: core.FlexString(m[1]), BehavioralScore: core.FlexString(m[2]),
		})
		require.NoError(t, err)

		all, err := svc.QueryAll()
		require.NoError(t, err)
		for _, s := range all {
			assert.Equal(t, risk.Categorize(s.RiskScore).Level, s.Status, s.ID)
			assert.True(t, s.IsConsistent(), s.ID)
		}
	}
}

func TestService_UpdateMetrics(t *testing.T) {
	svc, repo, mails := setup(t, "counsellor@college.edu")
	orig := testutil.CreateStudent(t, repo, "S1", "Amy", 90, 90, 9)

	_, err := svc.UpdateMetrics("S1", student.UpdateMetrics{Attendance: "101", AvgGrade: "50", BehavioralScore: "5"})
	assert.IsType(t, validator.ValidationErrors{}, err)

	_, err = svc.UpdateMetrics("lol", student.UpdateMetrics{Attendance: "10", AvgGrade: "10", BehavioralScore: "1"})
	assert.Equal(t, student.ErrNotFound, errors.Cause(err))

	upd, err := svc.UpdateMetrics("S1", student.UpdateMetrics{Attendance: "10", AvgGrade: "10", BehavioralScore: "1"})
	require.NoError(t, err)
	assert.Equal(t, risk.High, upd.Status)
	assert.True(t, upd.IsConsistent())
	assert.Equal(t, student.ActivityMetricsUpdated, upd.LastActivity)
	assert.Equal(t, orig.CreatedAt, upd.CreatedAt)
	require.Len(t, mails.sent, 1, "crossing the intervention threshold sends an alert")
	assert.Equal(t, "Intervention alert: Amy (S1)", mails.sent[0].Subject)

	// still above the threshold: no new alert
	_, err = svc.UpdateMetrics("S1", student.UpdateMetrics{Attendance: "5", AvgGrade: "5", BehavioralScore: "1"})
	require.NoError(t, err)
	assert.Len(t, mails.sent, 1)
}

func TestService_UpdateMetrics_concurrentAlerts(t *testing.T) {
	svc, repo, mails := setup(t, "counsellor@college.edu")
	testutil.CreateStudent(t, repo, "S1", "Amy", 90, 90, 9)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.UpdateMetrics("S1", student.UpdateMetrics{Attendance: "10", AvgGrade: "10", BehavioralScore: "1"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	mails.mu.Lock()
	defer mails.mu.Unlock()
	assert.Len(t, mails.sent, 1, "only the update crossing the threshold alerts")
}

func TestService_interventionAlerts(t *testing.T) {
	svc, _, mails := setup(t, "Counsellor <counsellor@college.edu>")

	input := validInput()
	input.Attendance, input.AvgGrade, input.BehavioralScore = "10", "20", "2"
	s, err := svc.Create(input)
	require.NoError(t, err)
	require.True(t, s.NeedsIntervention())

	require.Len(t, mails.sent, 1)
	msg := mails.sent[0]
	assert.Equal(t, "counsellor@college.edu", msg.To[0].Address)
	assert.Equal(t, "intervention_alert", msg.TemplateName)

	// below 0.60: no alert
	_, err = svc.Create(validInput())
	require.NoError(t, err)
	assert.Len(t, mails.sent, 1)

	// no recipients configured: no alert
	quiet, _, quietMails := setup(t)
	_, err = quiet.Create(input)
	require.NoError(t, err)
	assert.Empty(t, quietMails.sent)
}

func TestService_Query(t *testing.T) {
	svc, _, _ := setup(t)
	require.NoError(t, student.Seed(svc))

	tests := []struct {
		name    string
		filter  student.QueryFilter
		wantIDs []string
	}{
		{name: "empty", wantIDs: []string{"BBCO22122", "BBCO22120", "BBCO22129", "BBCO22132", "BBCO22135"}},
		{name: "search jane", filter: student.QueryFilter{Search: "jane"}, wantIDs: []string{"BBCO22120"}},
		{name: "search by id", filter: student.QueryFilter{Search: "bbco2213"}, wantIDs: []string{"BBCO22132", "BBCO22135"}},
		{name: "risk medium", filter: student.QueryFilter{Risk: "Medium"}, wantIDs: []string{"BBCO22120", "BBCO22135"}},
		{name: "risk low", filter: student.QueryFilter{Risk: "low risk"}, wantIDs: []string{"BBCO22122", "BBCO22129", "BBCO22132"}},
		{name: "risk low + search", filter: student.QueryFilter{Search: " JOHN", Risk: "low"}, wantIDs: []string{"BBCO22122", "BBCO22129"}},
		{name: "risk high", filter: student.QueryFilter{Risk: "high"}, wantIDs: []string{}},
		{name: "no match", filter: student.QueryFilter{Search: "lol", Risk: "all"}, wantIDs: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Query(tt.filter)
			require.NoError(t, err)
			gotIDs := make([]string, 0, len(got))
			for _, s := range got {
				gotIDs = append(gotIDs, s.ID)
			}
			assert.Equal(t, tt.wantIDs, gotIDs)
		})
	}
}

func TestService_AggregateAndDistribution(t *testing.T) {
	svc, _, _ := setup(t)

	stats, err := svc.Aggregate()
	require.NoError(t, err)
	assert.Equal(t, student.Stats{}, stats, "empty roster")

	require.NoError(t, student.Seed(svc))
	require.NoError(t, student.Seed(svc), "seeding twice is a no-op")

	stats, err = svc.Aggregate()
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalStudents)
	assert.Equal(t, 61.0, stats.AvgAttendance)
	assert.Equal(t, 0, stats.HighRiskCount)
	assert.Equal(t, 0, stats.InterventionAlertCount)

	dist, err := svc.Distribution()
	require.NoError(t, err)
	assert.Equal(t, []student.LevelCount{
		{Level: risk.Low, Color: "#10B981", Count: 3},
		{Level: risk.Medium, Color: "#F59E0B", Count: 2},
		{Level: risk.High, Color: "#EF4444", Count: 0},
	}, dist)

	require.NoError(t, svc.Delete("BBCO22122", "BBCO22129"))
	stats, _ = svc.Aggregate()
	assert.Equal(t, 3, stats.TotalStudents)
	assert.Equal(t, 48.3, stats.AvgAttendance)
}
