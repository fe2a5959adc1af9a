package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/dropwatch/core/risk"
	"github.com/trezcool/dropwatch/core/student"
)

func Test_home(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Dropwatch API!", rec.Body.String())
}

func Test_studentApi_query(t *testing.T) {
	resetRoster(t)

	path := func(search, riskLevel string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if riskLevel != "" {
			v.Add("risk", riskLevel)
		}
		return "/v1/students?" + v.Encode()
	}

	john := getStudent(t, "BBCO22122")
	jane := getStudent(t, "BBCO22120")
	mike := getStudent(t, "BBCO22129")
	sarah := getStudent(t, "BBCO22132")
	tom := getStudent(t, "BBCO22135")

	tests := []httpTest{
		{name: "Get all", path: "/v1/students", wantData: marchallList(t, john, jane, mike, sarah, tom)},
		{name: "risk=all", path: path("", "all"), wantData: marchallList(t, john, jane, mike, sarah, tom)},
		{name: "search (unknown)", path: path("lol", ""), wantData: marchallList(t)},
		{name: "search=jane", path: path("jane", ""), wantData: marchallList(t, jane)},
		{name: "search by id", path: path("bbco2213", ""), wantData: marchallList(t, sarah, tom)},
		{name: "risk=medium", path: path("", "medium"), wantData: marchallList(t, jane, tom)},
		{name: "risk=LOW", path: path("", "LOW"), wantData: marchallList(t, john, mike, sarah)},
		{name: "risk=high", path: path("", "high"), wantData: marchallList(t)},
		{name: "search=john&risk=low", path: path("john", "low"), wantData: marchallList(t, john, mike)},
		{
			name: "risk (unknown)", path: path("", "lol"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"risk": "risk must be one of [all low medium high]"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantCode == 0 {
				tt.wantCode = http.StatusOK
			}
			req, rec := newRequest(http.MethodGet, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_create(t *testing.T) {
	resetRoster(t)

	tests := []httpTest{
		{
			name: "empty body", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name":             "name is required",
				"email":            "email is required",
				"phone":            "phone is required",
				"attendance":       "attendance is required",
				"avg_grade":        "avg_grade is required",
				"behavioral_score": "behavioral_score is required",
			}),
		},
		{
			name:     "out of range",
			body:     []byte(`{"name":"Amy","email":"amy@college.edu","phone":"1","attendance":"150","avg_grade":"lol","behavioral_score":0}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"attendance":       "attendance must be between 0-100",
				"avg_grade":        "avg_grade must be between 0-100",
				"behavioral_score": "behavioral_score must be between 1-10",
			}),
		},
		{
			name:     "bad email",
			body:     []byte(`{"name":"Amy","email":"amy@college","phone":"1","attendance":"50","avg_grade":"50","behavioral_score":"5"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "email is invalid"}),
		},
		{name: "malformed json", body: []byte(`{"name":`), wantCode: http.StatusBadRequest},
		{
			name:     "numbers or strings",
			body:     []byte(`{"name":" Amy ","email":"amy@college.edu","phone":"1","attendance":45,"avg_grade":"65","behavioral_score":4}`),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/students", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var got student.Student
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Regexp(t, `^STUD[0-9A-F]{8}$`, got.ID)
				assert.Equal(t, "Amy", got.Name)
				assert.Equal(t, risk.Medium, got.Status)
				assert.Equal(t, student.ActivityCreated, got.LastActivity)

				stored := getStudent(t, got.ID)
				assert.JSONEq(t, string(marchallObj(t, stored)), rec.Body.String())
			}
		})
	}

	all, err := studRepo.QueryAllStudents()
	require.NoError(t, err)
	assert.Len(t, all, 6, "failed creations insert nothing")
}

func Test_studentApi_create_duplicateID(t *testing.T) {
	resetRoster(t)

	defaultIDFunc := student.NewIDFunc
	student.NewIDFunc = func() string { return "BBCO22120" }
	defer func() { student.NewIDFunc = defaultIDFunc }()

	body := []byte(`{"name":"Amy","email":"amy@college.edu","phone":"1","attendance":"50","avg_grade":"50","behavioral_score":"5"}`)
	req, rec := newRequest(http.MethodPost, "/v1/students", body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusConflict,
		wantData: marchallObj(t, httpErr{Error: "a student with this id already exists"}),
	}, rec)
}

func Test_studentApi_retrieve(t *testing.T) {
	resetRoster(t)

	tests := []httpTest{
		{name: "unknown", path: "/v1/students/lol", wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "found", path: "/v1/students/BBCO22120", wantCode: http.StatusOK, wantData: marchallObj(t, getStudent(t, "BBCO22120"))},
		{name: "trailing slash", path: "/v1/students/BBCO22120/", wantCode: http.StatusOK, wantData: marchallObj(t, getStudent(t, "BBCO22120"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_updateMetrics(t *testing.T) {
	resetRoster(t)
	path := func(id string) string { return "/v1/students/" + id + "/metrics" }

	tests := []httpTest{
		{
			name: "unknown", path: path("lol"), body: []byte(`{"attendance":10,"avg_grade":10,"behavioral_score":1}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "invalid", path: path("BBCO22120"), body: []byte(`{"attendance":10,"avg_grade":101}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"avg_grade":        "avg_grade must be between 0-100",
				"behavioral_score": "behavioral_score is required",
			}),
		},
		{name: "valid", path: path("BBCO22120"), body: []byte(`{"attendance":"10","avg_grade":"10","behavioral_score":"1"}`), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPut, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	jane := getStudent(t, "BBCO22120")
	assert.Equal(t, risk.High, jane.Status)
	assert.True(t, jane.IsConsistent())
	assert.Equal(t, student.ActivityMetricsUpdated, jane.LastActivity)

	sent := mailSvc.Sent()
	require.Len(t, sent, 1, "the update crossed the intervention threshold")
	assert.Equal(t, "Intervention alert: Jane Smith (BBCO22120)", sent[0].Subject)

	flagged := logger.Flagged()
	require.Len(t, flagged, 1, "only the valid update needs intervention")
	assert.Equal(t, jane, flagged[0])
}

func Test_studentApi_destroy(t *testing.T) {
	resetRoster(t)

	tests := []httpTest{
		{name: "found", path: "/v1/students/BBCO22120", wantCode: http.StatusNoContent},
		{name: "gone", path: "/v1/students/BBCO22120", wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodDelete, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	all, err := studRepo.QueryAllStudents()
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func Test_statsApi_retrieve(t *testing.T) {
	resetRoster(t)

	req, rec := newRequest(http.MethodGet, "/v1/stats")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: []byte(`{
			"total_students": 5,
			"high_risk_count": 0,
			"avg_attendance": 61,
			"intervention_alert_count": 0,
			"distribution": [
				{"level": "Low Risk", "color": "#10B981", "count": 3},
				{"level": "Medium Risk", "color": "#F59E0B", "count": 2},
				{"level": "High Risk", "color": "#EF4444", "count": 0}
			]
		}`),
	}, rec)

	db.Reset()
	req, rec = newRequest(http.MethodGet, "/v1/stats")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: []byte(`{
			"total_students": 0, "high_risk_count": 0, "avg_attendance": 0, "intervention_alert_count": 0,
			"distribution": [
				{"level": "Low Risk", "color": "#10B981", "count": 0},
				{"level": "Medium Risk", "color": "#F59E0B", "count": 0},
				{"level": "High Risk", "color": "#EF4444", "count": 0}
			]
		}`),
	}, rec)
}

func Test_riskApi_score(t *testing.T) {
	tests := []httpTest{
		{
			name: "medium", body: []byte(`{"attendance":45,"avg_grade":65,"behavioral_score":4}`),
			wantCode: http.StatusOK, wantData: marchallObj(t, risk.Assess(45, 65, 4)),
		},
		{
			name: "high + intervention", body: []byte(`{"attendance":"0","avg_grade":"0","behavioral_score":"1"}`),
			wantCode: http.StatusOK, wantData: marchallObj(t, risk.Assess(0, 0, 1)),
		},
		{
			name: "invalid", body: []byte(`{"attendance":-1,"avg_grade":50,"behavioral_score":11}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"attendance":       "attendance must be between 0-100",
				"behavioral_score": "behavioral_score must be between 1-10",
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/risk/score", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
