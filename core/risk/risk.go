// Package risk converts a student's attendance, average grade and behavioral score
// into a dropout risk score and a risk category.
//
// The model is a fixed weighted sum of "deficiency" fractions, not a trained predictor.
// Every view of a student must derive its score and category through this package.
package risk

import (
	"math"
	"strings"
)

// Metric domains.
const (
	MinAttendance = 0
	MaxAttendance = 100
	MinGrade      = 0
	MaxGrade      = 100
	MinBehavior   = 1
	MaxBehavior   = 10
)

// Weights sum to 1.
const (
	AttendanceWeight = 0.40
	GradeWeight      = 0.35
	BehaviorWeight   = 0.25
)

// Thresholds.
const (
	HighThreshold         = 0.70
	MediumThreshold       = 0.40
	InterventionThreshold = 0.60 // separate from the High Risk boundary
)

type Level string

const (
	Low    Level = "Low Risk"
	Medium Level = "Medium Risk"
	High   Level = "High Risk"
)

// Levels lists all levels from lowest to highest.
var Levels = []Level{Low, Medium, High}

var levelColors = map[Level]string{
	Low:    "#10B981",
	Medium: "#F59E0B",
	High:   "#EF4444",
}

func (l Level) String() string { return string(l) }

// Color is the display colour of the level.
func (l Level) Color() string { return levelColors[l] }

// Token is the short lower-case form of the level, eg. "high".
func (l Level) Token() string {
	return strings.ToLower(strings.TrimSuffix(string(l), " Risk"))
}

// ParseLevel maps a token such as "low", "Medium" or "High Risk" to its Level.
func ParseLevel(s string) (Level, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range Levels {
		if s == l.Token() || s == strings.ToLower(string(l)) {
			return l, true
		}
	}
	return "", false
}

// Category is the outcome of categorizing a score.
type Category struct {
	Level     Level   `json:"level"`
	Threshold float64 `json:"threshold"` // lower bound of the level's band
}

// Score computes the dropout risk score in [0, 1].
// Inputs are expected within their domains and are not validated here;
// out-of-domain values are clamped into [0, 1] rather than rejected.
func Score(attendance, avgGrade, behavioralScore int) float64 {
	attendanceRisk := float64(MaxAttendance-attendance) / MaxAttendance
	gradeRisk := float64(MaxGrade-avgGrade) / MaxGrade
	behavioralRisk := float64(MaxBehavior-behavioralScore) / MaxBehavior

	raw := AttendanceWeight*attendanceRisk + GradeWeight*gradeRisk + BehaviorWeight*behavioralRisk
	return math.Max(0, math.Min(raw, 1))
}

// Categorize maps a score to its category. Lower bounds are inclusive.
func Categorize(score float64) Category {
	switch {
	case score >= HighThreshold:
		return Category{Level: High, Threshold: HighThreshold}
	case score >= MediumThreshold:
		return Category{Level: Medium, Threshold: MediumThreshold}
	default:
		return Category{Level: Low, Threshold: 0}
	}
}

// NeedsIntervention reports whether the score meets the intervention alert threshold.
func NeedsIntervention(score float64) bool {
	return score >= InterventionThreshold
}

// Assessment bundles everything derived from one set of metrics.
type Assessment struct {
	Score        float64 `json:"risk_score"`
	Level        Level   `json:"status"`
	Threshold    float64 `json:"threshold"`
	Color        string  `json:"color"`
	Intervention bool    `json:"intervention"`
}

// Assess scores and categorizes the given metrics in one step.
func Assess(attendance, avgGrade, behavioralScore int) Assessment {
	score := Score(attendance, avgGrade, behavioralScore)
	cat := Categorize(score)
	return Assessment{
		Score:        score,
		Level:        cat.Level,
		Threshold:    cat.Threshold,
		Color:        cat.Level.Color(),
		Intervention: NeedsIntervention(score),
	}
}
