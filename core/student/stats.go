package student

import (
	"math"

	"github.com/trezcool/dropwatch/core/risk"
)

// Stats are the dashboard's aggregate figures.
type Stats struct {
	TotalStudents          int     `json:"total_students"`
	HighRiskCount          int     `json:"high_risk_count"`
	AvgAttendance          float64 `json:"avg_attendance"` // 0 when there are no students
	InterventionAlertCount int     `json:"intervention_alert_count"`
}

// LevelCount is one slice of the risk distribution.
type LevelCount struct {
	Level risk.Level `json:"level"`
	Color string     `json:"color"`
	Count int        `json:"count"`
}

// Aggregate derives Stats from students.
func Aggregate(students []Student) Stats {
	stats := Stats{TotalStudents: len(students)}
	if stats.TotalStudents == 0 {
		return stats
	}

	var attendanceSum int
	for _, s := range students {
		attendanceSum += s.Attendance
		if s.Status == risk.High {
			stats.HighRiskCount++
		}
		if s.NeedsIntervention() {
			stats.InterventionAlertCount++
		}
	}
	stats.AvgAttendance = roundTo1(float64(attendanceSum) / float64(stats.TotalStudents))
	return stats
}

// Distribute counts students per risk level, in risk.Levels order.
func Distribute(students []Student) []LevelCount {
	counts := make(map[risk.Level]int, len(risk.Levels))
	for _, s := range students {
		counts[s.Status]++
	}
	dist := make([]LevelCount, 0, len(risk.Levels))
	for _, l := range risk.Levels {
		dist = append(dist, LevelCount{Level: l, Color: l.Color(), Count: counts[l]})
	}
	return dist
}

func roundTo1(f float64) float64 {
	return math.Round(f*10) / 10
}
