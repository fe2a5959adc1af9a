package student

import "github.com/pkg/errors"

// SampleRoster returns a small demo roster. Derived fields are filled in on insert.
func SampleRoster() []Student {
	return []Student{
		{ID: "BBCO22122", Name: "John Doe", Email: "john.doe@college.edu", Phone: "+91-9876543210", Attendance: 75, AvgGrade: 82, BehavioralScore: 7, LastActivity: "2 hours ago"},
		{ID: "BBCO22120", Name: "Jane Smith", Email: "jane.smith@college.edu", Phone: "+91-9876543211", Attendance: 45, AvgGrade: 65, BehavioralScore: 4, LastActivity: "5 days ago"},
		{ID: "BBCO22129", Name: "Mike Johnson", Email: "mike.johnson@college.edu", Phone: "+91-9876543212", Attendance: 85, AvgGrade: 88, BehavioralScore: 8, LastActivity: "1 hour ago"},
		{ID: "BBCO22132", Name: "Sarah Wilson", Email: "sarah.wilson@college.edu", Phone: "+91-9876543213", Attendance: 60, AvgGrade: 70, BehavioralScore: 5, LastActivity: "1 day ago"},
		{ID: "BBCO22135", Name: "Tom Brown", Email: "tom.brown@college.edu", Phone: "+91-9876543214", Attendance: 40, AvgGrade: 55, BehavioralScore: 3, LastActivity: "3 days ago"},
	}
}

// Seed inserts the sample roster. Students already present are skipped.
func Seed(svc ServiceInterface) error {
	for _, s := range SampleRoster() {
		if _, err := svc.Insert(s); err != nil && errors.Cause(err) != ErrDuplicateID {
			return errors.Wrapf(err, "seeding %s", s.ID)
		}
	}
	return nil
}
