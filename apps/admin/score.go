package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/dropwatch/core"
	"github.com/trezcool/dropwatch/core/risk"
	"github.com/trezcool/dropwatch/core/student"
)

// score prints the assessment of raw metrics.
func (cli *commandLine) score(attendance, grade, behavior string) error {
	um := student.UpdateMetrics{
		Attendance:      core.FlexString(attendance),
		AvgGrade:        core.FlexString(grade),
		BehavioralScore: core.FlexString(behavior),
	}
	if err := um.Validate(cli.validate); err != nil {
		return cli.validationErr(err)
	}

	a := risk.Assess(um.Values())
	fmt.Fprintf(cli.out, "risk score:   %.4f (%.1f%%)\n", a.Score, a.Score*100)
	fmt.Fprintf(cli.out, "status:       %s (from %.2f)\n", a.Level, a.Threshold)
	fmt.Fprintf(cli.out, "intervention: %s\n", yesNo(a.Intervention))
	return nil
}

// validationErr flattens validation errors into a single line per field.
func (cli *commandLine) validationErr(err error) error {
	fields := fieldErrors(err, cli.translator)
	if fields == nil {
		return err
	}
	return errors.New(joinFieldErrors(fields))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
