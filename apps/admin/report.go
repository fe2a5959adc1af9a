package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/dropwatch/core"
	"github.com/trezcool/dropwatch/core/student"
)

var (
	csvHeader    = []string{"name", "email", "phone", "attendance", "avg_grade", "behavioral_score"}
	csvHeaderStr = strings.Join(csvHeader, ",")

	errBadHeader = errors.New("roster header must be: " + csvHeaderStr)
)

// report loads a roster into an empty store, then prints the filtered roster and its stats.
// Rows failing validation are reported and skipped.
func (cli *commandLine) report(file string, sample bool, filter student.QueryFilter) error {
	filter.Clean()
	if err := cli.validate.Struct(filter); err != nil {
		return cli.validationErr(err)
	}

	cli.db.Reset()
	if sample {
		if err := student.Seed(cli.studSvc); err != nil {
			return err
		}
	} else if err := cli.loadCSV(file); err != nil {
		return err
	}

	students, err := cli.studSvc.Query(filter)
	if err != nil {
		return err
	}
	stats, err := cli.studSvc.Aggregate()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tATTENDANCE\tGRADE\tBEHAVIOR\tRISK\tSTATUS\tALERT")
	for _, s := range students {
		fmt.Fprintf(tw, "%s\t%s\t%d%%\t%d%%\t%d/10\t%.1f%%\t%s\t%s\n",
			s.ID, s.Name, s.Attendance, s.AvgGrade, s.BehavioralScore, s.RiskScore*100, s.Status, yesNo(s.NeedsIntervention()))
	}
	if err = tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "\n%d of %d students listed\n", len(students), stats.TotalStudents)
	fmt.Fprintf(cli.out, "high risk: %d | intervention alerts: %d | avg attendance: %.1f%%\n",
		stats.HighRiskCount, stats.InterventionAlertCount, stats.AvgAttendance)
	return nil
}

func (cli *commandLine) loadCSV(file string) error {
	f, err := openFileFunc(file)
	if err != nil {
		return errors.Wrap(err, "opening roster")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return errors.Wrap(err, "reading roster header")
	}
	for i, col := range header {
		if core.CleanString(col, true /* lower */) != csvHeader[i] {
			return errBadHeader
		}
	}

	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "reading roster line %d", line)
		}

		_, err = cli.studSvc.Create(student.NewStudent{
			Name:            rec[0],
			Email:           rec[1],
			Phone:           rec[2],
			Attendance:      core.FlexString(rec[3]),
			AvgGrade:        core.FlexString(rec[4]),
			BehavioralScore: core.FlexString(rec[5]),
		})
		if err != nil {
			fields := fieldErrors(err, cli.translator)
			if fields == nil {
				return errors.Wrapf(err, "creating student from line %d", line)
			}
			fmt.Fprintf(cli.out, "line %d skipped: %s\n", line, joinFieldErrors(fields))
		}
	}
}

// fieldErrors returns the per-field messages of a validation error, nil for any other error.
func fieldErrors(err error, translator ut.Translator) map[string]string {
	switch vErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		return core.TranslateErrors(vErr, translator)
	case *core.ValidationError:
		return vErr.FieldMap()
	}
	return nil
}

func joinFieldErrors(fields map[string]string) string {
	msgs := make([]string, 0, len(fields))
	for _, msg := range fields {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}
