package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/dropwatch/core/student"
	inmemdb "github.com/trezcool/dropwatch/storage/database/inmem"
)

var (
	openFileFunc = func(name string) (io.ReadCloser, error) { return os.Open(name) } // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *inmemdb.DB
	studSvc    student.ServiceInterface
	validate   *validator.Validate
	translator ut.Translator
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  score -attendance N -grade N -behavior N - assess raw metrics")
	fmt.Fprintln(cli.out, "  report -file ROSTER.csv|-sample [-risk all|low|medium|high] [-search TERM] - load a roster and print it")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	scoreCmd := flag.NewFlagSet("score", flag.ContinueOnError)
	scoreCmd.SetOutput(cli.out)
	scoreAttendance := scoreCmd.String("attendance", "", "Attendance percentage, 0-100.")
	scoreGrade := scoreCmd.String("grade", "", "Average grade percentage, 0-100.")
	scoreBehavior := scoreCmd.String("behavior", "", "Behavioral score, 1-10.")

	reportCmd := flag.NewFlagSet("report", flag.ContinueOnError)
	reportCmd.SetOutput(cli.out)
	reportFile := reportCmd.String("file", "", "CSV roster with header "+csvHeaderStr+".")
	reportSample := reportCmd.Bool("sample", false, "Use the built-in sample roster instead of a file.")
	reportRisk := reportCmd.String("risk", student.RiskAll, "Only list students of this risk category.")
	reportSearch := reportCmd.String("search", "", "Only list students whose name or id contains this term.")

	switch args[1] {
	case "score":
		if err := scoreCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *scoreAttendance == "" && *scoreGrade == "" && *scoreBehavior == "" {
			scoreCmd.Usage()
			return errHelp
		}
		return cli.score(*scoreAttendance, *scoreGrade, *scoreBehavior)
	case "report":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if (*reportFile == "") == !*reportSample { // exactly one source
			reportCmd.Usage()
			return errHelp
		}
		filter := student.QueryFilter{Search: *reportSearch, Risk: *reportRisk}
		return cli.report(*reportFile, *reportSample, filter)
	default:
		cli.printUsage()
		return errHelp
	}
}
