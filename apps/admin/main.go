package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/dropwatch/core"
	"github.com/trezcool/dropwatch/core/student"
	logsvc "github.com/trezcool/dropwatch/services/logger"
	inmemdb "github.com/trezcool/dropwatch/storage/database/inmem"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	db, err := inmemdb.Open()
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening roster store: %v", err), err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	// reports are local: no alert e-mails
	studSvc := student.NewService(inmemdb.NewStudentRepository(db), validate, nil, conf)

	// start CLI
	cli := commandLine{
		db:         db,
		studSvc:    studSvc,
		validate:   validate,
		translator: translator,
		out:        os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
