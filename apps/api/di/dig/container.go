package dig_container

import (
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/dropwatch/apps/api/echo"
	"github.com/trezcool/dropwatch/core"
	"github.com/trezcool/dropwatch/core/student"
	emailsvc "github.com/trezcool/dropwatch/services/email"
	logsvc "github.com/trezcool/dropwatch/services/logger"
	inmemdb "github.com/trezcool/dropwatch/storage/database/inmem"
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate
}

func newStudentService(
	repo student.Repository,
	validate *validator.Validate,
	mailSvc core.EmailService,
	conf *core.Config,
) student.ServiceInterface {
	return student.NewService(repo, validate, mailSvc, conf)
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	studSvc student.ServiceInterface,
	validate *validator.Validate,
	translator ut.Translator,
) *echoapi.Server {
	return echoapi.NewServer(&echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		StudentSvc: studSvc,
		Validate:   validate,
		Translator: translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(inmemdb.Open))
	must(c.Provide(newEmailService))
	must(c.Provide(inmemdb.NewStudentRepository))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newStudentService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
