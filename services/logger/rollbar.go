package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/dropwatch/core"
	"github.com/trezcool/dropwatch/core/student"
)

// RollbarLogger reports to rollbar and echoes every entry to a std logger.
// Student args are reported as custom data and never as a rollbar person:
// contact details stay out of the report.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// prepare turns (msg, args) into rollbar's variadic form: msg, an optional error
// and one merged custom data map.
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var (
		err    error
		extras map[string]interface{}
	)
	merge := func(key string, val interface{}) {
		if extras == nil {
			extras = make(map[string]interface{})
		}
		extras[key] = val
	}

	for _, arg := range args {
		switch a := arg.(type) {
		case error:
			if err == nil {
				err = a
			}
		case map[string]interface{}:
			for k, v := range a {
				merge(k, v)
			}
		case student.Student:
			merge("student", studentData(a))
		case *student.Student:
			if a != nil {
				merge("student", studentData(*a))
			}
		}
	}

	newArgs := []interface{}{msg}
	if err != nil {
		newArgs = append(newArgs, err)
	}
	if extras != nil {
		newArgs = append(newArgs, extras)
	}
	return newArgs
}

func studentData(s student.Student) map[string]interface{} {
	return map[string]interface{}{
		"id":                 s.ID,
		"status":             s.Status,
		"risk_score":         s.RiskScore,
		"needs_intervention": s.NeedsIntervention(),
		"last_activity":      s.LastActivity,
	}
}

func (l RollbarLogger) print(msg string, args []interface{}) {
	l.std.Println(msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	rollbar.Wait()
	l.print(msg, args)
	l.std.Fatal(msg)
}
