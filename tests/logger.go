package testutil

import (
	"fmt"
	"sync"
	"testing"

	"github.com/trezcool/dropwatch/core"
)

// Logger is a core.Logger that writes through t.Logf and keeps error entries around.
type Logger struct {
	t      *testing.T
	mu     sync.Mutex
	Errors []string
}

var _ core.Logger = (*Logger)(nil)

func NewLogger(t *testing.T) *Logger {
	return &Logger{t: t}
}

func (l *Logger) log(level, msg string, args []interface{}) {
	if l.t != nil {
		l.t.Logf("[%s] %s %v", level, msg, args)
	}
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }

func (l *Logger) Error(msg string, args ...interface{}) {
	l.log("ERROR", msg, args)
	l.mu.Lock()
	l.Errors = append(l.Errors, msg)
	l.mu.Unlock()
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.log("FATAL", msg, args)
	panic(fmt.Sprintf("fatal: %s", msg))
}
