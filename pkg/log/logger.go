package log

import (
	"io"
	"os"

	"github.com/op/go-logging"
)

// Level selects how much the -v/-vv flags let through
type Level logging.Level

// Levels accepted by SetLevel, quietest last
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

// Lines read [time] [module] [LEVEL] message
var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

// Shared by every module logger; swapped by SetSink
var leveledBackend logging.LeveledBackend

// Logger is the leveled logger every package writes progress and warnings
// through. Fatalf exits the process.
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})

	Fatalf(format string, v ...interface{})
}

// New returns the logger for one package, e.g. "inference" or "radiance".
// Loggers share the sink and level set by SetSink and SetLevel.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// SetSink sends every logger's output to sink and resets the level to Notice.
// Tests use it to capture command output.
func SetSink(sink io.Writer) {
	backend := logging.NewLogBackend(sink, "", 0)
	backendWithFormatter := logging.NewBackendFormatter(backend, format)
	leveledBackend = logging.AddModuleLevel(backendWithFormatter)
	leveledBackend.SetLevel(logging.NOTICE, "")
	logging.SetBackend(leveledBackend)
}

// SetLevel applies level to every module.
func SetLevel(level Level) {
	var loggerLevel logging.Level

	switch level {
	case Debug:
		loggerLevel = logging.DEBUG
	case Info:
		loggerLevel = logging.INFO
	case Notice:
		loggerLevel = logging.NOTICE
	case Warning:
		loggerLevel = logging.WARNING
	case Error:
		loggerLevel = logging.ERROR
	}

	leveledBackend.SetLevel(loggerLevel, "")
}

func init() {
	SetSink(os.Stdout)
	SetLevel(Notice)
}
