package config

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// NamedLogger creates a logger whose messages are prefixed with name and
// the calling source location.
func NamedLogger(name string) *logrus.Logger {
	return &logrus.Logger{
		Out: os.Stderr,
		Formatter: &CustomTextFormatter{
			TextFormatter: logrus.TextFormatter{
				DisableTimestamp: true,
			},
			Name: name,
		},
		Hooks: make(logrus.LevelHooks),
		Level: logrus.InfoLevel,
	}
}

// Logger returns a named logger writing to w at the job's log level.
func (j Job) Logger(name string, w io.Writer) *logrus.Logger {
	l := NamedLogger(name)
	l.Out = w
	if lvl, err := logrus.ParseLevel(j.Run.LogLevel); err == nil {
		l.Level = lvl
	}
	return l
}

// CustomTextFormatter prefixes messages with a name and the file and line
// of the caller outside logrus.
type CustomTextFormatter struct {
	logrus.TextFormatter
	Name string
}

// Format renders a single log entry
func (f *CustomTextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	file, no := caller()
	entry.Message = fmt.Sprintf("[%s %-12s:%03d] %s", f.Name, file, no, entry.Message)
	return f.TextFormatter.Format(entry)
}

func caller() (string, int) {
	for skip := 3; skip < 16; skip++ {
		pc, file, no, ok := runtime.Caller(skip)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn != nil && strings.Contains(fn.Name(), "sirupsen/logrus") {
			continue
		}
		return path.Base(file), no
	}
	return "???", 0
}
