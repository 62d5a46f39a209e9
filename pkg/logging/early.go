package logging

import (
	"fmt"
	"io"
	"os"
	"time"
)

// EarlyLog prints plain lines before the structured logger is configured. Errors and
// warnings go to stderr, info to stdout.
type EarlyLog struct {
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
	exit   func(int)
}

func NewEarlyLog() *EarlyLog {
	return &EarlyLog{
		out:    os.Stdout,
		errOut: os.Stderr,
		now:    time.Now,
		exit:   os.Exit,
	}
}

func (l *EarlyLog) write(w io.Writer, level, msg string, args []interface{}) {
	fmt.Fprintf(w, "%s %s %s\n", l.now().UTC().Format(time.RFC3339), level, fmt.Sprintf(msg, args...))
}

func (l *EarlyLog) Error(msg string, args ...interface{}) {
	l.write(l.errOut, "ERROR", msg, args)
}

func (l *EarlyLog) Fatal(msg string, args ...interface{}) {
	l.write(l.errOut, "FATAL", msg, args)
	l.exit(1)
}

func (l *EarlyLog) Warn(msg string, args ...interface{}) {
	l.write(l.errOut, "WARN", msg, args)
}

func (l *EarlyLog) Info(msg string, args ...interface{}) {
	l.write(l.out, "INFO", msg, args)
}
