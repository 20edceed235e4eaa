package util

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
)

// PanicSafeLogger writes to a log file and stderr, and syncs the file on demand so a
// panic's stack reaches disk.
type PanicSafeLogger struct {
	f  *os.File
	mw io.Writer
}

var std *PanicSafeLogger

func NewPanicSafeLogger(f *os.File) *PanicSafeLogger {
	std = &PanicSafeLogger{
		f:  f,
		mw: io.MultiWriter(f, os.Stderr),
	}
	return std
}

// OpenLogFile creates a timestamped log file under dir.
func OpenLogFile(dir, app string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s-%s.log", app, time.Now().Format("20060102-150405"))
	return os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// SetEcho turns copying to stderr on or off; a full-screen terminal UI turns it off.
func (l *PanicSafeLogger) SetEcho(echo bool) {
	if echo {
		l.mw = io.MultiWriter(l.f, os.Stderr)
	} else {
		l.mw = l.f
	}
}

func (l *PanicSafeLogger) Write(p []byte) (n int, err error) {
	return l.mw.Write(p)
}

func (l *PanicSafeLogger) Flush() error {
	return l.f.Sync()
}

func (l *PanicSafeLogger) Close() error {
	if std == l {
		std = nil
	}
	return l.f.Close()
}

func FlushLogger() error {
	if std == nil {
		return nil
	}
	return std.Flush()
}

func LogPanic(err any) {
	log.Printf("paniced with %v\n%s\n", err, string(debug.Stack()))
	_ = FlushLogger()
}
