package util

import (
	"log"
	"sync"
	"testing"
)

var testingLogMu sync.Mutex

func NewTestingLogger(tb testing.TB) *CommitLogger {
	return &CommitLogger{
		Committer: func(p []byte) {
			tb.Log(string(p))
		},
	}
}

// CaptureLog routes the standard logger to tb until the test ends.
func CaptureLog(tb testing.TB) {
	testingLogMu.Lock()
	defer testingLogMu.Unlock()

	prevOut, prevFlags := log.Writer(), log.Flags()
	l := NewTestingLogger(tb)
	log.SetFlags(0)
	log.SetOutput(l)
	tb.Cleanup(func() {
		testingLogMu.Lock()
		defer testingLogMu.Unlock()
		l.Commit()
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
}
