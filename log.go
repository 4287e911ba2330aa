package canopy

import (
	"log"
	"os"
)

// logger receives every canopy log line. Lines are tagged with the
// component that produced them, e.g. "[canopy] [Kernel] Add player ...".
var logger = log.New(os.Stderr, "[canopy] ", log.LstdFlags)

// SetLogger replaces the package logger. A nil logger silences output.
func SetLogger(l *log.Logger) {
	logger = l
}

func logf(tag, format string, args ...any) {
	if logger == nil {
		return
	}
	logger.Printf("["+tag+"] "+format, args...)
}
