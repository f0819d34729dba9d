//go:build !linux
// +build !linux

package util

import (
	"io"
	"log"
	"os"
)

var logWriter io.Writer = os.Stderr

// GetLogWriter returns the writer the HTTP router logs to
func GetLogWriter() io.Writer {
	return logWriter
}

// SetupLogging keeps log on stderr; journald only exists on linux builds
func SetupLogging(withJournald bool) {
	if withJournald {
		log.Printf("%s: with_journald is ignored on this platform, logging to stderr", Name)
	}
}
