//go:build linux
// +build linux

package util

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
)

// journaldWriter sends each log line to journald under the app's identifier
type journaldWriter struct{}

func (w *journaldWriter) Write(p []byte) (n int, err error) {
	// journald terminates entries itself
	msg := strings.TrimSuffix(string(p), "\n")

	err = journal.Send(msg, journal.PriInfo, map[string]string{
		"SYSLOG_IDENTIFIER": Name,
	})
	if err != nil {
		return fmt.Fprintf(os.Stderr, "%s", p)
	}
	return len(p), nil
}

var logWriter io.Writer = os.Stderr

// GetLogWriter returns the writer the HTTP router logs to
func GetLogWriter() io.Writer {
	return logWriter
}

// SetupLogging routes log, and the router through GetLogWriter, to journald
// when asked and available. Otherwise everything stays on stderr.
func SetupLogging(withJournald bool) {
	if !withJournald {
		return
	}
	if !journal.Enabled() {
		log.Printf("%s: journald socket not found, logging to stderr", Name)
		return
	}

	logWriter = &journaldWriter{}
	log.SetOutput(logWriter)
	log.SetFlags(0) // journald timestamps entries
	log.Printf("%s: logging to journald", Name)
}
