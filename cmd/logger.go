package cmd

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger returns a timestamped console logger. Debug output is enabled
// when verbose is set.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "fulcrum",
	})
}
