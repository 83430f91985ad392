// Package logging provides the prefixed stdlib loggers passed by
// constructor option throughout this module, rather than a global
// singleton.
package logging

import (
	"log"
	"os"
)

// New returns a Logger with the given bracketed prefix writing to stdout,
// mirroring the "[Component] " prefix convention used elsewhere in this
// codebase.
func New(component string) *log.Logger {
	return log.New(os.Stdout, "["+component+"] ", log.LstdFlags)
}
