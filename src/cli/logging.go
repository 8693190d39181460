// Contains various utility functions related to logging.

package cli

import (
	"os"

	cli "github.com/peterebden/go-cli-init/v5/logging"
	"golang.org/x/term"
	"gopkg.in/op/go-logging.v1"
)

// StdErrIsATerminal is true if the process' stderr is an interactive TTY.
var StdErrIsATerminal = term.IsTerminal(int(os.Stderr.Fd()))

// A Verbosity is used as a flag to define logging verbosity.
type Verbosity = cli.Verbosity

// MinVerbosity is the minimum verbosity we support.
const MinVerbosity = cli.MinVerbosity

// MaxVerbosity is the maximum verbosity we support.
const MaxVerbosity = cli.MaxVerbosity

// InitLogging initialises the stderr logging backend.
func InitLogging(verbosity Verbosity) {
	backend := logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), logFormatter(StdErrIsATerminal))
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(logging.Level(verbosity), "")
	logging.SetBackend(leveled)
}

func logFormatter(coloured bool) logging.Formatter {
	formatStr := "%{time:15:04:05.000} %{level:7s}: %{message}"
	if coloured {
		formatStr = "%{color}" + formatStr + "%{color:reset}"
	}
	return logging.MustStringFormatter(formatStr)
}
