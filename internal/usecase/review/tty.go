package review

import (
	"os"

	"golang.org/x/term"
)

// IsTTY checks if the given file descriptor is a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsOutputTerminal checks if stdout is a TTY. In a CI job output is piped,
// so log output defaults to JSON; on a developer's terminal the human
// format is friendlier.
func IsOutputTerminal() bool {
	return IsTTY(os.Stdout.Fd())
}
