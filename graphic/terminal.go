package graphic

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// normalizeTerminal works around TERMINFO values that break termbox inside
// tmux. The returned func restores the environment.
func normalizeTerminal() (func(), error) {
	prevTERMINFO, had := os.LookupEnv("TERMINFO")

	if !had || !strings.HasPrefix(os.Getenv("TERM"), "tmux") {
		return func() {}, nil
	}

	if err := os.Unsetenv("TERMINFO"); err != nil {
		return nil, errors.Wrap(err, "failed to unset TERMINFO")
	}

	return func() { os.Setenv("TERMINFO", prevTERMINFO) }, nil
}
