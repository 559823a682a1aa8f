package domain

import "fmt"

// AtomicityMode describes how a transaction's steps were committed.
type AtomicityMode string

const (
	// AtomicityFull wraps the idempotency check, balance mutation and log
	// append in one all-or-nothing unit.
	AtomicityFull AtomicityMode = "full"
	// AtomicityFallback runs the same steps without the wrapper and relies on
	// the single-operation atomicity of the balance update. A crash between the
	// mutation and the log append can leave an unlogged balance change.
	AtomicityFallback AtomicityMode = "fallback"
)

// ParseAtomicityMode converts a configuration value into an AtomicityMode.
func ParseAtomicityMode(s string) (AtomicityMode, error) {
	switch m := AtomicityMode(s); m {
	case AtomicityFull, AtomicityFallback:
		return m, nil
	case "":
		return AtomicityFull, nil
	}
	return "", fmt.Errorf("unknown atomicity mode %q", s)
}
