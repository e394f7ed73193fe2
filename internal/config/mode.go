package config

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Mode selects how group signals are derived and written.
type Mode string

const (
	// ModeGated writes true/false; any CI-infrastructure change forces every
	// group to true.
	ModeGated Mode = "gated"
	// ModeCount writes raw match counts; groups are independent of CI changes.
	ModeCount Mode = "count"
)

// ParseMode accepts the mode input case-insensitively. Empty means gated.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ModeGated), "boolean":
		return ModeGated, nil
	case string(ModeCount):
		return ModeCount, nil
	default:
		return "", errors.Wrapf(ErrInvalidMode, "%q (want %q or %q)", raw, ModeGated, ModeCount)
	}
}
