package ledger

import (
	"errors"
	"strings"
)

var (
	ErrParse            = errors.New("invalid amount")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrIncompleteData   = errors.New("not all players have entered their final chip amounts")
	ErrInvalidSelection = errors.New("invalid selection")
)

// IncompleteDataError names the players still missing a final chip count.
type IncompleteDataError struct {
	Missing []string
}

func (e *IncompleteDataError) Error() string {
	return ErrIncompleteData.Error() + " (missing: " + strings.Join(e.Missing, ", ") + ")"
}

func (e *IncompleteDataError) Unwrap() error {
	return ErrIncompleteData
}
