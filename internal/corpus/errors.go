package corpus

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable means the corpus file or stream could not be opened.
	ErrSourceUnavailable = errors.New("corpus source unavailable")
	// ErrMalformedRecord means a record does not match the expected shape.
	ErrMalformedRecord = errors.New("malformed corpus record")
	// ErrUnknownRoleAlias means a role string matched no known alias.
	ErrUnknownRoleAlias = errors.New("unknown role alias")
)

// UnknownRoleError carries the offending alias.
type UnknownRoleError struct {
	Alias string
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownRoleAlias, e.Alias)
}

func (e *UnknownRoleError) Is(target error) bool {
	return target == ErrUnknownRoleAlias
}
