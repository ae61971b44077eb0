package rename

import (
	"errors"
	"fmt"
	"strings"
)

// MissingFieldError lists every field that resolved to no value.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required fields have no value: %s", strings.Join(e.Fields, ", "))
}

// InvalidCharacterError means the substituted name contains a reserved character.
type InvalidCharacterError struct {
	Name     string
	Reserved string
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("filename %q contains reserved characters (%s)", e.Name, e.Reserved)
}

// NgWordError names the forbidden word found in the substituted name.
type NgWordError struct {
	Word string
}

func (e *NgWordError) Error() string {
	return fmt.Sprintf("filename contains NG word: %s", e.Word)
}

// AutoNumberLimitError is returned when every number up to Limit is taken.
type AutoNumberLimitError struct {
	Limit int
}

func (e *AutoNumberLimitError) Error() string {
	return fmt.Sprintf("auto-numbering limit reached (%d)", e.Limit)
}

// IsValidationError reports whether err is one of the filename validation
// failures (missing field, reserved character, NG word).
func IsValidationError(err error) bool {
	var mf *MissingFieldError
	var ic *InvalidCharacterError
	var ng *NgWordError
	return errors.As(err, &mf) || errors.As(err, &ic) || errors.As(err, &ng)
}
