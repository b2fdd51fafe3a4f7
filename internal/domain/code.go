package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// CodeAlphabet leaves out glyphs that are easy to misread (0/O, 1/I).
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVW23456789"
	CodeLength   = 6
)

type Code string

func (c Code) String() string { return string(c) }

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseCode checks the wire format of a join code and normalises its case.
// It accepts any ASCII letter or digit so that a mistyped code is reported
// as not found rather than malformed.
func ParseCode(raw string) (Code, error) {
	raw = strings.TrimSpace(raw)
	if err := validate.Var(raw, fmt.Sprintf("required,len=%d,alphanum", CodeLength)); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, raw)
	}
	return Code(strings.ToUpper(raw)), nil
}
