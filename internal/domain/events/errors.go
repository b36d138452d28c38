package events

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrNotFound = errors.New("event not found")

// ErrForbidden is returned when the acting identity lacks the role or
// ownership an operation requires. Callers must not learn anything else
// about the resource from it.
var ErrForbidden = errors.New("not authorized")

var ErrInvalidStatus = errors.New("invalid status")

// ValidationErrors maps a field name to a human-readable message. Create
// collects every violation before returning so a client can render all
// of them at once.
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}
	return strings.Join(parts, "; ")
}
