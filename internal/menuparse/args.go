// internal/menuparse/args.go
package menuparse

import (
	"fmt"
	"regexp"
)

// DetailsArgs identifies one day of a program on the menu details endpoint.
type DetailsArgs struct {
	ID        string
	Date      string
	ProgramID string
}

var detailsArgsPattern = regexp.MustCompile(`\(([0-9]+), '([0-9\-]+)', '([0-9]+)'\)`)

// ParseDetailsArgs extracts the arguments of the details button handler,
// e.g. "(42, '2024-01-05', '7')".
func ParseDetailsArgs(s string) (DetailsArgs, error) {
	m := detailsArgsPattern.FindStringSubmatch(s)
	if m == nil {
		return DetailsArgs{}, fmt.Errorf("%w: %q", ErrArguments, s)
	}
	captures := m[1:]
	if len(captures) != 3 {
		return DetailsArgs{}, fmt.Errorf("%w: captured %d arguments, want 3", ErrArguments, len(captures))
	}
	return DetailsArgs{
		ID:        captures[0],
		Date:      captures[1],
		ProgramID: captures[2],
	}, nil
}
