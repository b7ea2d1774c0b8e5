package derive

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrStatusOutOfRange is returned when a status code has no icon
var ErrStatusOutOfRange = errors.New("status code out of range")

// StatusCode is the tri-state outcome reported for PRs and master merges
type StatusCode int

// Status codes in the order maintainers type them on the command line
const (
	Success StatusCode = iota
	Warning
	Failure
)

// Icons indexed by status code
var statusIcons = [...]string{
	Success: ":white_check_mark:",
	Warning: ":warning:",
	Failure: ":x:",
}

// ParseStatusCode converts a raw argument ("0", "1" or "2") into a StatusCode
func ParseStatusCode(raw string) (StatusCode, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("status code %q is not a number", raw)
	}

	code := StatusCode(n)
	if !code.Valid() {
		return 0, fmt.Errorf("%w: %d (want 0=success, 1=warning, 2=failure)", ErrStatusOutOfRange, n)
	}
	return code, nil
}

// Valid reports whether the code maps to an icon
func (c StatusCode) Valid() bool {
	return c >= Success && int(c) < len(statusIcons)
}

// Icon returns the wiki emoji shortcode for the status
func (c StatusCode) Icon() (string, error) {
	if !c.Valid() {
		return "", fmt.Errorf("%w: %d", ErrStatusOutOfRange, int(c))
	}
	return statusIcons[c], nil
}

// String returns the lowercase name of the status
func (c StatusCode) String() string {
	switch c {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Failure:
		return "failure"
	default:
		return "unknown(" + strconv.Itoa(int(c)) + ")"
	}
}
