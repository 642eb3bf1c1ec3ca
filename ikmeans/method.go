package ikmeans

import (
	"fmt"
	"strings"
)

// Method selects the training algorithm.
type Method int

const (
	// Lloyd is the standard assign/update iteration.
	Lloyd Method = iota
	// Elkan uses triangle-inequality bounds to skip distance computations.
	Elkan
)

func (m Method) String() string {
	switch m {
	case Lloyd:
		return "lloyd"
	case Elkan:
		return "elkan"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	return m == Lloyd || m == Elkan
}

// ParseMethod parses a method name (case-insensitive).
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lloyd", "":
		return Lloyd, nil
	case "elkan":
		return Elkan, nil
	default:
		return 0, fmt.Errorf("ikmeans: unknown method %q", s)
	}
}
