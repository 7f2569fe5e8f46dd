package op

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Builtins returns a Registry pre-loaded with the standard string operations.
func Builtins() *Registry {
	r := NewRegistry()
	r.Register("concat", 2, func(args []string) (string, error) {
		return args[0] + args[1], nil
	})
	r.Register("upper", 1, func(args []string) (string, error) {
		return strings.ToUpper(args[0]), nil
	})
	r.Register("lower", 1, func(args []string) (string, error) {
		return strings.ToLower(args[0]), nil
	})
	r.Register("replace", 3, func(args []string) (string, error) {
		// An empty search string is a no-op, never an infinite scan.
		if args[1] == "" {
			return args[0], nil
		}
		return strings.ReplaceAll(args[0], args[1], args[2]), nil
	})
	r.Register("capitalize", 1, func(args []string) (string, error) {
		s := args[0]
		if s == "" {
			return "", nil
		}
		first, size := utf8.DecodeRuneInString(s)
		return string(unicode.ToUpper(first)) + strings.ToLower(s[size:]), nil
	})
	r.Register("trim", 1, func(args []string) (string, error) {
		return strings.TrimSpace(args[0]), nil
	})
	r.Register("repeat", 2, func(args []string) (string, error) {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("repeat count %q: %w", args[1], err)
		}
		if n < 0 {
			return "", fmt.Errorf("repeat count must not be negative, got %d", n)
		}
		return strings.Repeat(args[0], n), nil
	})
	return r
}
