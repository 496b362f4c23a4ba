package launcher

import (
	"fmt"
	"strings"
	"unicode"
)

// NoArgsIdentifier is used when the launch has no arguments to name logs after.
const NoArgsIdentifier = "no_args"

const logPrefix = "python_bg_"

// Identifier derives the log file identifier from launch arguments. The
// second argument is the module or role name by convention (as in
// "-m server"); a lone argument is used as is.
func Identifier(args []string) string {
	var raw string
	switch {
	case len(args) >= 2:
		raw = args[1]
	case len(args) == 1:
		raw = args[0]
	default:
		return NoArgsIdentifier
	}

	id := Sanitize(raw)
	if id == "" {
		return NoArgsIdentifier
	}
	return id
}

// Sanitize replaces every rune that is not a letter or number with '_'.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return '_'
	}, s)
}

// RoleLogNames returns the fixed stdout and stderr file names for a role
// launch. Relaunching the role reuses and truncates them.
func RoleLogNames(id string) (stdout, stderr string) {
	return fmt.Sprintf("%s%s.log", logPrefix, id), fmt.Sprintf("%s%s_error.log", logPrefix, id)
}

// TimestampedLogNames returns per-launch file names. seq disambiguates
// launches with the same identifier in the same second; zero means no suffix.
func TimestampedLogNames(id string, unix int64, seq int) (stdout, stderr string) {
	base := fmt.Sprintf("%s%s_%d", logPrefix, id, unix)
	if seq > 0 {
		base = fmt.Sprintf("%s_%d", base, seq)
	}
	return base + ".log", base + "_error.log"
}
