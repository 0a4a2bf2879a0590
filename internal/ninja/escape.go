// Package ninja emits declarative build rules in ninja's text format from a
// resolved build graph. One writer instance handles one target; the output
// buffer grows in memory and is flushed once by the driver.
package ninja

import "strings"

// ninjaPathEscaper handles path context: ninja treats space, colon and
// dollar specially on build lines.
var ninjaPathEscaper = strings.NewReplacer("$", "$$", " ", "$ ", ":", "$:")

func escapePath(s string) string { return ninjaPathEscaper.Replace(s) }

// shellSpecial are the characters that force quoting in command context.
const shellSpecial = " \t\"'`~#$&*()\\|[]{};<>?!"

// escapeCommand escapes a string destined for a command-context variable:
// shell quoting first, then ninja's dollar escaping. Plain flags like
// -std=c++17 pass through unchanged.
func escapeCommand(s string) string {
	if !strings.ContainsAny(s, shellSpecial) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '$':
			sb.WriteString("$$")
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func write(sb *strings.Builder, s ...string) {
	for _, str := range s {
		sb.WriteString(str)
	}
}

func writeln(sb *strings.Builder, s ...string) {
	for _, str := range s {
		sb.WriteString(str)
	}
	sb.WriteByte('\n')
}
