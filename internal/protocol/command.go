// Package protocol implements the line-oriented command protocol: one
// newline-terminated request per round trip, colon-separated fields, and a
// single prefixed response line (SUCCESS, INFO, WARNING or ERROR).
package protocol

import "strings"

// Command is a parsed request line. Verb is everything before the first
// colon; Params is the raw remainder, which each verb splits according to
// its own arity.
type Command struct {
	Verb   string
	Params string
}

// ParseCommand splits a request line at the first colon. Lines without a
// colon are parameterless commands.
func ParseCommand(line string) Command {
	verb, params, _ := strings.Cut(line, ":")
	return Command{Verb: verb, Params: params}
}

// fields splits params into exactly n colon-separated fields, the last one
// taking the rest of the line so values may themselves contain colons. It
// reports false when fewer than n fields are present or any field is empty.
func fields(params string, n int) ([]string, bool) {
	parts := strings.SplitN(params, ":", n)
	if len(parts) != n {
		return nil, false
	}
	for _, part := range parts {
		if part == "" {
			return nil, false
		}
	}
	return parts, true
}
