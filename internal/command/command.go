// Package command turns raw chat input into one of a closed set of
// commands. Arguments travel with the command, so handlers never prompt.
package command

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Command is implemented only by the types in this package.
type Command interface {
	// Name is the metric and log label of the command.
	Name() string
	isCommand()
}

// Help lists the supported commands.
type Help struct{}

// Weather looks up the stored condition for City. City is empty when the
// user typed the bare command.
type Weather struct {
	City string
}

// Fact serves the next entry of the fact rotation.
type Fact struct{}

// WhoAmI shows the active user's profile.
type WhoAmI struct{}

// Unknown is any input that matched no command.
type Unknown struct {
	Input string
}

func (Help) Name() string    { return "help" }
func (Weather) Name() string { return "weather" }
func (Fact) Name() string    { return "fact" }
func (WhoAmI) Name() string  { return "whoami" }
func (Unknown) Name() string { return "unknown" }

func (Help) isCommand()    {}
func (Weather) isCommand() {}
func (Fact) isCommand()    {}
func (WhoAmI) isCommand()  {}
func (Unknown) isCommand() {}

// Parse classifies input by exact match, or by the "!weather" prefix
// followed by whitespace and a city. The city keeps its case and inner
// spacing.
func Parse(input string) Command {
	trimmed := strings.TrimSpace(input)

	switch trimmed {
	case "!help":
		return Help{}
	case "!fact":
		return Fact{}
	case "!whoami":
		return WhoAmI{}
	case "!weather":
		return Weather{}
	}

	if rest, ok := strings.CutPrefix(trimmed, "!weather"); ok && startsWithSpace(rest) {
		return Weather{City: strings.TrimSpace(rest)}
	}

	return Unknown{Input: input}
}

func startsWithSpace(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && unicode.IsSpace(r)
}
