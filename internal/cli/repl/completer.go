package repl

import (
	"sort"
	"strings"
)

var builtins = []string{"help", "history", "exit", "quit"}

// Completer suggests commands for a prefix. Typing "<prefix>?" in the
// shell prints the suggestions.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over the given command paths, such as
// "student add".
func NewCompleter(commands []string) *Completer {
	all := append(append([]string(nil), commands...), builtins...)
	sort.Strings(all)
	return &Completer{commands: all}
}

// Complete returns completion suggestions for the given prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
