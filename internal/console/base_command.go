package console

import (
	"fmt"
	"strings"

	"github.com/giantswarm/sleuth/internal/formatting"
)

// baseCommand provides the dependencies shared by all console commands.
type baseCommand struct {
	service   Service
	output    *Output
	formatter formatting.Formatter
}

// parseArgs validates that at least minArgs arguments were given.
func (b *baseCommand) parseArgs(args []string, minArgs int, usage string) ([]string, error) {
	if len(args) < minArgs {
		return nil, fmt.Errorf("usage: %s", usage)
	}
	return args, nil
}

// joinArgsFrom joins arguments starting from index into a single string.
func (b *baseCommand) joinArgsFrom(args []string, index int) string {
	if index >= len(args) {
		return ""
	}
	return strings.Join(args[index:], " ")
}

// print writes pre-rendered formatter output.
func (b *baseCommand) print(rendered string) {
	b.output.Output("%s", rendered)
}

func (b *baseCommand) Completions(input string) []string {
	return []string{}
}

func (b *baseCommand) Aliases() []string {
	return []string{}
}

// stripQuotes removes surrounding single or double quotes from a string.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') ||
			(s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
