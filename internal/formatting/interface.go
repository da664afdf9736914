// Package formatting renders capabilities, research results and session
// reports for the CLI and the console.
//
// Every report can be rendered as a go-pretty table for humans or as JSON or
// YAML for scripts. JSON and YAML use the same field names.
package formatting

import (
	"fmt"
	"strings"

	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/execution"
	"github.com/giantswarm/sleuth/internal/session"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// ParseFormat validates a format name given on the command line.
func ParseFormat(name string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(name))) {
	case FormatTable, "":
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (supported: table, json, yaml)", name)
	}
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Color  bool // Enable colored output
}

// Formatter renders the reports produced by the research service.
type Formatter interface {
	FormatCapabilities(set *capability.Set) string
	FormatPlanResult(result *execution.PlanResult) string
	FormatRecord(record *session.Record) string
	FormatStatus(status session.StatusReport) string
	FormatSummary(summary session.Summary) string
	FormatSessions(sessions []session.Info) string
	FormatRecentQueries(queries []session.RecentQuery) string
}

// New creates the formatter for options.Format.
func New(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return &structuredFormatter{marshal: marshalJSON}
	case FormatYAML:
		return &structuredFormatter{marshal: marshalYAML}
	default:
		return NewTableFormatter(options)
	}
}
