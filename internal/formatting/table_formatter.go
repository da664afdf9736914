package formatting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/execution"
	"github.com/giantswarm/sleuth/internal/session"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	descriptionWidth = 60
	resultWidth      = 80
	timeLayout       = "2006-01-02 15:04:05"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) *TableFormatter {
	return &TableFormatter{
		options: options,
	}
}

// FormatCapabilities lists every capability of set with its parameters.
func (f *TableFormatter) FormatCapabilities(set *capability.Set) string {
	if set.Len() == 0 {
		return f.formatEmptyMessage("📋", "No capabilities discovered")
	}

	t := f.createTable()
	t.AppendHeader(f.header("KIND", "NAME", "DESCRIPTION", "PARAMETERS"))
	for _, c := range set.All() {
		t.AppendRow(table.Row{
			f.kind(c.Kind),
			c.Name,
			truncate(c.Description, descriptionWidth),
			strings.Join(parameterNames(c), ", "),
		})
	}

	counts := set.Counts()
	parts := make([]string, 0, len(capability.Kinds))
	for _, k := range capability.Kinds {
		parts = append(parts, fmt.Sprintf("%d %s", counts[k], k.Plural()))
	}
	t.AppendFooter(table.Row{"", "", strings.Join(parts, ", "), ""})

	return t.Render() + "\n"
}

// FormatPlanResult renders one row per step outcome.
func (f *TableFormatter) FormatPlanResult(result *execution.PlanResult) string {
	if result == nil || len(result.Outcomes) == 0 {
		return f.formatEmptyMessage("📋", "No steps executed")
	}

	t := f.createTable()
	t.AppendHeader(f.header("#", "STEP", "STATUS", "DURATION", "RESULT"))
	for i, o := range result.Outcomes {
		step := o.Step.String()
		if o.FallbackStep != nil {
			step += "\n↳ " + o.FallbackStep.String()
		}
		t.AppendRow(table.Row{
			i + 1,
			step,
			f.status(o.Status),
			o.Duration().Round(time.Millisecond).String(),
			outcomeText(o),
		})
	}
	t.AppendFooter(table.Row{"", "", session.FormatRate(result.SuccessCount, len(result.Outcomes)),
		result.Duration().Round(time.Millisecond).String(), ""})

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	if result.Cancelled {
		b.WriteString(f.color(text.FgYellow, "Run was cancelled before all steps completed.") + "\n")
	}
	if result.Aborted != "" {
		b.WriteString(f.color(text.FgRed, "Run aborted: "+result.Aborted) + "\n")
	}
	return b.String()
}

// FormatRecord renders the query, its step outcomes and the analysis.
func (f *TableFormatter) FormatRecord(record *session.Record) string {
	if record == nil {
		return f.formatEmptyMessage("📋", "No result")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", f.color(text.FgHiCyan, "Query:"), record.Query)
	if record.Plan != nil && record.Plan.Metadata["fallback"] == true {
		b.WriteString(f.color(text.FgYellow, "Planner unavailable, ran the basic search plan.") + "\n\n")
	}
	b.WriteString(f.FormatPlanResult(record.Result))

	if a := record.Analysis; a != nil {
		b.WriteString("\n")
		if a.Degraded {
			b.WriteString(f.color(text.FgYellow, "Analysis unavailable, showing raw results.") + "\n")
		} else {
			fmt.Fprintf(&b, "%s %.2f\n", f.color(text.FgHiCyan, "Quality:"), a.QualityScore)
		}
		f.writeList(&b, "Findings", a.Findings)
		f.writeList(&b, "Gaps", a.Gaps)
		f.writeList(&b, "Recommendations", a.Recommendations)
	}
	return b.String()
}

// FormatStatus renders the status of the current session as key/value rows.
func (f *TableFormatter) FormatStatus(status session.StatusReport) string {
	t := f.createTable()
	t.AppendHeader(f.header("KEY", "VALUE"))
	t.AppendRows([]table.Row{
		{"Session", status.SessionID},
		{"State", status.State},
		{"Queries", status.QueryCount},
		{"Successful", status.SuccessfulQueries},
		{"Failed", status.FailedQueries},
		{"Success rate", fmt.Sprintf("%.2f%%", status.SuccessRate)},
		{"Last query", orDash(status.LastQuery)},
		{"Last query time", formatTime(status.LastQueryTime)},
		{"Last saved", formatTime(status.LastSaved)},
	})
	for _, k := range capability.Kinds {
		t.AppendRow(table.Row{capitalize(k.Plural()), status.Capabilities[k]})
	}
	return t.Render() + "\n"
}

// FormatSummary renders the aggregate view of a session.
func (f *TableFormatter) FormatSummary(summary session.Summary) string {
	t := f.createTable()
	t.AppendHeader(f.header("KEY", "VALUE"))
	t.AppendRows([]table.Row{
		{"Session", summary.SessionID},
		{"Queries", summary.QueryCount},
		{"Successful", summary.SuccessfulQueries},
		{"Failed", summary.FailedQueries},
		{"Success rate", fmt.Sprintf("%.2f%%", summary.SuccessRate)},
		{"Duration", fmt.Sprintf("%.2fh", summary.DurationHours)},
		{"Capabilities used", orDash(strings.Join(summary.CapabilitiesUsed, ", "))},
	})

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	f.writeList(&b, "Top findings", summary.TopFindings)
	f.writeList(&b, "Recommendations", summary.Recommendations)
	return b.String()
}

// FormatSessions lists stored sessions.
func (f *TableFormatter) FormatSessions(sessions []session.Info) string {
	if len(sessions) == 0 {
		return f.formatEmptyMessage("📋", "No sessions found")
	}

	t := f.createTable()
	t.AppendHeader(f.header("ID", "CREATED", "UPDATED", "QUERIES", "SUCCESS RATE", "STATE"))
	for _, s := range sessions {
		t.AppendRow(table.Row{
			s.ID,
			formatTime(s.CreatedAt),
			formatTime(s.UpdatedAt),
			s.Stats.QueryCount,
			fmt.Sprintf("%.2f%%", s.Stats.RoundedSuccessRate()),
			orDash(string(s.Stats.State)),
		})
	}
	return t.Render() + "\n"
}

// FormatRecentQueries lists recent queries, newest first.
func (f *TableFormatter) FormatRecentQueries(queries []session.RecentQuery) string {
	if len(queries) == 0 {
		return f.formatEmptyMessage("📋", "No queries in this session yet")
	}

	t := f.createTable()
	t.AppendHeader(f.header("#", "QUERY", "RESULT", "FINDINGS"))
	for i, q := range queries {
		result := f.color(text.FgGreen, "succeeded")
		if !q.Succeeded {
			result = f.color(text.FgRed, "failed")
		}
		findings := make([]string, 0, len(q.Findings))
		for _, finding := range q.Findings {
			findings = append(findings, "• "+truncate(finding, descriptionWidth))
		}
		t.AppendRow(table.Row{i + 1, q.Query, result, orDash(strings.Join(findings, "\n"))})
	}
	return t.Render() + "\n"
}

// Helper methods

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func (f *TableFormatter) header(names ...string) table.Row {
	row := make(table.Row, 0, len(names))
	for _, n := range names {
		row = append(row, f.color(text.FgHiCyan, n))
	}
	return row
}

func (f *TableFormatter) color(c text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return c.Sprint(s)
}

func (f *TableFormatter) kind(k capability.Kind) string {
	switch k {
	case capability.KindTool:
		return f.color(text.FgBlue, string(k))
	case capability.KindResource:
		return f.color(text.FgMagenta, string(k))
	default:
		return f.color(text.FgCyan, string(k))
	}
}

func (f *TableFormatter) status(s execution.Status) string {
	switch s {
	case execution.StatusCompleted:
		return f.color(text.FgGreen, "✅ "+string(s))
	case execution.StatusCompletedWithFallback:
		return f.color(text.FgYellow, "⚠️ "+string(s))
	default:
		return f.color(text.FgRed, "❌ "+string(s))
	}
}

// formatEmptyMessage formats empty result messages
func (f *TableFormatter) formatEmptyMessage(icon, message string) string {
	return fmt.Sprintf("%s %s\n", f.color(text.FgYellow, icon), f.color(text.FgYellow, message))
}

func (f *TableFormatter) writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s\n", f.color(text.FgHiCyan, title+":"))
	for _, item := range items {
		fmt.Fprintf(b, "  • %s\n", item)
	}
}

// outcomeText is the one-line preview of the data or error of an outcome.
func outcomeText(o execution.StepOutcome) string {
	if o.Status.Succeeded() {
		return truncate(preview(o.Result()), resultWidth)
	}
	msg := o.Error
	if o.FallbackError != "" {
		msg += "; fallback: " + o.FallbackError
	}
	return truncate(msg, resultWidth)
}

func preview(data any) string {
	switch d := data.(type) {
	case nil:
		return ""
	case string:
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(d)); err == nil {
			return buf.String()
		}
		return strings.Join(strings.Fields(d), " ")
	default:
		out, err := json.Marshal(d)
		if err != nil {
			return fmt.Sprintf("%v", d)
		}
		return string(out)
	}
}

// parameterNames lists schema properties sorted by name, marking required ones with "*".
func parameterNames(c capability.Capability) []string {
	props, _ := c.Schema["properties"].(map[string]any)
	required := map[string]bool{}
	switch req := c.Schema["required"].(type) {
	case []any:
		for _, r := range req {
			if name, ok := r.(string); ok {
				required[name] = true
			}
		}
	case []string:
		for _, name := range req {
			required[name] = true
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		if required[name] {
			name += "*"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}
