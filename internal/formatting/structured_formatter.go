package formatting

import (
	"fmt"

	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/execution"
	"github.com/giantswarm/sleuth/internal/session"

	"sigs.k8s.io/yaml"
)

// structuredFormatter renders reports as JSON or YAML documents.
type structuredFormatter struct {
	marshal func(v any) string
}

func marshalJSON(v any) string {
	return PrettyJSON(v) + "\n"
}

// marshalYAML goes through the JSON tags so both formats share field names.
func marshalYAML(v any) string {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %q\n", err.Error())
	}
	return string(out)
}

func (f *structuredFormatter) FormatCapabilities(set *capability.Set) string {
	caps := set.All()
	if caps == nil {
		caps = []capability.Capability{}
	}
	counts := map[string]int{}
	for _, k := range capability.Kinds {
		counts[k.Plural()] = set.Counts()[k]
	}
	return f.marshal(map[string]any{
		"capabilities": caps,
		"counts":       counts,
	})
}

func (f *structuredFormatter) FormatPlanResult(result *execution.PlanResult) string {
	return f.marshal(result)
}

func (f *structuredFormatter) FormatRecord(record *session.Record) string {
	return f.marshal(record)
}

func (f *structuredFormatter) FormatStatus(status session.StatusReport) string {
	return f.marshal(status)
}

func (f *structuredFormatter) FormatSummary(summary session.Summary) string {
	return f.marshal(summary)
}

func (f *structuredFormatter) FormatSessions(sessions []session.Info) string {
	if sessions == nil {
		sessions = []session.Info{}
	}
	return f.marshal(map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (f *structuredFormatter) FormatRecentQueries(queries []session.RecentQuery) string {
	if queries == nil {
		queries = []session.RecentQuery{}
	}
	return f.marshal(map[string]any{
		"recentQueries": queries,
	})
}
