package llm

const plannerSystemPrompt = `You are a research planner. You turn a research query into a plan of calls
against the capabilities of a connected provider. You can only use the
capabilities listed by the user. Always answer by calling propose_plan.

Each step names a capability kind ("tool", "resource" or "prompt"), the
capability name exactly as listed, and its parameters. Resource steps must
pass the resource "uri" parameter. Fallback steps are alternatives used when
a step fails; a fallback replaces the first failed step of the same kind.`

const plannerUserPrompt = `Research query: {{ .Goal }}

Available capabilities:
{{- range .Capabilities }}
- {{ .Kind }} {{ .Name | quote }}
  {{- with .Description }}: {{ . | trunc 300 | replace "\n" " " }}{{ end }}
  {{- with .Parameters }}
  parameters: {{ join ", " . }}
  {{- end }}
{{- else }}
(none)
{{- end }}

Create a research plan that uses these capabilities effectively. Consider:
1. Which capabilities are most relevant
2. How to sequence the steps
3. What parameters to use
4. Potential fallback approaches`

const analyzerSystemPrompt = `You are a research analyst. You assess the results of an executed research
plan and report findings, data quality and what is missing. Always answer by
calling submit_analysis. qualityScore is a number between 0 and 1.`

const analyzerUserPrompt = `Research query: {{ .Goal }}

Results ({{ .SuccessCount }} of {{ len .Steps }} steps succeeded{{ if .Aborted }}, run aborted: {{ .Aborted }}{{ end }}{{ if .Cancelled }}, run cancelled{{ end }}):
{{- range $i, $s := .Steps }}

Step {{ add1 $i }}: {{ $s.Step }} [{{ $s.Status }}]
{{- with $s.Fallback }}
Fallback used: {{ . }}
{{- end }}
{{- with $s.Error }}
Error: {{ . }}
{{- end }}
{{- with $s.Data }}
Data:
{{ . | trunc 2000 }}
{{- end }}
{{- end }}

Provide a detailed analysis including:
1. Key findings from successful steps
2. Impact of any failures
3. Quality of the data collected
4. Suggestions for improvement`
