package template

import (
	"bytes"
	"fmt"
	"strings"
	gotemplate "text/template"

	"github.com/Masterminds/sprig/v3"
)

// Engine renders Go templates with the sprig function library. It is used for
// mock provider responses and for the prompts sent to the language model.
type Engine struct {
	funcs gotemplate.FuncMap
}

// New creates a new template engine
func New() *Engine {
	return &Engine{funcs: sprig.TxtFuncMap()}
}

// Render executes text as a template against data. Referencing a key that
// is missing from a map is an error.
func (e *Engine) Render(name, text string, data any) (string, error) {
	tmpl, err := gotemplate.New(name).Funcs(e.funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// Replace renders every string found in value, descending into maps and
// slices. Other types are returned unchanged.
func (e *Engine) Replace(value interface{}, context map[string]interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		if !strings.Contains(v, "{{") {
			return v, nil
		}
		return e.Render("value", v, context)
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, item := range v {
			replaced, err := e.Replace(item, context)
			if err != nil {
				return nil, fmt.Errorf("error in key '%s': %w", key, err)
			}
			result[key] = replaced
		}
		return result, nil
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			replaced, err := e.Replace(item, context)
			if err != nil {
				return nil, fmt.Errorf("error at index %d: %w", i, err)
			}
			result[i] = replaced
		}
		return result, nil
	default:
		return value, nil
	}
}
