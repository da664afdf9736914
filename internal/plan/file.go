package plan

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Parse decodes a plan from YAML or JSON and normalizes its kinds.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	p.Normalize()
	return &p, nil
}

// LoadFile reads a plan file written in YAML or JSON.
func LoadFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ToYAML renders the plan as YAML.
func (p *Plan) ToYAML() ([]byte, error) {
	return yaml.Marshal(p)
}
