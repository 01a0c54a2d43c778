package stack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Template is a CloudFormation document. Resources is always emitted, so an
// empty stack synthesizes to {"Resources": {}}.
type Template struct {
	Description string                      `json:"Description,omitempty" yaml:"Description,omitempty"`
	Resources   map[string]TemplateResource `json:"Resources" yaml:"Resources"`
	Outputs     map[string]Output           `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// TemplateResource is a resource as it appears in a template.
type TemplateResource struct {
	Type       Kind                   `json:"Type" yaml:"Type"`
	Properties map[string]interface{} `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn  []string               `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
}

// Format is the serialization used for the template file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a string into a Format
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("invalid template format %q: must be json or yaml", s)
	}
}

// Synth renders the stack as a template.
func (s *Stack) Synth() Template {
	t := Template{
		Description: s.Description,
		Resources:   make(map[string]TemplateResource, len(s.Resources)),
	}
	for _, r := range s.Resources {
		t.Resources[r.LogicalID] = TemplateResource{
			Type:       r.Kind,
			Properties: r.Properties,
			DependsOn:  r.DependsOn,
		}
	}
	if len(s.Outputs) > 0 {
		t.Outputs = s.Outputs
	}
	return t
}

// Marshal encodes the synthesized template.
func (s *Stack) Marshal(format Format) ([]byte, error) {
	t := s.Synth()
	switch format {
	case FormatYAML:
		return yaml.Marshal(t)
	case FormatJSON:
		data, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("invalid template format %q", format)
	}
}

// Manifest lists the synthesized stacks of a cloud assembly directory.
type Manifest struct {
	Version   string              `json:"version"`
	Artifacts map[string]Artifact `json:"artifacts"`
}

// Artifact describes one synthesized stack.
type Artifact struct {
	Type        string             `json:"type"`
	Environment string             `json:"environment"`
	Properties  ArtifactProperties `json:"properties"`
}

// ArtifactProperties locate an artifact's template.
type ArtifactProperties struct {
	TemplateFile string `json:"templateFile"`
}

// Environment renders the stack's target as aws://account/region, using
// the unknown-account and unknown-region placeholders for unset fields.
func (s *Stack) Environment() string {
	account, region := s.Env.Account, s.Env.Region
	if account == "" {
		account = "unknown-account"
	}
	if region == "" {
		region = "unknown-region"
	}
	return "aws://" + account + "/" + region
}

// Write validates the stack and writes its template and a manifest into
// dir. It returns the template path.
func (s *Stack) Write(dir string, format Format) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	data, err := s.Marshal(format)
	if err != nil {
		return "", fmt.Errorf("encoding template: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	name := s.Name + ".template." + string(format)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing template: %w", err)
	}

	manifest := Manifest{
		Version: "1",
		Artifacts: map[string]Artifact{
			s.Name: {
				Type:        "aws:cloudformation:stack",
				Environment: s.Environment(),
				Properties:  ArtifactProperties{TemplateFile: name},
			},
		},
	}
	mdata, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), append(mdata, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	return path, nil
}
