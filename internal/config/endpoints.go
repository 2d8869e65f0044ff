package config

import (
	"fmt"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/contract-parity/parity-go/internal/parity"
)

// Document is the YAML endpoints file: which endpoints to compare, which
// field names to ignore, and how strict the CI gate is.
type Document struct {
	Environments *EnvironmentsDoc `yaml:"environments,omitempty"`
	Endpoints    []EndpointDoc    `yaml:"endpoints"`
	Ignore       []string         `yaml:"ignore,omitempty"`
	Gate         GateDoc          `yaml:"gate,omitempty"`
}

// EnvironmentsDoc optionally pins the two environments in the document
// itself; flags and env vars override it.
type EnvironmentsDoc struct {
	A EnvDoc `yaml:"a"`
	B EnvDoc `yaml:"b"`
}

// EnvDoc is one environment entry in the document.
type EnvDoc struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
}

// EndpointDoc is one endpoint entry in the document.
type EndpointDoc struct {
	Name        string `yaml:"name"`
	Method      string `yaml:"method,omitempty"`
	Path        string `yaml:"path"`
	Description string `yaml:"description,omitempty"`
}

// GateDoc tunes how the CI gate turns a report into an exit code.
type GateDoc struct {
	FailOnWarnings    bool     `yaml:"fail_on_warnings,omitempty"`
	MaxWarnings       int      `yaml:"max_warnings,omitempty"`
	RequiredEndpoints []string `yaml:"required_endpoints,omitempty"`
}

// LoadEndpointsFile reads and validates the endpoints document.
func LoadEndpointsFile(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read endpoints file: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config: parse endpoints file: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the document for the mistakes that would otherwise surface
// mid-run: missing endpoints, duplicate names, bodyless-method violations.
func (d *Document) Validate() error {
	if len(d.Endpoints) == 0 {
		return fmt.Errorf("config: endpoints file lists no endpoints")
	}
	seen := make(map[string]struct{}, len(d.Endpoints))
	for i, ep := range d.Endpoints {
		if ep.Name == "" {
			return fmt.Errorf("config: endpoint %d has no name", i)
		}
		if _, dup := seen[ep.Name]; dup {
			return fmt.Errorf("config: duplicate endpoint name %q", ep.Name)
		}
		seen[ep.Name] = struct{}{}
		if ep.Path == "" {
			return fmt.Errorf("config: endpoint %q has no path", ep.Name)
		}
		switch ep.Method {
		case "", http.MethodGet, http.MethodHead:
		default:
			return fmt.Errorf("config: endpoint %q: method %q not supported (GET or HEAD)", ep.Name, ep.Method)
		}
	}
	return nil
}

// Specs converts the document's endpoint entries into comparison specs,
// preserving document order.
func (d *Document) Specs() []parity.EndpointSpec {
	specs := make([]parity.EndpointSpec, 0, len(d.Endpoints))
	for _, ep := range d.Endpoints {
		specs = append(specs, parity.EndpointSpec{
			Name:        ep.Name,
			Method:      ep.Method,
			Path:        ep.Path,
			Description: ep.Description,
		})
	}
	return specs
}

// SpecsFor returns the specs for the named endpoints, rejecting names the
// document does not define. Empty names means every endpoint.
func (d *Document) SpecsFor(names []string) ([]parity.EndpointSpec, error) {
	specs := d.Specs()
	if len(names) == 0 {
		return specs, nil
	}
	byName := make(map[string]parity.EndpointSpec, len(specs))
	for _, spec := range specs {
		byName[spec.Name] = spec
	}
	selected := make([]parity.EndpointSpec, 0, len(names))
	for _, name := range names {
		spec, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("config: unknown endpoint %q", name)
		}
		selected = append(selected, spec)
	}
	return selected, nil
}
