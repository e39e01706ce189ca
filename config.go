package secured

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// CONFIGURATION
// ============================================================================

// Config is the declarative form of an access-metadata table: the types and
// methods of a codebase together with the permissions attached to them, plus
// optional static identities for tooling and tests.
type Config struct {
	Version    uint16           `json:"version" yaml:"version"`
	Types      []TypeConfig     `json:"types" yaml:"types"`
	Methods    []MethodConfig   `json:"methods" yaml:"methods"`
	Identities []IdentityConfig `json:"identities,omitempty" yaml:"identities,omitempty"`
}

type TypeConfig struct {
	Name    string   `json:"name" yaml:"name"`
	Parents []string `json:"parents,omitempty" yaml:"parents,omitempty"`
	Secured []string `json:"secured,omitempty" yaml:"secured,omitempty"`
}

type MethodConfig struct {
	Type    string   `json:"type" yaml:"type"`
	Name    string   `json:"name" yaml:"name"`
	Secured []string `json:"secured,omitempty" yaml:"secured,omitempty"`
}

type IdentityConfig struct {
	Principal   string   `json:"principal" yaml:"principal"`
	Permissions []string `json:"permissions" yaml:"permissions"`
}

// ConfigLoader loads configuration from various formats
type ConfigLoader struct{}

func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

func (l *ConfigLoader) LoadYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *ConfigLoader) LoadJSON(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToYAML exports config to YAML
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// ToJSON exports config to JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Validate reports structural problems: unnamed elements, methods on
// undeclared types, and duplicate metadata declarations that would surface as
// ErrAmbiguousMetadata at lookup time.
func (c *Config) Validate() error {
	typeSecured := map[string]int{}
	declared := map[string]bool{}
	for _, t := range c.Types {
		if t.Name == "" {
			return fmt.Errorf("type with empty name")
		}
		declared[t.Name] = true
		if t.Secured != nil {
			typeSecured[t.Name]++
			if typeSecured[t.Name] > 1 {
				return fmt.Errorf("%w: type %s declared secured more than once", ErrAmbiguousMetadata, t.Name)
			}
		}
	}
	methodSecured := map[MethodRef]int{}
	for _, m := range c.Methods {
		if m.Type == "" || m.Name == "" {
			return fmt.Errorf("method with empty type or name")
		}
		if !declared[m.Type] {
			return fmt.Errorf("method %s.%s references undeclared type", m.Type, m.Name)
		}
		if m.Secured != nil {
			ref := MethodRef{Type: m.Type, Name: m.Name}
			methodSecured[ref]++
			if methodSecured[ref] > 1 {
				return fmt.Errorf("%w: method %s declared secured more than once", ErrAmbiguousMetadata, ref)
			}
		}
	}
	return nil
}

// BuildRegistry materializes the config into a Registry. Conflicting metadata
// declarations are registered as-is and surface on lookup, preserving the
// "find unique annotation" contract.
func (c *Config) BuildRegistry() *Registry {
	r := NewRegistry()
	for _, t := range c.Types {
		r.RegisterType(t.Name, t.Parents...)
		if t.Secured != nil {
			r.SecureType(t.Name, t.Secured...)
		}
	}
	for _, m := range c.Methods {
		ref := MethodRef{Type: m.Type, Name: m.Name}
		if m.Secured != nil {
			r.SecureMethod(ref, m.Secured...)
		} else {
			r.RegisterMethod(ref)
		}
	}
	return r
}

// SupplierFor returns an IdentitySupplier backed by the config's static
// identities, failing with ErrNoIdentity for unknown principals.
func (c *Config) SupplierFor(principal string) IdentitySupplier {
	return func() (*Identity, error) {
		for _, id := range c.Identities {
			if id.Principal == principal {
				return &Identity{Principal: id.Principal, Permissions: id.Permissions}, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrNoIdentity, principal)
	}
}
