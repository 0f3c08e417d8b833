package validators

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlDomainPatterns is the on-disk shape of a domain-pattern rule
// document: a plain list under a top-level "domains" key, so an operator
// can hand-author or generate one with any YAML tool.
type yamlDomainPatterns struct {
	Domains []struct {
		Name                string   `yaml:"name"`
		Keywords            []string `yaml:"keywords"`
		MandatoryPatterns   []string `yaml:"mandatory_patterns"`
		RecommendedPatterns []string `yaml:"recommended_patterns"`
		AntiPatterns        []string `yaml:"anti_patterns"`
	} `yaml:"domains"`
}

// LoadDomainPatternsYAML reads a domain-pattern rule document from path and
// returns it as the []DomainPattern shape the validator consumes. Callers
// typically append the result to BuiltinDomainPatterns so operator-supplied
// domains layer on top of the shipped ones.
func LoadDomainPatternsYAML(path string) ([]DomainPattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("validators.LoadDomainPatternsYAML: read %s: %w", path, err)
	}

	var doc yamlDomainPatterns
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("validators.LoadDomainPatternsYAML: parse %s: %w", path, err)
	}

	patterns := make([]DomainPattern, 0, len(doc.Domains))
	for _, d := range doc.Domains {
		patterns = append(patterns, DomainPattern{
			Name:                d.Name,
			Keywords:            d.Keywords,
			MandatoryPatterns:   d.MandatoryPatterns,
			RecommendedPatterns: d.RecommendedPatterns,
			AntiPatterns:        d.AntiPatterns,
		})
	}
	return patterns, nil
}

// WithOperatorDomains returns BuiltinDomainPatterns extended with any
// additional domains loaded from path. If path is empty, or loading fails,
// it logs nothing itself (callers are expected to log) and falls back to
// the built-in set alone.
func WithOperatorDomains(path string) []DomainPattern {
	if path == "" {
		return BuiltinDomainPatterns
	}
	extra, err := LoadDomainPatternsYAML(path)
	if err != nil {
		return BuiltinDomainPatterns
	}
	return append(append([]DomainPattern(nil), BuiltinDomainPatterns...), extra...)
}
