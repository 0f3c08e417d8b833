package validators

import (
	"fmt"
	"strings"
)

// MissingRequirementValidator checks, for each known capability, whether
// the requirements text suggests the caller expects it but no component or
// non-functional field reflects it.
type MissingRequirementValidator struct{}

func (v *MissingRequirementValidator) Name() string { return "missing_requirement" }

func (v *MissingRequirementValidator) Validate(a Artifact, requirements string) []Error {
	var errs []Error
	lowerReq := strings.ToLower(requirements)
	designText := strings.ToLower(artifactText(a))

	capabilities := make([]string, 0, len(RequirementComponentMap))
	for name := range RequirementComponentMap {
		capabilities = append(capabilities, name)
	}
	// Deterministic order so findings are stable across runs for the same
	// input.
	sortStrings(capabilities)

	for _, name := range capabilities {
		rule := RequirementComponentMap[name]
		if !containsAny(lowerReq, rule.Keywords) {
			continue
		}
		if containsAny(designText, rule.Keywords) {
			continue
		}
		errs = append(errs, Error{
			Code:     "MISSING_REQUIREMENT_" + strings.ToUpper(name),
			Severity: rule.Severity,
			Message:  fmt.Sprintf("requirements mention %s but no component or non-functional field addresses it", name),
			Category: rule.Category,
		})
	}
	return errs
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
