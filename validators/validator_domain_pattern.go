package validators

import (
	"fmt"
	"strings"
)

// minDomainKeywordHits is the minimum keyword-match count for a domain to
// be considered the dominant domain for a given requirements text.
const minDomainKeywordHits = 2

// DomainPatternValidator detects the dominant application domain from the
// requirements text and checks the artifact against that domain's
// mandatory, recommended, and anti- patterns.
type DomainPatternValidator struct {
	Patterns []DomainPattern
}

func (v *DomainPatternValidator) Name() string { return "domain_pattern" }

func (v *DomainPatternValidator) Validate(a Artifact, requirements string) []Error {
	patterns := v.Patterns
	if patterns == nil {
		patterns = BuiltinDomainPatterns
	}

	domain, ok := detectDominantDomain(requirements, patterns)
	if !ok {
		return nil
	}

	var errs []Error
	text := strings.ToLower(artifactText(a))

	for _, pattern := range domain.MandatoryPatterns {
		if !patternPresent(a, text, pattern) {
			errs = append(errs, Error{
				Code: "DOMAIN_MISSING_MANDATORY_PATTERN", Severity: SeverityHigh,
				Message:  fmt.Sprintf("%s designs are expected to include %q; it is absent", domain.Name, pattern),
				Category: "operational",
			})
		}
	}
	for _, pattern := range domain.RecommendedPatterns {
		if !patternPresent(a, text, pattern) {
			errs = append(errs, Error{
				Code: "DOMAIN_MISSING_RECOMMENDED_PATTERN", Severity: SeverityLow,
				Message:  fmt.Sprintf("%s designs commonly include %q; it is absent", domain.Name, pattern),
				Category: "operational",
			})
		}
	}
	for _, pattern := range domain.AntiPatterns {
		if patternPresent(a, text, pattern) {
			errs = append(errs, Error{
				Code: "DOMAIN_ANTI_PATTERN_PRESENT", Severity: SeverityMedium,
				Message:  fmt.Sprintf("%s designs should avoid %q; it is present", domain.Name, pattern),
				Category: "operational",
			})
		}
	}

	return errs
}

// detectDominantDomain scores each domain's keyword list against the
// requirements text and returns the highest-scoring domain that meets the
// minimum hit threshold. Ties resolve to the first domain in pattern order.
func detectDominantDomain(requirements string, patterns []DomainPattern) (DomainPattern, bool) {
	lower := strings.ToLower(requirements)
	best := -1
	bestScore := 0
	for i, p := range patterns {
		score := 0
		for _, kw := range p.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	if best == -1 || bestScore < minDomainKeywordHits {
		return DomainPattern{}, false
	}
	return patterns[best], true
}

// patternPresent checks a pattern token against the design using whichever
// of the three documented strategies applies: a component-type match (the
// token names a known component type), a component/tech substring search,
// or a whole-design substring search.
func patternPresent(a Artifact, designText string, pattern string) bool {
	lowerPattern := strings.ToLower(pattern)
	if ComponentTypes[lowerPattern] {
		for _, c := range a.Components {
			if c.Type == lowerPattern {
				return true
			}
		}
	}
	for _, c := range a.Components {
		if strings.Contains(strings.ToLower(componentText(c)), lowerPattern) {
			return true
		}
	}
	return strings.Contains(designText, lowerPattern)
}
