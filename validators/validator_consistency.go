package validators

import "strings"

// ConsistencyValidator checks that the declared data-consistency strategy
// is present, justified, and compatible with the deployment topology and
// the chosen data stores.
type ConsistencyValidator struct{}

func (v *ConsistencyValidator) Name() string { return "consistency" }

func (v *ConsistencyValidator) Validate(a Artifact, requirements string) []Error {
	var errs []Error

	consistency := a.NonFunctional.DataConsistency
	if consistency == "" {
		errs = append(errs, Error{
			Code: "CONSISTENCY_NO_STRATEGY", Severity: SeverityMedium,
			Message:  "no data consistency strategy declared",
			Category: "consistency",
		})
		return errs
	}

	switch consistency {
	case "eventual":
		text := strings.ToLower(artifactText(a))
		justified := false
		for _, td := range a.TechDecisions {
			lower := strings.ToLower(td.Reasoning)
			if strings.Contains(lower, "cap theorem") || strings.Contains(lower, "cap ") ||
				strings.Contains(lower, "consistency") || strings.Contains(lower, "tradeoff") || strings.Contains(lower, "trade-off") {
				justified = true
			}
		}
		_ = text
		if !justified {
			errs = append(errs, Error{
				Code: "CONSISTENCY_EVENTUAL_UNJUSTIFIED", Severity: SeverityMedium,
				Message:  "eventual consistency is chosen without a CAP/tradeoff justification in any tech decision",
				Category: "consistency",
			})
		}
	case "strong":
		if len(a.Deployment.Regions) > 1 {
			errs = append(errs, Error{
				Code: "CONSISTENCY_STRONG_MULTI_REGION", Severity: SeverityHigh,
				Message:  "strong consistency across a multi-region deployment incurs cross-region latency on every write",
				Category: "consistency",
			})
		}
		for _, c := range a.Components {
			if c.Type != "database" {
				continue
			}
			if containsAny(strings.ToLower(strings.Join(c.TechStack, " ")), keysOf(EventuallyConsistentDBs)) {
				errs = append(errs, Error{
					Code: "CONSISTENCY_STRONG_WITH_AP_DATABASE", Severity: SeverityCritical, Component: c.Name,
					Message:  "strong consistency declared alongside a database that does not offer it by default",
					Category: "consistency",
				})
			}
		}
	}

	return errs
}

func keysOf(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
