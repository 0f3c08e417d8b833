package validators

import "strings"

// ContradictionValidator flags combinations of declared choices that are
// mutually inconsistent: an event-driven style with no broker, strong
// consistency with an eventually-consistent store, serverless with
// Kubernetes, and similar pairings.
type ContradictionValidator struct{}

func (v *ContradictionValidator) Name() string { return "contradiction" }

func (v *ContradictionValidator) Validate(a Artifact, requirements string) []Error {
	var errs []Error
	text := strings.ToLower(artifactText(a))

	if a.ArchitectureStyle == "event_driven" {
		hasBrokerToken := containsAny(text, MessageBrokerTokens)
		hasQueueComponent := false
		for _, c := range a.Components {
			if c.Type == "queue" {
				hasQueueComponent = true
			}
		}
		if !hasBrokerToken && !hasQueueComponent {
			errs = append(errs, Error{
				Code: "CONTRA_EVENT_DRIVEN_NO_BROKER", Severity: SeverityCritical,
				Message:  "architecture_style is event_driven but no message broker or queue component is present",
				Category: "consistency",
			})
		}
	}

	if a.NonFunctional.DataConsistency == "strong" {
		for _, c := range a.Components {
			if containsAny(strings.ToLower(strings.Join(c.TechStack, " ")), keysOf(EventuallyConsistentDBs)) {
				errs = append(errs, Error{
					Code: "CONTRA_STRONG_CONSISTENCY_AP_STORE", Severity: SeverityCritical, Component: c.Name,
					Message:  "strong consistency is declared but an eventually-consistent store is in the tech stack",
					Category: "consistency",
				})
			}
		}
	}

	if a.ArchitectureStyle == "serverless" && containsAny(text, KubernetesTokens) {
		errs = append(errs, Error{
			Code: "CONTRA_SERVERLESS_WITH_KUBERNETES", Severity: SeverityHigh,
			Message:  "architecture_style is serverless but Kubernetes is referenced in the design",
			Category: "consistency",
		})
	}

	if latencyTargetMs(a.NonFunctional.LatencyTargets) <= 100 {
		serviceCount := countByType(a.Components, "service")
		if serviceCount >= 6 {
			errs = append(errs, Error{
				Code: "CONTRA_LATENCY_TOO_MANY_HOPS", Severity: SeverityHigh,
				Message:  "p99 latency target of 100ms or less with 6 or more service components implies excessive hop cost",
				Category: "consistency",
			})
		}
	}

	if (strings.Contains(text, "multi-region") || strings.Contains(text, "multi region")) && len(a.Deployment.Regions) <= 1 {
		errs = append(errs, Error{
			Code: "CONTRA_NFR_MULTI_REGION_NOT_DEPLOYED", Severity: SeverityHigh,
			Message:  "non-functional requirements mention multi-region but deployment declares one region or fewer",
			Category: "consistency",
		})
	}

	componentCount := len(a.Components)
	if a.ArchitectureStyle == "microservices" && componentCount <= 2 {
		errs = append(errs, Error{
			Code: "CONTRA_MICROSERVICES_TOO_FEW", Severity: SeverityMedium,
			Message:  "architecture_style is microservices but only 2 or fewer components are declared",
			Category: "consistency",
		})
	}
	if a.ArchitectureStyle == "monolith" && componentCount >= 10 {
		errs = append(errs, Error{
			Code: "CONTRA_MONOLITH_TOO_MANY", Severity: SeverityMedium,
			Message:  "architecture_style is monolith but 10 or more components are declared",
			Category: "consistency",
		})
	}

	for _, c := range a.Components {
		ctext := strings.ToLower(componentText(c))
		if containsAny(ctext, StatelessTokens) && containsAny(ctext, LocalStateTokens) {
			errs = append(errs, Error{
				Code: "CONTRA_STATELESS_WITH_LOCAL_STATE", Severity: SeverityHigh, Component: c.Name,
				Message:  "component claims to be stateless while also describing local/session state",
				Category: "consistency",
			})
		}
	}

	return errs
}

func countByType(components []Component, t string) int {
	n := 0
	for _, c := range components {
		if c.Type == t {
			n++
		}
	}
	return n
}

// latencyTargetMs extracts a millisecond figure from free text like "p99 <
// 100ms". Returns a very large number if no figure is found, so callers
// comparing with <= never false-trigger on absent data.
func latencyTargetMs(text string) float64 {
	// Drop percentile markers so "p99" is not read as the figure.
	text = strings.ToLower(text)
	for _, marker := range []string{"p99.9", "p999", "p99", "p95", "p90", "p50"} {
		text = strings.ReplaceAll(text, marker, "")
	}
	value, ok := parsePercent(text)
	if !ok {
		return 1 << 30
	}
	return value
}
