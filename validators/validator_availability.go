package validators

import (
	"fmt"
	"sort"
	"strings"
)

// componentTypesRequiringRedundancy are the component types the SPOF check
// applies to: types whose loss is assumed to halt the system unless
// explicitly designed around.
var componentTypesRequiringRedundancy = map[string]bool{
	"database": true, "cache": true, "gateway": true, "queue": true,
}

// AvailabilityValidator checks for single points of failure, computes a
// composite availability estimate across the serial request path, and
// flags topology choices inconsistent with a high-SLA target.
type AvailabilityValidator struct{}

func (v *AvailabilityValidator) Name() string { return "availability" }

func (v *AvailabilityValidator) Validate(a Artifact, requirements string) []Error {
	var errs []Error

	target, hasTarget := parsePercent(a.NonFunctional.AvailabilityTarget)

	// (a) SPOF detection by component type.
	for _, c := range a.Components {
		if !componentTypesRequiringRedundancy[c.Type] {
			continue
		}
		text := strings.ToLower(componentText(c))
		hasRedundancy := containsAny(text, RedundancyTokens)
		hasSingleMarker := containsAny(text, SingleInstanceTokens)
		if !hasRedundancy || hasSingleMarker {
			severity := SeverityHigh
			if hasTarget && target >= 99.9 {
				severity = SeverityCritical
			}
			errs = append(errs, Error{
				Code: "AVAIL_SPOF", Severity: severity, Component: c.Name,
				Message:    fmt.Sprintf("%s (%s) has no declared redundancy and is a single point of failure", c.Name, c.Type),
				Suggestion: "add clustering, replication, or failover for this component",
				Category:   "reliability",
			})
		}
	}

	// (b) Composite availability across the serial chain.
	if hasTarget && len(a.Components) > 0 {
		type contribution struct {
			name  string
			value float64
		}
		var contributions []contribution
		composite := 1.0
		for _, c := range a.Components {
			avail, ok := lookupAvailability(c)
			if !ok {
				continue
			}
			text := strings.ToLower(componentText(c))
			if containsAny(text, RedundancyTokens) {
				avail = 1 - (1-avail)*(1-avail)
			}
			composite *= avail
			contributions = append(contributions, contribution{name: c.Name, value: avail})
		}
		if len(contributions) > 0 {
			compositePct := composite * 100
			if compositePct < target {
				sort.Slice(contributions, func(i, j int) bool { return contributions[i].value < contributions[j].value })
				n := 3
				if len(contributions) < n {
					n = len(contributions)
				}
				evidence := make([]string, 0, n)
				for i := 0; i < n; i++ {
					evidence = append(evidence, fmt.Sprintf("%s (%.4f%%)", contributions[i].name, contributions[i].value*100))
				}
				errs = append(errs, Error{
					Code:     "AVAIL_COMPOSITE_BELOW_TARGET",
					Severity: SeverityCritical,
					Message:  fmt.Sprintf("computed composite availability %.2f%% is below the declared target %.2f%%", compositePct, target),
					Evidence: evidence,
					Category: "reliability",
				})
			}
		}
	}

	// (c) High-SLA topology.
	if hasTarget && target >= 99.99 {
		text := strings.ToLower(artifactText(a))
		mentionsMultiAZOrRegion := strings.Contains(text, "multi-az") || strings.Contains(text, "multi az") ||
			strings.Contains(text, "multi-region") || strings.Contains(text, "multi region")
		if !mentionsMultiAZOrRegion && len(a.Deployment.Regions) <= 1 {
			errs = append(errs, Error{
				Code: "AVAIL_HIGH_SLA_SINGLE_TOPOLOGY", Severity: SeverityCritical,
				Message:  fmt.Sprintf("availability target %.4f%% requires multi-AZ or multi-region topology; neither is declared", target),
				Category: "reliability",
			})
		}
	}

	// (d) Target >= 99.9% with an unreplicated database.
	if hasTarget && target >= 99.9 {
		for _, c := range a.Components {
			if c.Type != "database" {
				continue
			}
			text := strings.ToLower(componentText(c))
			if !containsAny(text, []string{"replica", "replication", "replicas"}) {
				errs = append(errs, Error{
					Code: "AVAIL_DB_NO_REPLICATION", Severity: SeverityHigh, Component: c.Name,
					Message:  fmt.Sprintf("database %s lacks replication at a %.2f%% availability target", c.Name, target),
					Category: "reliability",
				})
			}
		}
	}

	return errs
}
