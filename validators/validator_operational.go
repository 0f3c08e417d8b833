package validators

import (
	"fmt"
	"strings"
)

// smallScaleTokens indicate the requirements describe a small or
// early-stage deployment, used to judge whether enterprise-grade
// infrastructure is overkill.
var smallScaleTokens = []string{"small", "mvp", "minimum viable product", "startup", "early stage", "prototype"}

// OperationalComplexityValidator flags designs whose operational surface
// (component count, enterprise-grade dependencies, region count) is larger
// than the requirements' declared scale justifies.
type OperationalComplexityValidator struct{}

func (v *OperationalComplexityValidator) Name() string { return "operational_complexity" }

func (v *OperationalComplexityValidator) Validate(a Artifact, requirements string) []Error {
	var errs []Error

	if len(a.Components) > 15 {
		errs = append(errs, Error{
			Code: "OPS_TOO_MANY_COMPONENTS", Severity: SeverityHigh,
			Message:  fmt.Sprintf("%d components is a large operational surface for a single design", len(a.Components)),
			Category: "operational",
		})
	}

	throughput, hasThroughput := parseThroughput(a.NonFunctional.Throughput)
	isSmallScale := containsAny(strings.ToLower(requirements), smallScaleTokens)
	isLowThroughput := hasThroughput && throughput < 1_000

	serviceCount := countByType(a.Components, "service")
	if serviceCount >= 8 && (isSmallScale || isLowThroughput) {
		errs = append(errs, Error{
			Code: "OPS_TOO_MANY_SERVICES_FOR_SCALE", Severity: SeverityMedium,
			Message:  fmt.Sprintf("%d service components for a small/MVP or sub-1k-RPS workload adds unjustified operational burden", serviceCount),
			Category: "operational",
		})
	}

	for _, c := range a.Components {
		text := strings.ToLower(componentText(c))
		if (strings.Contains(text, "kafka") || strings.Contains(text, "msk")) && hasThroughput && throughput < 10_000 {
			errs = append(errs, Error{
				Code: "OPS_KAFKA_LOW_THROUGHPUT", Severity: SeverityMedium, Component: c.Name,
				Message:    fmt.Sprintf("Kafka/MSK at a %.0f RPS target is disproportionate operational overhead", throughput),
				Suggestion: "consider a managed queue (SQS, a single Redis stream) until throughput justifies Kafka",
				Category:   "operational",
			})
		}
	}

	target, hasTarget := parsePercent(a.NonFunctional.AvailabilityTarget)
	if len(a.Deployment.Regions) >= 3 && (isSmallScale || isLowThroughput) && (!hasTarget || target < 99.99) {
		errs = append(errs, Error{
			Code: "OPS_TOO_MANY_REGIONS_FOR_SCALE", Severity: SeverityMedium,
			Message:  fmt.Sprintf("%d regions for an MVP/low-throughput workload below a 99.99%% target is unjustified", len(a.Deployment.Regions)),
			Category: "operational",
		})
	}

	enterpriseCount := 0
	for _, c := range a.Components {
		if containsAny(strings.ToLower(strings.Join(c.TechStack, " ")), EnterpriseServiceTokens) {
			enterpriseCount++
		}
	}
	if enterpriseCount >= 3 && (isSmallScale || isLowThroughput) {
		errs = append(errs, Error{
			Code: "OPS_TOO_MANY_ENTERPRISE_SERVICES", Severity: SeverityMedium,
			Message:  fmt.Sprintf("%d enterprise-class services for a small/low-throughput design adds unjustified operational burden", enterpriseCount),
			Category: "operational",
		})
	}

	return errs
}
