package validators

import (
	"fmt"
	"strings"
)

// CapacityValidator checks declared throughput against per-technology
// reference benchmarks and flags missing scaling strategies.
type CapacityValidator struct{}

func (v *CapacityValidator) Name() string { return "capacity" }

func (v *CapacityValidator) Validate(a Artifact, requirements string) []Error {
	var errs []Error

	throughput, hasThroughput := parseThroughput(a.NonFunctional.Throughput)

	for _, c := range a.Components {
		bench, ok := lookupBenchmark(c)
		if !ok || !hasThroughput {
			continue
		}
		nodeCap := bench.PerNode
		if containsAny(strings.ToLower(componentText(c)), ScalingTokens) {
			nodeCap = bench.WithReplicas
		}
		if int(throughput) > nodeCap {
			errs = append(errs, Error{
				Code: "CAPACITY_THROUGHPUT_EXCEEDS_BENCHMARK", Severity: SeverityHigh, Component: c.Name,
				Message:  fmt.Sprintf("declared throughput %.0f exceeds the reference capacity of %d for %s", throughput, nodeCap, c.Name),
				Category: "scalability",
			})
		}
	}

	if hasThroughput && throughput >= 10_000 {
		text := strings.ToLower(artifactText(a))
		if !containsAny(text, []string{"auto-scal", "autoscal", "auto scal", "horizontal scal"}) {
			errs = append(errs, Error{
				Code: "CAPACITY_NO_AUTOSCALING", Severity: SeverityHigh,
				Message:  fmt.Sprintf("throughput target %.0f has no auto-scaling declared anywhere in the design", throughput),
				Category: "scalability",
			})
		}
	}

	for _, c := range a.Components {
		if c.Type != "service" && c.Type != "gateway" {
			continue
		}
		text := strings.ToLower(componentText(c))
		isSingleNode := containsAny(text, SingleInstanceTokens) || !containsAny(text, ScalingTokens)
		if hasThroughput && throughput >= 10_000 && isSingleNode {
			errs = append(errs, Error{
				Code: "CAPACITY_SINGLE_NODE_HIGH_THROUGHPUT", Severity: SeverityCritical, Component: c.Name,
				Message:  fmt.Sprintf("%s has no horizontal scaling at a %.0f throughput target", c.Name, throughput),
				Category: "scalability",
			})
		}
		if c.ScalingStrategy == "" && !containsAny(text, ScalingTokens) {
			errs = append(errs, Error{
				Code: "CAPACITY_NO_SCALING_STRATEGY", Severity: SeverityMedium, Component: c.Name,
				Message:  fmt.Sprintf("%s declares no scaling strategy", c.Name),
				Category: "scalability",
			})
		}
	}

	if hasThroughput {
		for _, c := range a.Components {
			if c.Type != "database" {
				continue
			}
			text := strings.ToLower(componentText(c))
			hasSharding := containsAny(text, ShardingTokens)
			if throughput >= 20_000 && !hasSharding {
				errs = append(errs, Error{
					Code: "CAPACITY_DB_NO_SHARDING", Severity: SeverityHigh, Component: c.Name,
					Message:  fmt.Sprintf("database %s has no sharding/partitioning at a %.0f throughput target", c.Name, throughput),
					Category: "scalability",
				})
			} else if throughput >= 5_000 && !hasSharding && isWriteHeavy(c) {
				errs = append(errs, Error{
					Code: "CAPACITY_WRITE_HEAVY_NO_PARTITION", Severity: SeverityMedium, Component: c.Name,
					Message:    fmt.Sprintf("write-heavy database %s at %.0f throughput has no partitioning", c.Name, throughput),
					Suggestion: "partition by a high-cardinality key to avoid write hotspots",
					Category:   "scalability",
				})
			}
		}
	}

	return errs
}

func isWriteHeavy(c Component) bool {
	return containsAny(strings.ToLower(c.Responsibility), []string{"write", "ingest", "log", "event store"})
}
