package validators

import (
	"fmt"
	"sort"

	"github.com/archadvisor/archadvisor/core"
)

// categoryCap is the maximum score contribution of one scoring category.
var categoryCap = map[string]int{
	"reliability": 30,
	"scalability": 25,
	"consistency": 15,
	"security":    15,
	"operational": 15,
}

// penaltyWeights maps severity -> category -> points subtracted. Categories
// not listed for a severity fall back to the "default" entry.
var penaltyWeights = map[Severity]map[string]int{
	SeverityCritical: {"reliability": 15, "scalability": 12, "consistency": 8, "security": 8, "operational": 8, "default": 8},
	SeverityHigh:     {"reliability": 8, "scalability": 6, "consistency": 5, "security": 5, "operational": 5, "default": 5},
	SeverityMedium:   {"reliability": 4, "scalability": 3, "consistency": 3, "security": 3, "operational": 3, "default": 3},
	SeverityLow:      {"default": 1},
}

// PassScoreThreshold is the minimum total score for a report to pass, given
// zero critical findings.
const PassScoreThreshold = 60

// Summary carries finding counts by severity.
type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Report is the output of running the validator chain once.
type Report struct {
	Passed         bool           `json:"passed"`
	Score          int            `json:"score"`
	ScoreBreakdown map[string]int `json:"score_breakdown"`
	Summary        Summary        `json:"summary"`
	Errors         []Error        `json:"errors"`
	Verdict        string         `json:"verdict"`
}

// Engine runs the validator chain and scores the result. It is bounded to
// a cumulative budget of a few milliseconds per invocation; every
// validator is expected to be deterministic and side-effect free.
type Engine struct {
	chain  []Validator
	logger core.Logger
}

// NewEngine builds an Engine from the given validator chain.
func NewEngine(chain []Validator, logger core.Logger) *Engine {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &Engine{chain: chain, logger: logger}
}

// Run executes every validator in the chain against artifact, isolating
// any validator that panics: a panicking validator is recorded as a
// MEDIUM schema finding and the remaining validators still run. previous,
// if non-nil, enables context-aware mode: the verdict is amended with a
// warning listing critical error codes present in both reports.
func (e *Engine) Run(artifact Artifact, requirements string, previous *Report) *Report {
	var all []Error

	for _, validator := range e.chain {
		all = append(all, e.runOne(validator, artifact, requirements)...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Severity.rank() < all[j].Severity.rank()
	})

	breakdown := scoreBreakdown(all)
	score := 0
	summary := Summary{}
	for _, err := range all {
		switch err.Severity {
		case SeverityCritical:
			summary.Critical++
		case SeverityHigh:
			summary.High++
		case SeverityMedium:
			summary.Medium++
		case SeverityLow:
			summary.Low++
		}
	}
	for _, v := range breakdown {
		score += v
	}

	passed := summary.Critical == 0 && score >= PassScoreThreshold

	report := &Report{
		Passed:         passed,
		Score:          score,
		ScoreBreakdown: breakdown,
		Summary:        summary,
		Errors:         all,
	}
	report.Verdict = buildVerdict(report, previous)
	return report
}

// runOne runs a single validator, converting a panic into a MEDIUM schema
// finding so one faulty validator never prevents the report from being
// produced.
func (e *Engine) runOne(validator Validator, artifact Artifact, requirements string) (result []Error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("validator panicked", map[string]interface{}{
				"validator": validator.Name(),
				"panic":     fmt.Sprintf("%v", r),
			})
			result = []Error{{
				Code:     "SCHEMA_INVALID_TYPE",
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("Validator '%s' crashed: %v", validator.Name(), r),
				Category: "reliability",
			}}
		}
	}()
	return validator.Validate(artifact, requirements)
}

func scoreBreakdown(errs []Error) map[string]int {
	breakdown := make(map[string]int, len(categoryCap))
	for category, categoryMax := range categoryCap {
		breakdown[category] = categoryMax
	}
	for _, err := range errs {
		category := err.Category
		if _, ok := breakdown[category]; !ok {
			category = "operational"
		}
		weights := penaltyWeights[err.Severity]
		penalty, ok := weights[category]
		if !ok {
			penalty = weights["default"]
		}
		breakdown[category] -= penalty
		if breakdown[category] < 0 {
			breakdown[category] = 0
		}
	}
	return breakdown
}

func buildVerdict(report *Report, previous *Report) string {
	var verdict string
	switch {
	case report.Passed && report.Score >= 80:
		verdict = fmt.Sprintf("PASS — Strong design (score: %d/100). Ready for review.", report.Score)
	case report.Passed:
		verdict = fmt.Sprintf("PASS — Acceptable design (score: %d/100) with %d high-severity findings to address.", report.Score, report.Summary.High)
	case report.Summary.Critical > 0:
		verdict = fmt.Sprintf("FAIL — %d critical issue(s) must be resolved before review. Score: %d/100.", report.Summary.Critical, report.Score)
	default:
		verdict = fmt.Sprintf("FAIL — Score %d/100 is below threshold (%d). Address high-severity findings.", report.Score, PassScoreThreshold)
	}

	if previous == nil {
		return verdict
	}

	prevCritical := make(map[string]bool)
	for _, err := range previous.Errors {
		if err.Severity == SeverityCritical {
			prevCritical[err.Code] = true
		}
	}
	var persistent []string
	for _, err := range report.Errors {
		if err.Severity == SeverityCritical && prevCritical[err.Code] {
			persistent = append(persistent, err.Code)
		}
	}
	if len(persistent) > 0 {
		verdict += fmt.Sprintf(" Warning: persistent critical findings across revisions: %v.", persistent)
	}
	return verdict
}
