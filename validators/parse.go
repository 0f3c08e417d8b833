package validators

import (
	"strconv"
	"strings"
)

// parseThroughput extracts a requests/messages-per-second figure from free
// text like "10K RPS", "1,500 req/s", or "2.5M events/sec". Supports K/M/B
// suffixes and thousands separators. Returns 0, false if no number is
// found.
func parseThroughput(text string) (float64, bool) {
	text = strings.ToUpper(strings.ReplaceAll(text, ",", ""))
	var numBuilder strings.Builder
	var suffix byte
	seenDigit := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= '0' && c <= '9' || c == '.':
			numBuilder.WriteByte(c)
			seenDigit = true
		case seenDigit && (c == 'K' || c == 'M' || c == 'B'):
			suffix = c
			i = len(text) // stop scanning after the first suffix following digits
		case seenDigit:
			i = len(text)
		}
	}
	if !seenDigit {
		return 0, false
	}
	value, err := strconv.ParseFloat(numBuilder.String(), 64)
	if err != nil {
		return 0, false
	}
	switch suffix {
	case 'K':
		value *= 1_000
	case 'M':
		value *= 1_000_000
	case 'B':
		value *= 1_000_000_000
	}
	return value, true
}

// parsePercent extracts a percentage figure from free text like "99.99%" or
// "99.9 percent", returning the fraction (0-100 scale, not 0-1).
func parsePercent(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	var numBuilder strings.Builder
	seenDigit := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= '0' && c <= '9' || c == '.' {
			numBuilder.WriteByte(c)
			seenDigit = true
			continue
		}
		if seenDigit {
			break
		}
	}
	if !seenDigit {
		return 0, false
	}
	value, err := strconv.ParseFloat(numBuilder.String(), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// containsAny reports whether text (case-insensitively) contains any of
// tokens.
func containsAny(text string, tokens []string) bool {
	lower := strings.ToLower(text)
	for _, tok := range tokens {
		if strings.Contains(lower, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}

// componentText concatenates the fields of a component that free-text token
// search should scan: name, tech stack, scaling strategy, responsibility.
func componentText(c Component) string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString(" ")
	b.WriteString(strings.Join(c.TechStack, " "))
	b.WriteString(" ")
	b.WriteString(c.ScalingStrategy)
	b.WriteString(" ")
	b.WriteString(c.Responsibility)
	return b.String()
}

// artifactText concatenates every free-text field of an artifact, used by
// validators that search the whole design rather than one component.
func artifactText(a Artifact) string {
	var b strings.Builder
	b.WriteString(a.Overview)
	b.WriteString(" ")
	b.WriteString(a.NonFunctional.LatencyTargets)
	b.WriteString(" ")
	b.WriteString(a.NonFunctional.Throughput)
	b.WriteString(" ")
	b.WriteString(a.NonFunctional.DisasterRecovery)
	b.WriteString(" ")
	for _, td := range a.TechDecisions {
		b.WriteString(td.Decision)
		b.WriteString(" ")
		b.WriteString(td.Reasoning)
		b.WriteString(" ")
	}
	for _, c := range a.Components {
		b.WriteString(componentText(c))
		b.WriteString(" ")
	}
	return b.String()
}

// lookupBenchmark finds the throughput benchmark whose key appears in the
// component's tech stack text. When several keys match, the longest wins
// (so "mongodb" beats "go"), ties broken alphabetically.
func lookupBenchmark(c Component) (ThroughputBenchmark, bool) {
	text := strings.ToLower(strings.Join(c.TechStack, " "))
	best := ""
	for tech := range ThroughputBenchmarks {
		if strings.Contains(text, tech) && (len(tech) > len(best) || len(tech) == len(best) && tech < best) {
			best = tech
		}
	}
	if best == "" {
		return ThroughputBenchmark{}, false
	}
	return ThroughputBenchmarks[best], true
}

// lookupAvailability finds the availability figure matching the component's
// name, type, or tech stack, preferring a name/tech-stack match over a
// type-level default. When several keys match, the longest wins, ties
// broken alphabetically.
func lookupAvailability(c Component) (float64, bool) {
	text := strings.ToLower(c.Name + " " + strings.Join(c.TechStack, " "))
	best := ""
	for tech := range ComponentAvailability {
		if tech == c.Type || !strings.Contains(text, tech) {
			continue
		}
		if len(tech) > len(best) || len(tech) == len(best) && tech < best {
			best = tech
		}
	}
	if best != "" {
		return ComponentAvailability[best], true
	}
	if avail, ok := ComponentAvailability[c.Type]; ok {
		return avail, true
	}
	return 0, false
}
