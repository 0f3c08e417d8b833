package validators

import "fmt"

// SchemaValidator checks the artifact carries every required top-level
// field, that components are well-formed, and that declared enums and
// figures are in range.
type SchemaValidator struct{}

func (v *SchemaValidator) Name() string { return "schema" }

func (v *SchemaValidator) Validate(a Artifact, requirements string) []Error {
	var errs []Error

	if a.Overview == "" {
		errs = append(errs, missingField("overview"))
	}
	if a.ArchitectureStyle == "" {
		errs = append(errs, missingField("architecture_style"))
	} else if !ArchitectureStyles[a.ArchitectureStyle] {
		errs = append(errs, Error{
			Code: "SCHEMA_INVALID_ENUM", Severity: SeverityMedium, Field: "architecture_style",
			Message: fmt.Sprintf("unknown architecture_style %q", a.ArchitectureStyle), Category: "reliability",
		})
	}
	if len(a.Components) == 0 {
		errs = append(errs, missingField("components"))
	}
	if (NonFunctional{}) == a.NonFunctional {
		errs = append(errs, missingField("non_functional"))
	}
	if len(a.TechDecisions) == 0 {
		errs = append(errs, missingField("tech_decisions"))
	}
	if a.Deployment.Strategy == "" && a.Deployment.Containerization == "" && len(a.Deployment.Regions) == 0 {
		errs = append(errs, missingField("deployment"))
	}

	for i, c := range a.Components {
		label := fmt.Sprintf("components[%d]", i)
		if c.Name == "" {
			errs = append(errs, Error{Code: "SCHEMA_MISSING_FIELD", Severity: SeverityMedium, Field: label + ".name", Message: "component missing name", Category: "reliability"})
		}
		if c.Type == "" {
			errs = append(errs, Error{Code: "SCHEMA_MISSING_FIELD", Severity: SeverityMedium, Component: c.Name, Field: label + ".type", Message: "component missing type", Category: "reliability"})
		} else if !ComponentTypes[c.Type] {
			errs = append(errs, Error{Code: "SCHEMA_INVALID_ENUM", Severity: SeverityMedium, Component: c.Name, Field: label + ".type", Message: fmt.Sprintf("unknown component type %q", c.Type), Category: "reliability"})
		}
		if c.Responsibility == "" {
			errs = append(errs, Error{Code: "SCHEMA_MISSING_FIELD", Severity: SeverityLow, Component: c.Name, Field: label + ".responsibility", Message: "component missing responsibility", Category: "reliability"})
		}
	}

	if a.NonFunctional.DataConsistency != "" && !DataConsistencyLevels[a.NonFunctional.DataConsistency] {
		errs = append(errs, Error{
			Code: "SCHEMA_INVALID_ENUM", Severity: SeverityMedium, Field: "non_functional.data_consistency",
			Message: fmt.Sprintf("unknown data_consistency %q", a.NonFunctional.DataConsistency), Category: "reliability",
		})
	}

	if a.NonFunctional.AvailabilityTarget != "" {
		pct, ok := parsePercent(a.NonFunctional.AvailabilityTarget)
		if !ok || pct < 90 || pct > 99.9999 {
			errs = append(errs, Error{
				Code: "SCHEMA_INVALID_AVAILABILITY", Severity: SeverityMedium, Field: "non_functional.availability_target",
				Message: fmt.Sprintf("availability_target %q is not parseable or out of range [90%%, 99.9999%%]", a.NonFunctional.AvailabilityTarget),
				Category: "reliability",
			})
		}
	}

	for i, td := range a.TechDecisions {
		if td.Reasoning == "" {
			errs = append(errs, Error{
				Code: "SCHEMA_MISSING_REASONING", Severity: SeverityLow,
				Field: fmt.Sprintf("tech_decisions[%d].reasoning", i), Message: fmt.Sprintf("tech decision %q has no reasoning", td.Decision),
				Category: "reliability",
			})
		}
	}

	return errs
}

func missingField(field string) Error {
	return Error{
		Code:     "SCHEMA_MISSING_FIELD",
		Severity: SeverityCritical,
		Field:    field,
		Message:  "required field " + field + " is missing",
		Category: "reliability",
	}
}
