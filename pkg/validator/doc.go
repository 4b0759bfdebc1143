// Package validator builds declarative validation rules for identity input.
//
// Each exported helper returns a Rule that pairs a Check with a field-level
// ValidationError. Apply evaluates any number of rules and aggregates the
// failures into ValidationErrors, which implements error:
//
//	err := validator.Apply(
//	    validator.ValidEmail("email", email),
//	    validator.StrongPassword("password", password, validator.DefaultPasswordStrength),
//	    validator.ValidCitizenID("citizen_id", citizenID),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//	    // verrs.Fields(), verrs.Get("email") ...
//	}
//
// Rules are pure functions of their arguments; the package holds no state.
// Optional fields are wrapped with When so that an empty value is skipped.
package validator
