package validator

// Validator validates structs against their declared rules.
type Validator interface {
	Validate(data any) error
}
