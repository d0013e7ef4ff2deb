package entities

// ValidationResult represents the outcome of validating a document against a schema.
type ValidationResult struct {
	Errors []ValidationError `json:"errors,omitempty"`
	Valid  bool              `json:"valid"`
}

// ValidationError represents a specific validation error. Field is a JSON
// pointer into the validated document.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
