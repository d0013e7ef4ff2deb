package ports

// BodyValidator checks a raw JSON submission body before it leaves the process.
type BodyValidator interface {
	// Validate returns nil when body conforms to the submission schema.
	Validate(body []byte) error
}
