package ports

// ConfigParser decodes raw configuration file bytes into out.
type ConfigParser interface {
	// Parse unmarshals data into the struct pointed to by out.
	Parse(data []byte, out any) error
}
