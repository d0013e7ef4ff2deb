// Package ports defines interfaces for infrastructure operations.
// The reporter depends on these abstractions; infrastructure adapters
// implement them.
package ports
