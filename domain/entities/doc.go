// Package entities provides the core domain types of the attribution SDK:
// account addresses, the tag format registry and attribution events.
// It has no knowledge of wire layouts or transports.
package entities
