// Package constants holds shared domain-level constant values.
package constants

// Pub/Sub provider selectors used in configuration.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)
