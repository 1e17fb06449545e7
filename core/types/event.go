package types

// Event represents a structured state change accepted by the settlement
// core. Attributes are flat string pairs so downstream consumers (indexers,
// archivers) never need to understand domain types.
type Event struct {
	Type       string
	Attributes map[string]string
}
