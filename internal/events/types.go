// Package events provides a unified pub/sub event bus for Floe.
// Configuration changes, commit results and gateway health all flow
// through this hub so the monitor loop and CLI observers see one stream.
package events

import "time"

// EventType identifies the category of event.
type EventType string

// Event types for all observability sources.
const (
	// Per-field-group configuration change events. One event is
	// published per field group that changed, not per element.
	EventConfigGateway     EventType = "ipconfig.gateway"
	EventConfigAddresses   EventType = "ipconfig.addresses"
	EventConfigRoutes      EventType = "ipconfig.routes"
	EventConfigNameservers EventType = "ipconfig.nameservers"
	EventConfigDomains     EventType = "ipconfig.domains"
	EventConfigSearches    EventType = "ipconfig.searches"
	EventConfigNISServers  EventType = "ipconfig.nis_servers"
	EventConfigWINSServers EventType = "ipconfig.wins_servers"

	// Commit events
	EventCommitApplied EventType = "commit.applied"

	// Gateway health events
	EventGatewayHealth EventType = "health.gateway"
)

// Event is the core message passed through the event bus.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"` // Component that emitted: "ipconfig", "commit", "health"
	Data      interface{} `json:"data"`   // Type-specific payload
}

// ──────────────────────────────────────────────────────────────────────────────
// Type-Specific Payloads
// ──────────────────────────────────────────────────────────────────────────────

// ConfigChangeData is the payload for the ipconfig.* change events.
type ConfigChangeData struct {
	Path  string `json:"path,omitempty"` // Export path, if the config has been exported
	Field string `json:"field"`          // "gateway", "addresses", "routes", ...
}

// CommitData is the payload for EventCommitApplied.
type CommitData struct {
	Interface string `json:"interface"`
	Ifindex   int    `json:"ifindex"`
	CommitID  string `json:"commit_id,omitempty"`
	Success   bool   `json:"success"`
	Addresses int    `json:"addresses"`
	Routes    int    `json:"routes"`
}

// GatewayHealthData is the payload for EventGatewayHealth.
type GatewayHealthData struct {
	Interface string `json:"interface"`
	Gateway   string `json:"gateway"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}
