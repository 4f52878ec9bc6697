// Package domain contains entity without logic, just meta-data
package domain

const (
	DefaultDisplayName = "Anonymous"
	MaxDisplayNameLen  = 64
)

// SessionID identifies one live connection. The transport assigns it and
// never reuses an id across connections.
type SessionID string

// MemberInfo is a read-only projection for room-users payloads.
type MemberInfo struct {
	ID   SessionID `json:"id"`
	Name string    `json:"name"`
}

// SanitizeDisplayName applies the display name defaults: empty becomes
// DefaultDisplayName, overly long names are truncated.
func SanitizeDisplayName(name string) string {
	if name == "" {
		return DefaultDisplayName
	}
	if len(name) > MaxDisplayNameLen {
		return name[:MaxDisplayNameLen]
	}
	return name
}
