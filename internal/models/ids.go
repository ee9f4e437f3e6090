package models

import "github.com/google/uuid"

// NewID returns a prefixed UUID, e.g. "deal-3f2a...".
// Prefixes keep identifiers self-describing in logs and API payloads.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
