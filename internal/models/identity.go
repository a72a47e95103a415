// internal/models/identity.go
package models

import "strings"

// Identity is the signed-in user as reported by the identity source. It is
// handed to the wizard once at construction.
type Identity struct {
	UserKey       string `json:"userKey"`
	Email         string `json:"email,omitempty"`
	Authenticated bool   `json:"authenticated"`
}

// Present reports whether drafts and submissions can be keyed by this identity.
func (i Identity) Present() bool {
	return i.Authenticated && strings.TrimSpace(i.UserKey) != ""
}
