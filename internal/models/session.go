package models

import "encoding/json"

// Session represents the operator's authenticated session.
//
// An empty Token means logged out. The session is created by a successful
// login, persisted so it survives process restarts, and destroyed on logout.
type Session struct {
	// Token is the opaque credential returned by the login endpoint.
	// It is attached as a bearer token to authenticated calls.
	Token string

	// User is the profile payload returned by the login endpoint.
	// The client never interprets it; it is stored and echoed back as-is.
	User json.RawMessage

	// Location is the selected site code. Empty means "use server default".
	Location string
}

// Authenticated reports whether the session holds a credential.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}
