package models

// Visitor is the anonymous identity kept in the session cookie.
type Visitor struct {
	ID string
}
