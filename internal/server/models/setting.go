package models

import "time"

// Setting is one application-level key/value pair (site name, support
// email and the like), editable by admins at runtime.
type Setting struct {
	ID        string
	Key       string
	Value     string
	UpdatedAt time.Time
}
