package domain

import "time"

// Category is a service category vendors can be listed under.
type Category struct {
	ID           string
	Name         string
	DisplayOrder int
	CreatedAt    time.Time
}
