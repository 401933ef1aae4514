package domain

import "time"

// Tour is a bookable excursion. ID and CreatedAt are assigned by the store.
type Tour struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Location    string    `json:"location"`
	ImageURLs   []string  `json:"image_urls"`
	Duration    *string   `json:"duration,omitempty"`
	Includes    []string  `json:"includes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTour is the insert payload for a tour.
type NewTour struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Price       float64  `json:"price" yaml:"price"`
	Location    string   `json:"location" yaml:"location"`
	ImageURLs   []string `json:"image_urls" yaml:"image_urls"`
	Duration    *string  `json:"duration,omitempty" yaml:"duration"`
	Includes    []string `json:"includes,omitempty" yaml:"includes"`
}

// Validate checks the fields an administrator must supply.
func (t NewTour) Validate() error {
	v := &ValidationError{}
	if t.Name == "" {
		v.Add("name", "required")
	}
	if t.Location == "" {
		v.Add("location", "required")
	}
	if t.Price < 0 {
		v.Add("price", "must not be negative")
	}
	return v.OrNil()
}
