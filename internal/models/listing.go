// internal/models/listing.go
package models

// Listing is a business listing row as stored.
// PhoneNumber is free-form as stored; canonicalize only at comparison time.
type Listing struct {
	ID             int64    `json:"id" db:"id"`
	Name           string   `json:"name" db:"name"`
	Address        string   `json:"address" db:"address"`
	PhoneNumber    string   `json:"phoneNumber" db:"phone_number"`
	Website        string   `json:"website" db:"website"`
	Category       string   `json:"category" db:"category"`
	Subcategory    string   `json:"subcategory" db:"subcategory"`
	City           string   `json:"city" db:"city"`
	State          string   `json:"state" db:"state"`
	Area           string   `json:"area" db:"area"`
	ReviewsCount   int      `json:"reviewsCount" db:"reviews_count"`
	ReviewsAverage *float64 `json:"reviewsAverage,omitempty" db:"reviews_average"`
	CreatedAt      string   `json:"createdAt" db:"created_at"`
}

// ListingInput carries the fields accepted by the insert contract.
type ListingInput struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
	Website     string `json:"website"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	City        string `json:"city"`
	State       string `json:"state"`
	Area        string `json:"area"`
}

// AllowedUpdateFields is the fixed allow-list for the update contract.
// Unknown fields are silently dropped, not errors.
var AllowedUpdateFields = map[string]bool{
	"name":         true,
	"address":      true,
	"phone_number": true,
	"website":      true,
	"category":     true,
	"subcategory":  true,
	"area":         true,
	"city":         true,
	"state":        true,
}

// OnlineResult is a normalized row from the external search collaborator.
// Providers emit heterogeneous field names; coalescing happens at decode time.
type OnlineResult struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	PhoneNumber    string   `json:"phoneNumber"`
	Category       string   `json:"category"`
	ReviewsCount   int      `json:"reviewsCount"`
	ReviewsAverage *float64 `json:"reviewsAverage,omitempty"`
	Source         string   `json:"source,omitempty"`
}
