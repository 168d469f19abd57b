package models

// PlaceRecord holds the extracted attributes of one discovered place.
//
// Name is always a defined value (possibly empty). Address, Website and
// PhoneNumber degrade to "" when the corresponding region is absent.
// Pointer fields distinguish "absent" from zero: a place with no review
// widget has ReviewsCount == nil, not zero. Latitude and Longitude are
// derived from one URL parse and are either both set or both nil.
type PlaceRecord struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Website        string   `json:"website"`
	PhoneNumber    string   `json:"phone_number"`
	ReviewsCount   *int     `json:"reviews_count,omitempty"`
	ReviewsAverage *float64 `json:"reviews_average,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
}

// RecordBatch is the ordered set of records produced for one query.
// Order equals discovery order; no uniqueness is enforced on Name.
type RecordBatch []PlaceRecord
