package common

// Response of a count or a history cleanup.
type CountRes struct {
	Count int `json:"count" validate:"required,gte=0"` // Number of matching or affected entities.
}

// Response of a historic query.
type QueryRes[T any] struct {
	Count   int `json:"count" validate:"required,gte=0"` // Number of results.
	Results []T `json:"results" validate:"required"`     // Query results.
}
