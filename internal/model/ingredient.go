package model

// Ingredient is a reference catalogue entry. Identity is the (name,
// measurement_unit) pair: "milk"/"ml" and "milk"/"g" are distinct ingredients
// and are never merged, not even by the shopping-list aggregation.
type Ingredient struct {
	ID              string `json:"id"               db:"id"`
	Name            string `json:"name"             db:"name"`
	MeasurementUnit string `json:"measurement_unit" db:"measurement_unit"`
}
