package dto

type FiltersResponse struct {
	AgeMin           int      `json:"age_min"`
	AgeMax           int      `json:"age_max"`
	MaxDistanceMiles int      `json:"max_distance_miles"`
	Ethnicities      []string `json:"ethnicities"`
}

type SaveFiltersRequest struct {
	AgeMin           int      `json:"age_min"`
	AgeMax           int      `json:"age_max"`
	MaxDistanceMiles int      `json:"max_distance_miles"`
	Ethnicities      []string `json:"ethnicities"`
}
