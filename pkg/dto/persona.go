package dto

// DemographicInput carries a demographic create or patch. Pointer fields
// distinguish omitted from zero so a PATCH leaves untouched fields alone.
type DemographicInput struct {
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Language   *string  `json:"language,omitempty"`
	Country    *string  `json:"country,omitempty"`
	City       *string  `json:"city,omitempty"`
	Region     *string  `json:"region,omitempty"`
	Age        *int     `json:"age,omitempty"`
	Gender     *string  `json:"gender,omitempty"`
	Education  *string  `json:"education,omitempty"`
	Income     *string  `json:"income,omitempty"`
	Occupation *string  `json:"occupation,omitempty"`
}

type CreatePersonaRequest struct {
	Name          string            `json:"name" binding:"required"`
	Demographic   *DemographicInput `json:"demographic,omitempty"`
	Psychographic map[string]any    `json:"psychographic,omitempty"`
	Behavioral    map[string]any    `json:"behavioral,omitempty"`
	Contextual    map[string]any    `json:"contextual,omitempty"`
}

type UpdatePersonaRequest struct {
	Name          *string           `json:"name,omitempty"`
	Demographic   *DemographicInput `json:"demographic,omitempty"`
	Psychographic map[string]any    `json:"psychographic,omitempty"`
	Behavioral    map[string]any    `json:"behavioral,omitempty"`
	Contextual    map[string]any    `json:"contextual,omitempty"`
}

type PersonaListResponse struct {
	Personas []map[string]any `json:"personas"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
	Pages    int              `json:"pages"`
}

type ValidateRequest struct {
	Category string         `json:"category" binding:"required"`
	Data     map[string]any `json:"data"`
}

type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}
