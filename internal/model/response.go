package model

// RateReport is the human-readable rendering of one rates snapshot. Reaction
// lines pair progress rates with equation text, species lines pair reaction
// rates with species names. Coefficient lines are present only when the
// service included rate coefficients in its response.
type RateReport struct {
	ReactionLines    []string `json:"reaction_lines"`
	SpeciesLines     []string `json:"species_lines"`
	CoefficientLines []string `json:"coefficient_lines,omitempty"`
}

// PlotView is the one plot currently on display. Showing a plot for one mode
// replaces whatever the other mode had up.
type PlotView struct {
	Mode  PlotMode `json:"mode"`
	Image string   `json:"image"` // base64 PNG straight from the service
}

type SessionResponse struct {
	SessionID string      `json:"session_id"`
	Species   []string    `json:"species"`
	Equations []string    `json:"equations"`
	Form      []FormField `json:"form"`
}
