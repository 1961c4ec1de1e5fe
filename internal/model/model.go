package model

// Session is the server-side handle for one uploaded mechanism. Species and
// Equations keep the order the kinetics service returned them in; every later
// rate or plot response is decoded positionally against these two lists.
type Session struct {
	ID        string   `json:"id"`
	Species   []string `json:"species"`
	Equations []string `json:"equations"`
}

// PlotMode selects which swept-rate image the plot endpoint returns.
type PlotMode string

const (
	PlotModeReaction PlotMode = "reaction"
	PlotModeProgress PlotMode = "progress"
)

func (m PlotMode) Valid() bool {
	return m == PlotModeReaction || m == PlotModeProgress
}

// FormField describes one numeric concentration input in the species form.
// The form is the sole authority for which species names are legal request
// keys for the active session.
type FormField struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
}
