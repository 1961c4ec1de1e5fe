package model

type UploadRequest struct {
	Data string `json:"data" binding:"required"`
}

// RateQueryRequest carries raw form values; parsing and range checks happen
// in the service before anything goes over the wire.
type RateQueryRequest struct {
	Concentrations map[string]string `json:"concentrations" binding:"required"`
	Temperature    string            `json:"_temp" binding:"required"`
}

type PlotQueryRequest struct {
	Concentrations map[string]string `json:"concentrations" binding:"required"`
	Temperature    string            `json:"_temp" binding:"required"`
	TLow           string            `json:"t_low" binding:"required"`
	THigh          string            `json:"t_high" binding:"required"`
	Mode           PlotMode          `json:"mode"`
}
