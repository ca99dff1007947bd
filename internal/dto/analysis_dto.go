package dto

// AnalyzeRequest is the body POSTed to the detection endpoint.
// Exactly one of the two fields is set.
type AnalyzeRequest struct {
	ImageURL    string `json:"imageUrl,omitempty"`
	ImageBase64 string `json:"imageBase64,omitempty"`
}

// AnalysisResponse is the verdict returned by the detection endpoint.
// Pointer fields distinguish "absent" from zero values.
type AnalysisResponse struct {
	Success            bool               `json:"success"`
	Message            string             `json:"message,omitempty"`
	Data               string             `json:"data,omitempty"` // extracted value, e.g. number plate text
	Error              string             `json:"error,omitempty"`
	Labels             []string           `json:"labels,omitempty"`
	LabelConfidence    map[string]float64 `json:"labelConfidence,omitempty"`
	IsRickshaw         *bool              `json:"isRickshaw,omitempty"`
	RickshawConfidence *float64           `json:"rickshawConfidence,omitempty"`
}

type SwitchModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=url upload"`
}

type SetImageURLRequest struct {
	ImageURL string `json:"image_url" validate:"max=8192"`
}

// SubmitRequest optionally carries the URL as typed, so a submit never races the
// URL field's own update.
type SubmitRequest struct {
	ImageURL *string `json:"image_url" validate:"omitempty,max=8192"`
}
