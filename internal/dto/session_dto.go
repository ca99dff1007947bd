package dto

import (
	"time"

	"github.com/google/uuid"
)

// SessionSnapshot is what the page and the live stream see of a session.
type SessionSnapshot struct {
	Id            uuid.UUID         `json:"id"`
	InputMode     string            `json:"input_mode"`
	Phase         string            `json:"phase"`
	ImageURL      string            `json:"image_url"`
	File          *FileInfo         `json:"file,omitempty"`
	ImagePreview  string            `json:"image_preview,omitempty"`
	Loading       bool              `json:"loading"`
	Error         string            `json:"error,omitempty"`
	Result        *AnalysisResponse `json:"result,omitempty"`
	Render        *RenderModel      `json:"render,omitempty"`
	SubmitLabel   string            `json:"submit_label"`
	CanSubmit     bool              `json:"can_submit"`
	ConfigWarning string            `json:"config_warning,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type FileInfo struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Display  string `json:"display"` // "<name> (<n> KB)"
}

// RenderModel is the display-ready form of an AnalysisResponse, built by pkg/verdict.
type RenderModel struct {
	Kind    string       `json:"kind"`
	Verdict *VerdictView `json:"verdict,omitempty"`
	Labels  []LabelView  `json:"labels,omitempty"`
	Text    *TextView    `json:"text,omitempty"`
	Notice  string       `json:"notice,omitempty"`
	Failure *FailureView `json:"failure,omitempty"`
}

type VerdictView struct {
	Positive    bool   `json:"positive"`
	Headline    string `json:"headline"`
	Confidence  string `json:"confidence,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

type LabelView struct {
	Name       string `json:"name"`
	Confidence string `json:"confidence,omitempty"`
}

type TextView struct {
	Heading string `json:"heading"`
	Value   string `json:"value"`
	Note    string `json:"note,omitempty"`
}

type FailureView struct {
	Message string `json:"message"`
}

// LiveEvent is pushed over the WebSocket for every session transition.
type LiveEvent struct {
	Type    string          `json:"type"`
	CycleId string          `json:"cycle_id,omitempty"`
	Data    SessionSnapshot `json:"data"`
}
