package mapper

import (
	"rickshaw-client/internal/dto"
	"rickshaw-client/pkg/intake"
	"rickshaw-client/pkg/store"
	"rickshaw-client/pkg/verdict"
)

const (
	SubmitLabelIdle    = "Analyze Image"
	SubmitLabelLoading = "Analyzing"
)

type SessionMapper struct {
	configWarning string
}

func NewSessionMapper(configWarning string) *SessionMapper {
	return &SessionMapper{configWarning: configWarning}
}

func (m *SessionMapper) ToSnapshot(s store.Session) dto.SessionSnapshot {
	snap := dto.SessionSnapshot{
		Id:            s.ID,
		InputMode:     string(s.InputMode),
		Phase:         string(s.Phase),
		ImageURL:      s.ImageURL,
		ImagePreview:  s.ImagePreview,
		Loading:       s.Loading,
		Error:         s.Error,
		Result:        s.Result,
		Render:        verdict.Interpret(s.Result),
		SubmitLabel:   SubmitLabelIdle,
		CanSubmit:     !s.Loading,
		ConfigWarning: m.configWarning,
		UpdatedAt:     s.UpdatedAt,
	}

	if s.Loading {
		snap.SubmitLabel = SubmitLabelLoading
	}

	if s.InputMode == store.ModeUpload && s.ImageFile != nil {
		snap.File = &dto.FileInfo{
			Name:     s.ImageFile.Name,
			MimeType: s.ImageFile.MimeType,
			Size:     s.ImageFile.Size,
			Display:  intake.DisplaySize(s.ImageFile),
		}
	}

	return snap
}
