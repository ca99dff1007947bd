// Package encoder builds the outbound detection request from a session.
package encoder

import (
	"context"
	"fmt"

	"rickshaw-client/internal/dto"
	"rickshaw-client/pkg/intake"
	"rickshaw-client/pkg/state"
	"rickshaw-client/pkg/store"
)

// EncodingError is a file read failure during data URI conversion.
type EncodingError struct {
	Cause error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: %v", intake.MsgReadFileFail, e.Cause)
}

func (e *EncodingError) Unwrap() error {
	return e.Cause
}

type Encoder struct {
	reader intake.DataURIReader
}

func New(reader intake.DataURIReader) *Encoder {
	return &Encoder{reader: reader}
}

// Encode produces exactly one of imageUrl / imageBase64 for the active input mode.
func (e *Encoder) Encode(ctx context.Context, s store.Session) (dto.AnalyzeRequest, error) {
	if err := state.Guard(s); err != nil {
		return dto.AnalyzeRequest{}, err
	}

	if s.InputMode == store.ModeUpload {
		uri, err := e.reader.ReadDataURI(ctx, s.ImageFile)
		if err != nil {
			return dto.AnalyzeRequest{}, &EncodingError{Cause: err}
		}
		return dto.AnalyzeRequest{ImageBase64: uri}, nil
	}

	return dto.AnalyzeRequest{ImageURL: intake.NormalizeURL(s.ImageURL)}, nil
}
