// Package intake accepts user input for an analysis: an image URL or an uploaded image file.
package intake

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"rickshaw-client/pkg/store"
)

const MaxImageSize = 10 * 1024 * 1024

const (
	MsgEnterURL     = "Please enter an image URL"
	MsgSelectImage  = "Please select an image file"
	MsgImageTooBig  = "Image size must be less than 10MB"
	MsgReadFileFail = "Failed to read image file"
)

// ValidationError is a local input problem. It never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NormalizeURL trims surrounding whitespace. An empty result means "no URL".
func NormalizeURL(raw string) string {
	return strings.TrimSpace(raw)
}

// ValidateFile checks the MIME type and size of a picked file.
func ValidateFile(mimeType string, size int64) error {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/") {
		return &ValidationError{Field: "image_file", Message: MsgSelectImage}
	}
	if size > MaxImageSize {
		return &ValidationError{Field: "image_file", Message: MsgImageTooBig}
	}
	return nil
}

// ReadFile reads an uploaded part into an ImageFile after validating its header data.
// The declared size is checked before reading so oversized files are never buffered.
func ReadFile(name, mimeType string, size int64, r io.Reader) (*store.ImageFile, error) {
	if err := ValidateFile(mimeType, size); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(content)) > MaxImageSize {
		return nil, &ValidationError{Field: "image_file", Message: MsgImageTooBig}
	}

	return &store.ImageFile{
		Name:     name,
		MimeType: mimeType,
		Size:     int64(len(content)),
		Content:  content,
	}, nil
}

// DataURIReader turns an accepted file into a data URI.
type DataURIReader interface {
	ReadDataURI(ctx context.Context, file *store.ImageFile) (string, error)
}

// Base64Reader streams the file content through a base64 encoder.
type Base64Reader struct{}

func NewBase64Reader() *Base64Reader {
	return &Base64Reader{}
}

func (r *Base64Reader) ReadDataURI(ctx context.Context, file *store.ImageFile) (string, error) {
	if file == nil {
		return "", fmt.Errorf("no file selected")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(file.Content) == 0 {
		return "", fmt.Errorf("file %q is empty", file.Name)
	}
	if int64(len(file.Content)) != file.Size {
		return "", fmt.Errorf("file %q is truncated: read %d of %d bytes", file.Name, len(file.Content), file.Size)
	}

	var buf strings.Builder
	buf.Grow(len("data:;base64,") + len(file.MimeType) + base64.StdEncoding.EncodedLen(len(file.Content)))
	buf.WriteString("data:")
	buf.WriteString(file.MimeType)
	buf.WriteString(";base64,")

	enc := base64.NewEncoder(base64.StdEncoding, &buf)
	if _, err := io.Copy(enc, bytes.NewReader(file.Content)); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// DisplaySize renders a file line as "<name> (<n> KB)".
func DisplaySize(file *store.ImageFile) string {
	if file == nil {
		return ""
	}
	return fmt.Sprintf("%s (%d KB)", file.Name, (file.Size+512)/1024)
}
