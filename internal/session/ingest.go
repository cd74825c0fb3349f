package session

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/ironsheep/vision-demo-mcp/internal/cverr"
	"github.com/ironsheep/vision-demo-mcp/internal/vision"
)

// InvalidImageMessage is shown when an upload is not an image.
const InvalidImageMessage = "Please select a valid image file."

// NewImageRef validates an upload and builds its ImageRef.
//
// declaredMIME is the type reported by the client. When it is empty or the
// generic "application/octet-stream", the type is sniffed from data. Any
// type outside image/* is rejected with a KindInvalidInput error.
func NewImageRef(name string, data []byte, declaredMIME string) (*vision.ImageRef, error) {
	if len(data) == 0 {
		return nil, cverr.New(cverr.KindInvalidInput, "ingest", InvalidImageMessage)
	}

	mimeType := strings.TrimSpace(declaredMIME)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(data).String()
	}
	if !strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return nil, cverr.New(cverr.KindInvalidInput, "ingest", InvalidImageMessage)
	}

	return &vision.ImageRef{
		ID:       uuid.NewString(),
		FileName: name,
		Size:     int64(len(data)),
		MimeType: mimeType,
		DataURI:  "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}

// ReadImageFile reads an image from disk and builds its ImageRef. The MIME
// type is sniffed from the content.
func ReadImageFile(path string) (*vision.ImageRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cverr.Wrap(cverr.KindInvalidInput, "ingest",
			fmt.Sprintf("failed to open image %s", filepath.Base(path)), err)
	}
	return NewImageRef(filepath.Base(path), data, "")
}
