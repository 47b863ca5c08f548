package integrations

import (
	"encoding/base64"
	"net/http"
	"strings"

	errs "github.com/Deva-here/ScribbleForge/pkg/errors"
)

// MaxImageBytes is the largest decoded image accepted for analysis.
const MaxImageBytes = 20 << 20

// Image is a decoded image payload.
type Image struct {
	MIMEType string
	Data     []byte
}

// ParseDataURI decodes a base64 data URI of the form
// "data:image/png;base64,iVBOR...". Only image media types are accepted.
// Errors carry errs.ErrCodeInvalidImage.
func ParseDataURI(uri string) (Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return Image{}, errs.New(errs.ErrCodeInvalidImage, "image must be a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, errs.New(errs.ErrCodeInvalidImage, "data URI has no payload")
	}

	params := strings.Split(meta, ";")
	mime := strings.ToLower(strings.TrimSpace(params[0]))
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	if !isBase64 {
		return Image{}, errs.New(errs.ErrCodeInvalidImage, "data URI must be base64 encoded")
	}
	if !strings.HasPrefix(mime, "image/") {
		return Image{}, errs.New(errs.ErrCodeInvalidImage, "unsupported media type %q", mime)
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+3 {
		return Image{}, errs.New(errs.ErrCodeInvalidImage, "image exceeds %d bytes", MaxImageBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, errs.Wrap(errs.ErrCodeInvalidImage, err, "decode image")
	}
	if len(data) == 0 {
		return Image{}, errs.New(errs.ErrCodeInvalidImage, "image is empty")
	}
	if len(data) > MaxImageBytes {
		return Image{}, errs.New(errs.ErrCodeInvalidImage, "image exceeds %d bytes", MaxImageBytes)
	}
	return Image{MIMEType: mime, Data: data}, nil
}

// EncodeDataURI builds a base64 data URI. An empty mime is sniffed from data.
func EncodeDataURI(mime string, data []byte) string {
	if mime == "" {
		mime = DetectImageType(data)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DataURI re-encodes the image as a data URI.
func (img Image) DataURI() string { return EncodeDataURI(img.MIMEType, img.Data) }

// Base64 returns the payload in standard base64.
func (img Image) Base64() string { return base64.StdEncoding.EncodeToString(img.Data) }

// DetectImageType sniffs the media type of data, falling back to
// application/octet-stream.
func DetectImageType(data []byte) string {
	mime, _, _ := strings.Cut(http.DetectContentType(data), ";")
	return mime
}
