// Package imaging handles evidence-image intake and AI-backed editing.
// Images are never analyzed locally; they are carried as data URLs for
// display and forwarded to the edit model as raw bytes.
package imaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MIMEForFilename maps an image filename extension to its MIME type.
func MIMEForFilename(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// DataURL encodes raw image bytes as a displayable data URL.
func DataURL(name string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s",
		MIMEForFilename(name), base64.StdEncoding.EncodeToString(data))
}

// ParseDataURL splits a data URL back into its MIME type and raw bytes.
func ParseDataURL(u string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(u, "data:")
	if !ok {
		return "", nil, errors.New("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("malformed data URL")
	}
	mimeType = strings.TrimSuffix(meta, ";base64")
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL payload: %w", err)
	}
	return mimeType, data, nil
}
