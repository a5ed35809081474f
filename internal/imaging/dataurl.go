package imaging

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// MaxEncodedLen bounds the stored data URL size.
const MaxEncodedLen = 5 << 20

// ProcessDataURL decodes a base64 data URL, validates and normalizes
// the payload, and re-encodes the result as a data URL ready for
// storage on a tool photo or fuel receipt. The declared media type is
// honored so accepted formats the byte sniffer cannot recognize still
// pass through.
func ProcessDataURL(raw string) (string, error) {
	if len(raw) > MaxEncodedLen {
		return "", fmt.Errorf("image too large: %d bytes (max %d)", len(raw), MaxEncodedLen)
	}

	payload, ok := strings.CutPrefix(raw, "data:")
	if !ok {
		return "", fmt.Errorf("not a data URL")
	}
	meta, encoded, ok := strings.Cut(payload, ",")
	if !ok {
		return "", fmt.Errorf("malformed data URL")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return "", fmt.Errorf("data URL must be base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decoding data URL: %w", err)
	}

	mime := strings.TrimSuffix(meta, ";base64")
	if mime == "" {
		mime = http.DetectContentType(data)
	}

	result, err := processBytes(data, mime)
	if err != nil {
		return "", err
	}
	return EncodeDataURL(result), nil
}

// EncodeDataURL renders a processed image as a storable data URL.
func EncodeDataURL(r *ProcessResult) string {
	return "data:" + r.MIME + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
}
