// Package scan decodes QR and RFID reader payloads into tool lookups.
package scan

import (
	"encoding/json"
	"strings"
)

// Payload is the structured form embedded in printed QR labels. Readers
// that emit a bare serial string are wrapped into one.
type Payload struct {
	Type         string `json:"type"`
	SerialNumber string `json:"serialNumber"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Notes        string `json:"notes"`
}

// Parse decodes a scanned payload. JSON payloads must carry type
// "tool"; anything that is not valid JSON is treated as a raw serial
// number. Returns false for blank input or a foreign JSON payload.
func Parse(raw string) (Payload, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Payload{}, false
	}

	if strings.HasPrefix(raw, "{") {
		var p Payload
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			if p.Type != "tool" || p.SerialNumber == "" {
				return Payload{}, false
			}
			return p, true
		}
	}

	return Payload{Type: "tool", SerialNumber: raw}, true
}
