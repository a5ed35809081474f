// Package validate holds the pure field rules shared by interactive
// entry and bulk import. Every rule returns an error message or "";
// rules never touch state, so a form can evaluate all of them and show
// the full list of failures at once.
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Field bounds.
const (
	NameMinLen  = 3
	NameMaxLen  = 50
	MaxQuantity = 1000
	MaxWeight   = 100
	MaxAmount   = 1_000_000
	MaxImageLen = 5 << 20 // 5 MiB
)

// validImageMIME mirrors the accepted upload types of the reference
// front end.
var validImageMIME = map[string]bool{
	"image/jpeg":    true,
	"image/jpg":     true,
	"image/png":     true,
	"image/gif":     true,
	"image/bmp":     true,
	"image/webp":    true,
	"image/svg+xml": true,
	"image/tiff":    true,
	"image/heic":    true,
	"image/heif":    true,
	"image/avif":    true,
}

var vld = validator.New()

// Name checks the trimmed length bounds. Uniqueness against existing
// records is the store's job and is appended to the same Result.
func Name(name string) string {
	trimmed := strings.TrimSpace(name)
	if err := vld.Var(trimmed, fmt.Sprintf("required,min=%d,max=%d", NameMinLen, NameMaxLen)); err != nil {
		return fmt.Sprintf("name must be between %d and %d characters", NameMinLen, NameMaxLen)
	}
	return ""
}

// Quantity checks that q is within [0, max].
func Quantity(q float64, max float64) string {
	if err := vld.Var(q, fmt.Sprintf("gte=0,lte=%g", max)); err != nil {
		return fmt.Sprintf("quantity must be between 0 and %g", max)
	}
	return ""
}

// Weight checks the tool weight range in kilograms.
func Weight(w float64) string {
	if err := vld.Var(w, fmt.Sprintf("gte=0,lte=%d", MaxWeight)); err != nil {
		return fmt.Sprintf("weight must be between 0 and %d kg", MaxWeight)
	}
	return ""
}

// Amount checks the currency range.
func Amount(a float64) string {
	if err := vld.Var(a, fmt.Sprintf("gte=0,lte=%d", MaxAmount)); err != nil {
		return fmt.Sprintf("amount must be between 0 and %d", MaxAmount)
	}
	return ""
}

// Date rejects zero dates and dates after the end of the current day.
func Date(d time.Time, now time.Time) string {
	if d.IsZero() {
		return "date is required"
	}
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), now.Location())
	if d.After(endOfDay) {
		return "date must not be in the future"
	}
	return ""
}

// Image checks MIME type and size; an absent image (empty mime, zero
// size) is always valid.
func Image(mime string, size int64) string {
	if mime == "" && size == 0 {
		return ""
	}
	if !validImageMIME[mime] {
		return "image type is not supported"
	}
	if size > MaxImageLen {
		return "image must not exceed 5 MiB"
	}
	return ""
}

// Member checks registry membership for a category, status, location
// or fuel type field.
func Member(field, value string, set []string) string {
	for _, v := range set {
		if v == value {
			return ""
		}
	}
	return fmt.Sprintf("%s %q is not registered", field, value)
}

// Odometer is optional; when present it must be a non-negative integer.
func Odometer(o *int64) string {
	if o != nil && *o < 0 {
		return "odometer must be a non-negative integer"
	}
	return ""
}

// Result accumulates rule failures for one form. Rules are evaluated
// eagerly, never short-circuited.
type Result struct {
	Messages []string
}

// Check records a failure message; empty messages are ignored.
func (r *Result) Check(msg string) {
	if msg != "" {
		r.Messages = append(r.Messages, msg)
	}
}

// OK reports whether no rule failed.
func (r *Result) OK() bool { return len(r.Messages) == 0 }
