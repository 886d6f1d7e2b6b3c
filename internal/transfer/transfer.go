// Package transfer implements the drag payload carried from a category or
// knowledge item to a thought sheet.
//
// The payload is a JSON object, {"type":"category"|"knowledge","id":...,
// "name":...,"relation":...}, sent over a text channel (MIME text/plain).
// A drop is copy-only: decoding yields a fresh snapshot and the source
// entity is never touched.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ajitpratap0/thoughtboard/internal/models"
)

// MIMEType is the media type of the drag channel.
const MIMEType = "text/plain"

var (
	// ErrMalformed is returned when the payload is not a JSON object.
	ErrMalformed = errors.New("malformed drag payload")

	// ErrInvalid is returned when the payload parses but fails validation.
	ErrInvalid = errors.New("invalid drag payload")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func payloadValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Encode serializes a reference into a drag payload.
func Encode(ref models.Reference) ([]byte, error) {
	if ref == nil {
		return nil, fmt.Errorf("%w: nil reference", ErrInvalid)
	}
	rec := models.ToRecord(ref)
	if err := payloadValidator().Struct(rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return data, nil
}

// Decode parses a drag payload back into a reference.
func Decode(raw []byte) (models.Reference, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrMalformed)
	}
	var rec models.ReferenceRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if err := payloadValidator().Struct(rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	ref, err := rec.Reference()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return ref, nil
}

// Validate reports whether ref is acceptable as a placed reference.
func Validate(ref models.Reference) error {
	if ref == nil {
		return fmt.Errorf("%w: nil reference", ErrInvalid)
	}
	if err := payloadValidator().Struct(models.ToRecord(ref)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
