package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/healthvault/internal/domain/vital"
)

// Extraction is the structured result an adapter pulls out of an uploaded
// document. Vitals is a closed mapping: unknown kinds are rejected at this
// boundary rather than carried through the system.
type Extraction struct {
	Title    string
	Category string
	Date     time.Time
	Vitals   map[vital.Kind]float64
}

var ErrInvalidExtraction = errors.New("extraction contains unknown vital kind")

// Validate drops nothing silently: an extraction naming a vital kind outside
// the enumeration is an adapter bug and is treated as adapter failure.
func (e Extraction) Validate() error {
	for k := range e.Vitals {
		if !k.IsValid() {
			return ErrInvalidExtraction
		}
	}
	return nil
}

// Extractor is the external collaborator that turns an uploaded document into
// structured vitals. Real implementations talk to an OCR/LLM service; the
// system only depends on this contract.
type Extractor interface {
	Extract(ctx context.Context, fileBytes []byte, mimeType string) (Extraction, error)
}
