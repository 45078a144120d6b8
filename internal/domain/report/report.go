package report

import (
	"errors"
	"time"

	"github.com/geocoder89/healthvault/internal/domain/vital"
)

var ErrNotFound = errors.New("report not found")

type HealthReport struct {
	ID              string                     `json:"id"`
	OwnerID         string                     `json:"ownerId"`
	Title           string                     `json:"title"`
	Category        string                     `json:"category,omitempty"`
	Date            time.Time                  `json:"date"`
	FileBlob        []byte                     `json:"fileBlob,omitempty"` // base64 over JSON
	MimeType        string                     `json:"mimeType"`
	ExtractedVitals map[vital.Kind]float64     `json:"extractedVitals,omitempty"`
	CreatedAt       time.Time                  `json:"createdAt"`
}

// fields a caller supplies when creating a report; the owner is fixed at
// creation and the entity is never mutated afterwards.
type CreateReportRequest struct {
	OwnerID         string
	Title           string
	Category        string
	Date            time.Time
	FileBlob        []byte
	MimeType        string
	ExtractedVitals map[vital.Kind]float64
}
