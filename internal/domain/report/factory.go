package report

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateReportRequest) HealthReport {
	now := time.Now().UTC()

	date := req.Date

	if date.IsZero() {
		date = now
	}

	return HealthReport{
		ID:              uuid.NewString(),
		OwnerID:         req.OwnerID,
		Title:           req.Title,
		Category:        req.Category,
		Date:            date,
		FileBlob:        req.FileBlob,
		MimeType:        req.MimeType,
		ExtractedVitals: req.ExtractedVitals,
		CreatedAt:       now,
	}
}
