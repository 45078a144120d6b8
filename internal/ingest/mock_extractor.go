package ingest

import (
	"context"
	"time"

	"github.com/geocoder89/healthvault/internal/domain/vital"
)

// MockExtractor simulates a document-parsing provider: it sleeps for a fixed
// delay and returns a canned set of vitals. Useful for demos and tests.
type MockExtractor struct {
	delay time.Duration
}

func NewMockExtractor(delay time.Duration) *MockExtractor {
	return &MockExtractor{delay: delay}
}

func (m *MockExtractor) Extract(ctx context.Context, fileBytes []byte, mimeType string) (Extraction, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return Extraction{}, ctx.Err()
		}
	}

	return Extraction{
		Title:    "Medical Diagnostic Report",
		Category: "General Health",
		Date:     time.Now().UTC().Truncate(24 * time.Hour),
		Vitals: map[vital.Kind]float64{
			vital.KindBP:        118,
			vital.KindSugar:     92,
			vital.KindHeartRate: 74,
			vital.KindSpO2:      98,
		},
	}, nil
}
