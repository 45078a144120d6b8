package ingest

import (
	"context"
	"time"
)

// ProtectedExtractor wraps an Extractor with a hard deadline and boundary
// validation so a slow or misbehaving parsing provider cannot stall uploads.
// Callers treat any error from here as adapter failure and fall back to
// default report fields.
type ProtectedExtractor struct {
	inner   Extractor
	timeout time.Duration
}

func NewProtectedExtractor(inner Extractor, timeout time.Duration) *ProtectedExtractor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &ProtectedExtractor{
		inner:   inner,
		timeout: timeout,
	}
}

func (p *ProtectedExtractor) Extract(ctx context.Context, fileBytes []byte, mimeType string) (Extraction, error) {
	extractCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.inner.Extract(extractCtx, fileBytes, mimeType)

	if err != nil {
		return Extraction{}, err
	}

	if err := out.Validate(); err != nil {
		return Extraction{}, err
	}

	return out, nil
}
