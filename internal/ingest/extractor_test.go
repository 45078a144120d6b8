package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/healthvault/internal/domain/vital"
)

func TestMockExtractorReturnsCannedVitals(t *testing.T) {
	m := NewMockExtractor(0)

	out, err := m.Extract(context.Background(), []byte("pdf bytes"), "application/pdf")

	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	want := map[vital.Kind]float64{
		vital.KindBP:        118,
		vital.KindSugar:     92,
		vital.KindHeartRate: 74,
		vital.KindSpO2:      98,
	}

	if len(out.Vitals) != len(want) {
		t.Fatalf("got %d vitals, want %d", len(out.Vitals), len(want))
	}

	for k, v := range want {
		if out.Vitals[k] != v {
			t.Errorf("vital %s = %v, want %v", k, out.Vitals[k], v)
		}
	}

	if out.Title == "" || out.Category == "" {
		t.Fatalf("missing title/category: %+v", out)
	}
}

func TestMockExtractorHonoursContext(t *testing.T) {
	m := NewMockExtractor(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.Extract(ctx, nil, "application/pdf")

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want deadline exceeded", err)
	}
}

func TestProtectedExtractorAppliesDeadline(t *testing.T) {
	p := NewProtectedExtractor(NewMockExtractor(time.Minute), 10*time.Millisecond)

	start := time.Now()
	_, err := p.Extract(context.Background(), nil, "application/pdf")

	if err == nil {
		t.Fatal("expected timeout error")
	}

	if time.Since(start) > time.Second {
		t.Fatal("deadline was not applied")
	}
}

type staticExtractor struct {
	out Extraction
	err error
}

func (s staticExtractor) Extract(ctx context.Context, fileBytes []byte, mimeType string) (Extraction, error) {
	return s.out, s.err
}

func TestProtectedExtractorRejectsUnknownKinds(t *testing.T) {
	p := NewProtectedExtractor(staticExtractor{
		out: Extraction{
			Title:  "bad",
			Vitals: map[vital.Kind]float64{"Cholesterol": 200},
		},
	}, time.Second)

	_, err := p.Extract(context.Background(), nil, "application/pdf")

	if !errors.Is(err, ErrInvalidExtraction) {
		t.Fatalf("got %v, want ErrInvalidExtraction", err)
	}
}

func TestValidate(t *testing.T) {
	ok := Extraction{Vitals: map[vital.Kind]float64{vital.KindBP: 120}}

	if err := ok.Validate(); err != nil {
		t.Fatalf("valid extraction rejected: %v", err)
	}

	if err := (Extraction{}).Validate(); err != nil {
		t.Fatalf("empty extraction rejected: %v", err)
	}
}
