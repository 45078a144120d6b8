package vital

import (
	"errors"
	"time"
)

type Kind string

const (
	KindBP        Kind = "BP"
	KindSugar     Kind = "Sugar"
	KindHeartRate Kind = "HeartRate"
	KindSpO2      Kind = "SpO2"
	KindWeight    Kind = "Weight"
)

var ErrInvalidKind = errors.New("invalid vital kind")

func (k Kind) IsValid() bool {
	switch k {
	case KindBP, KindSugar, KindHeartRate, KindSpO2, KindWeight:
		return true
	default:
		return false
	}
}

// UnitFor maps a vital kind to its display unit. The table is fixed:
// blood pressure is recorded in mmHg, sugar in mg/dL, everything else in bpm.
func UnitFor(k Kind) string {
	switch k {
	case KindBP:
		return "mmHg"
	case KindSugar:
		return "mg/dL"
	default:
		return "bpm"
	}
}

type VitalRecord struct {
	ID     string    `json:"id"`
	UserID string    `json:"userId"`
	Date   time.Time `json:"date"`
	Kind   Kind      `json:"kind"`
	Value  float64   `json:"value"`
	Unit   string    `json:"unit"`
}

type CreateVitalRequest struct {
	UserID string
	Date   time.Time
	Kind   Kind
	Value  float64
	Unit   string // filled from UnitFor when empty
}
