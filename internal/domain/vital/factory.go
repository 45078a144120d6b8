package vital

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateVitalRequest) VitalRecord {
	date := req.Date

	if date.IsZero() {
		date = time.Now().UTC()
	}

	unit := req.Unit

	if unit == "" {
		unit = UnitFor(req.Kind)
	}

	return VitalRecord{
		ID:     uuid.NewString(),
		UserID: req.UserID,
		Date:   date,
		Kind:   req.Kind,
		Value:  req.Value,
		Unit:   unit,
	}
}
