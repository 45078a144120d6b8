package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/healthvault/internal/domain/vital"
)

type VitalsRepo struct {
	mu    sync.RWMutex
	items []vital.VitalRecord
}

func NewVitalsRepo() *VitalsRepo {
	return &VitalsRepo{}
}

func (r *VitalsRepo) Create(ctx context.Context, req vital.CreateVitalRequest) (vital.VitalRecord, error) {
	v := vital.NewFromCreateRequest(req)

	r.mu.Lock()
	r.items = append(r.items, v)
	r.mu.Unlock()

	return v, nil
}

func (r *VitalsRepo) ListByUser(ctx context.Context, userID string) ([]vital.VitalRecord, error) {
	r.mu.RLock()

	output := make([]vital.VitalRecord, 0)

	for _, v := range r.items {
		if v.UserID == userID {
			output = append(output, v)
		}
	}

	r.mu.RUnlock()

	// match the relational backend: chronological, stable for equal dates
	sort.SliceStable(output, func(i, j int) bool {
		return output[i].Date.Before(output[j].Date)
	})

	return output, nil
}
