package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/healthvault/internal/domain/report"
)

type ReportsRepo struct {
	mu    sync.RWMutex
	items map[string]report.HealthReport
	order []string // preserves store-insertion order
}

func NewReportsRepo() *ReportsRepo {
	return &ReportsRepo{
		items: make(map[string]report.HealthReport),
	}
}

func (r *ReportsRepo) Create(ctx context.Context, req report.CreateReportRequest) (report.HealthReport, error) {
	rep := report.NewFromCreateRequest(req)

	r.mu.Lock()
	r.items[rep.ID] = rep
	r.order = append(r.order, rep.ID)
	r.mu.Unlock()

	return rep, nil
}

func (r *ReportsRepo) GetByID(ctx context.Context, id string) (report.HealthReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.items[id]

	if !ok {
		return report.HealthReport{}, report.ErrNotFound
	}

	return rep, nil
}

func (r *ReportsRepo) ListByOwner(ctx context.Context, ownerID string) ([]report.HealthReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	output := make([]report.HealthReport, 0)

	for _, id := range r.order {
		if rep := r.items[id]; rep.OwnerID == ownerID {
			output = append(output, rep)
		}
	}

	return output, nil
}

func (r *ReportsRepo) ListByIDs(ctx context.Context, ids []string) ([]report.HealthReport, error) {
	wanted := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	output := make([]report.HealthReport, 0, len(ids))

	for _, id := range r.order {
		if _, ok := wanted[id]; ok {
			output = append(output, r.items[id])
		}
	}

	return output, nil
}
