package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/healthvault/internal/domain/grant"
)

type GrantsRepo struct {
	mu    sync.RWMutex
	items []grant.AccessGrant
}

func NewGrantsRepo() *GrantsRepo {
	return &GrantsRepo{}
}

func (r *GrantsRepo) Create(ctx context.Context, g grant.AccessGrant) (grant.AccessGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// dedupe: a repeated share resolves to the existing grant
	for _, existing := range r.items {
		if existing.ReportID == g.ReportID && existing.ViewerID == g.ViewerID {
			return existing, nil
		}
	}

	r.items = append(r.items, g)

	return g, nil
}

func (r *GrantsRepo) FindByReportAndViewer(ctx context.Context, reportID, viewerID string) (grant.AccessGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.items {
		if g.ReportID == reportID && g.ViewerID == viewerID {
			return g, nil
		}
	}

	return grant.AccessGrant{}, grant.ErrNotFound
}

func (r *GrantsRepo) ListByViewer(ctx context.Context, viewerID string) ([]grant.AccessGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	output := make([]grant.AccessGrant, 0)

	for _, g := range r.items {
		if g.ViewerID == viewerID {
			output = append(output, g)
		}
	}

	return output, nil
}
