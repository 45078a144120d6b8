// Package accessctl decides who may read which health report. The model is
// deliberately small: a report is visible to its owner and to every user the
// owner has granted access to. Grants are append-only; there is no revocation.
package accessctl

import (
	"context"
	"errors"

	"github.com/geocoder89/healthvault/internal/domain/grant"
	"github.com/geocoder89/healthvault/internal/domain/report"
	"github.com/geocoder89/healthvault/internal/domain/user"
)

var (
	// ErrForbidden means the caller is authenticated but does not own the report.
	ErrForbidden = errors.New("not the report owner")
	// ErrSelfShare means the owner tried to grant access to themselves.
	ErrSelfShare = errors.New("cannot share a report with its owner")
	// ErrViewerRole means the share target does not hold the VIEWER role.
	ErrViewerRole = errors.New("share target is not a viewer")
)

// Keep these interfaces small so tests can fake them easily.

type ReportStore interface {
	GetByID(ctx context.Context, id string) (report.HealthReport, error)
	ListByOwner(ctx context.Context, ownerID string) ([]report.HealthReport, error)
	ListByIDs(ctx context.Context, ids []string) ([]report.HealthReport, error)
}

type GrantStore interface {
	Create(ctx context.Context, g grant.AccessGrant) (grant.AccessGrant, error)
	FindByReportAndViewer(ctx context.Context, reportID, viewerID string) (grant.AccessGrant, error)
	ListByViewer(ctx context.Context, viewerID string) ([]grant.AccessGrant, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type Gate struct {
	reports ReportStore
	grants  GrantStore
	users   UserStore
}

func NewGate(reports ReportStore, grants GrantStore, users UserStore) *Gate {
	return &Gate{
		reports: reports,
		grants:  grants,
		users:   users,
	}
}

// CanView reports whether userID may read rep: true iff the user owns the
// report or holds a grant for it.
func (g *Gate) CanView(ctx context.Context, userID string, rep report.HealthReport) (bool, error) {
	if rep.OwnerID == userID {
		return true, nil
	}

	_, err := g.grants.FindByReportAndViewer(ctx, rep.ID, userID)

	if err != nil {
		if errors.Is(err, grant.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// ListVisible returns the union of reports the user owns and reports shared
// with them: owned first, then shared, each in store-insertion order. The two
// sets cannot overlap because an owner is never granted their own report.
func (g *Gate) ListVisible(ctx context.Context, userID string) ([]report.HealthReport, error) {
	owned, err := g.reports.ListByOwner(ctx, userID)

	if err != nil {
		return nil, err
	}

	grants, err := g.grants.ListByViewer(ctx, userID)

	if err != nil {
		return nil, err
	}

	if len(grants) == 0 {
		return owned, nil
	}

	ids := make([]string, 0, len(grants))

	for _, gr := range grants {
		ids = append(ids, gr.ReportID)
	}

	shared, err := g.reports.ListByIDs(ctx, ids)

	if err != nil {
		return nil, err
	}

	return append(owned, shared...), nil
}

// GrantShare authorizes viewerID to read reportID. Only the report's owner
// may grant; the target must exist, differ from the owner, and hold the
// VIEWER role. Repeated grants resolve to the existing one.
func (g *Gate) GrantShare(ctx context.Context, ownerID, reportID, viewerID string) (grant.AccessGrant, error) {
	rep, err := g.reports.GetByID(ctx, reportID)

	if err != nil {
		return grant.AccessGrant{}, err
	}

	if rep.OwnerID != ownerID {
		return grant.AccessGrant{}, ErrForbidden
	}

	if viewerID == ownerID {
		return grant.AccessGrant{}, ErrSelfShare
	}

	viewer, err := g.users.GetByID(ctx, viewerID)

	if err != nil {
		return grant.AccessGrant{}, err
	}

	if viewer.Role != user.RoleViewer {
		return grant.AccessGrant{}, ErrViewerRole
	}

	existing, err := g.grants.FindByReportAndViewer(ctx, reportID, viewerID)

	if err == nil {
		return existing, nil
	}

	if !errors.Is(err, grant.ErrNotFound) {
		return grant.AccessGrant{}, err
	}

	return g.grants.Create(ctx, grant.New(reportID, ownerID, viewerID))
}
