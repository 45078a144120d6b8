package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/healthvault/internal/domain/grant"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GrantsRepo struct {
	pool *pgxpool.Pool
}

func NewGrantsRepo(pool *pgxpool.Pool) *GrantsRepo {
	return &GrantsRepo{pool: pool}
}

// Create appends a grant. A unique index on (report_id, viewer_id) keeps the
// ledger free of semantic duplicates; racing a concurrent identical grant
// resolves to the row that won.
func (r *GrantsRepo) Create(ctx context.Context, g grant.AccessGrant) (grant.AccessGrant, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO access_grants(id, report_id, owner_id, viewer_id, granted_at) VALUES($1,$2,$3,$4,$5)`,
		g.ID, g.ReportID, g.OwnerID, g.ViewerID, g.GrantedAt)

	if err != nil {
		if IsUniqueViolation(err) {
			return r.FindByReportAndViewer(ctx, g.ReportID, g.ViewerID)
		}

		return grant.AccessGrant{}, err
	}

	return g, nil
}

func (r *GrantsRepo) FindByReportAndViewer(ctx context.Context, reportID, viewerID string) (grant.AccessGrant, error) {
	var g grant.AccessGrant

	err := r.pool.QueryRow(ctx,
		`SELECT id, report_id, owner_id, viewer_id, granted_at
		 FROM access_grants
		 WHERE report_id = $1 AND viewer_id = $2`,
		reportID, viewerID,
	).Scan(&g.ID, &g.ReportID, &g.OwnerID, &g.ViewerID, &g.GrantedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return grant.AccessGrant{}, grant.ErrNotFound
		}

		return grant.AccessGrant{}, err
	}
	return g, nil
}

func (r *GrantsRepo) ListByViewer(ctx context.Context, viewerID string) ([]grant.AccessGrant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, report_id, owner_id, viewer_id, granted_at
		 FROM access_grants
		 WHERE viewer_id = $1
		 ORDER BY granted_at ASC, id ASC`, viewerID)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	output := make([]grant.AccessGrant, 0)

	for rows.Next() {
		var g grant.AccessGrant

		err = rows.Scan(&g.ID, &g.ReportID, &g.OwnerID, &g.ViewerID, &g.GrantedAt)

		if err != nil {
			return nil, err
		}

		output = append(output, g)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return output, nil
}
