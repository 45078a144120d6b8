package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/geocoder89/healthvault/internal/domain/report"
	"github.com/geocoder89/healthvault/internal/domain/vital"
	"github.com/geocoder89/healthvault/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// constructor function

func NewReportsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ReportsRepo {
	return &ReportsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *ReportsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *ReportsRepo) Create(ctx context.Context, req report.CreateReportRequest) (report.HealthReport, error) {
	rep := report.NewFromCreateRequest(req)

	vitalsJSON, err := json.Marshal(rep.ExtractedVitals)

	if err != nil {
		return report.HealthReport{}, err
	}

	err = r.observe("reports.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO reports(id, owner_id, title, category, report_date, file_blob, mime_type, extracted_vitals, created_at)
			 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			rep.ID, rep.OwnerID, rep.Title, rep.Category, rep.Date, rep.FileBlob, rep.MimeType, vitalsJSON, rep.CreatedAt)
		return err
	})

	if err != nil {
		return report.HealthReport{}, err
	}

	return rep, nil
}

const reportColumns = `id, owner_id, title, category, report_date, file_blob, mime_type, extracted_vitals, created_at`

func scanReport(row pgx.Row) (report.HealthReport, error) {
	var rep report.HealthReport
	var vitalsJSON []byte

	err := row.Scan(
		&rep.ID,
		&rep.OwnerID,
		&rep.Title,
		&rep.Category,
		&rep.Date,
		&rep.FileBlob,
		&rep.MimeType,
		&vitalsJSON,
		&rep.CreatedAt,
	)

	if err != nil {
		return report.HealthReport{}, err
	}

	if len(vitalsJSON) > 0 {
		var vitals map[vital.Kind]float64
		if err := json.Unmarshal(vitalsJSON, &vitals); err != nil {
			return report.HealthReport{}, err
		}
		rep.ExtractedVitals = vitals
	}

	return rep, nil
}

func (r *ReportsRepo) GetByID(ctx context.Context, id string) (report.HealthReport, error) {
	var rep report.HealthReport
	var err error

	err = r.observe("reports.get_by_id", func() error {
		rep, err = scanReport(r.pool.QueryRow(ctx,
			`SELECT `+reportColumns+` FROM reports WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.HealthReport{}, report.ErrNotFound
		}
		return report.HealthReport{}, err
	}

	return rep, nil
}

func (r *ReportsRepo) ListByOwner(ctx context.Context, ownerID string) ([]report.HealthReport, error) {
	return r.list(ctx, "reports.list_by_owner",
		`SELECT `+reportColumns+` FROM reports WHERE owner_id = $1 ORDER BY created_at ASC, id ASC`, ownerID)
}

// ListByIDs returns the named reports in store-insertion order. IDs that do
// not exist are skipped rather than treated as errors.
func (r *ReportsRepo) ListByIDs(ctx context.Context, ids []string) ([]report.HealthReport, error) {
	if len(ids) == 0 {
		return []report.HealthReport{}, nil
	}

	return r.list(ctx, "reports.list_by_ids",
		`SELECT `+reportColumns+` FROM reports WHERE id = ANY($1) ORDER BY created_at ASC, id ASC`, ids)
}

func (r *ReportsRepo) list(ctx context.Context, op, query string, arg any) ([]report.HealthReport, error) {
	var output []report.HealthReport

	err := r.observe(op, func() error {
		rows, err := r.pool.Query(ctx, query, arg)

		if err != nil {
			return err
		}

		defer rows.Close()

		output = make([]report.HealthReport, 0)

		for rows.Next() {
			rep, err := scanReport(rows)

			if err != nil {
				return err
			}

			output = append(output, rep)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}
