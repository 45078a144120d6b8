package postgres

import (
	"context"

	"github.com/geocoder89/healthvault/internal/domain/vital"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VitalsRepo struct {
	pool *pgxpool.Pool
}

func NewVitalsRepo(pool *pgxpool.Pool) *VitalsRepo {
	return &VitalsRepo{pool: pool}
}

func (r *VitalsRepo) Create(ctx context.Context, req vital.CreateVitalRequest) (vital.VitalRecord, error) {
	v := vital.NewFromCreateRequest(req)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO vitals(id, user_id, vital_date, kind, value, unit) VALUES($1,$2,$3,$4,$5,$6)`,
		v.ID, v.UserID, v.Date, string(v.Kind), v.Value, v.Unit)

	if err != nil {
		return vital.VitalRecord{}, err
	}

	return v, nil
}

func (r *VitalsRepo) ListByUser(ctx context.Context, userID string) ([]vital.VitalRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, vital_date, kind, value, unit
		 FROM vitals
		 WHERE user_id = $1
		 ORDER BY vital_date ASC, id ASC`, userID)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	output := make([]vital.VitalRecord, 0)

	for rows.Next() {
		var v vital.VitalRecord
		var kind string

		err = rows.Scan(&v.ID, &v.UserID, &v.Date, &kind, &v.Value, &v.Unit)

		if err != nil {
			return nil, err
		}

		v.Kind = vital.Kind(kind)
		output = append(output, v)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return output, nil
}
