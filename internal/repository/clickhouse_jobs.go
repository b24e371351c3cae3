package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/mavmaso/ficherors/internal/model"
)

// CHJobsRepository writes and lists finished jobs in ClickHouse.
type CHJobsRepository interface {
	Insert(ctx context.Context, s model.JobStat) error
	List(ctx context.Context, country string, status model.JobStatus, limit, offset int) ([]model.JobStat, error)
}

type chJobsRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewCHJobsRepository(ch *sqlx.DB) CHJobsRepository {
	return &chJobsRepository{ch: ch}
}

func (r *chJobsRepository) Insert(ctx context.Context, s model.JobStat) error {
	const q = `
		INSERT INTO ficherors.job_stats (job_id, country, status, row_count, duration_ms, error_code, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.ch.ExecContext(ctx, q,
		s.JobID, s.Country, s.Status.String(), s.Rows, s.DurationMs, s.ErrorCode, s.FinishedAt,
	)
	return err
}

func (r *chJobsRepository) List(ctx context.Context, country string, status model.JobStatus, limit, offset int) ([]model.JobStat, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `
		SELECT job_id, country, status, row_count, duration_ms, error_code, finished_at
		FROM ficherors.job_stats
		WHERE 1 = 1
	`
	var args []any

	if country != "" {
		q += " AND country = ?"
		args = append(args, country)
	}
	if status != "" {
		q += " AND status = ?"
		args = append(args, status.String())
	}

	q += " ORDER BY finished_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []model.JobStat
	if err := r.ch.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
