package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mavmaso/ficherors/internal/model"
)

var ErrJobNotFound = errors.New("job not found")

// JobsRepository persists list processing jobs.
type JobsRepository interface {
	InsertQueued(ctx context.Context, tx *sqlx.Tx, j model.Job) error
	Get(ctx context.Context, id string) (model.Job, error)
	MarkDone(ctx context.Context, id, output string, rows int) error
	MarkFailed(ctx context.Context, id, code string) error
}

type JobsRepositoryImpl struct {
	db *sqlx.DB
}

func NewJobsRepository(db *sqlx.DB) *JobsRepositoryImpl {
	return &JobsRepositoryImpl{db: db}
}

// InsertQueued inserts a new job row with status=queued.
func (r *JobsRepositoryImpl) InsertQueued(ctx context.Context, tx *sqlx.Tx, j model.Job) error {
	const q = `
		INSERT INTO jobs
		    (id, country, functions, encoding, content, status, row_count, created_at, updated_at)
		VALUES
		    (?,  ?,       ?,         ?,        ?,       'queued', 0,  NOW(),      NOW())
	`
	return withTx(ctx, r.db, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q, j.ID, j.Country, j.Functions, j.Encoding, j.Content)
		return err
	})
}

func (r *JobsRepositoryImpl) Get(ctx context.Context, id string) (model.Job, error) {
	const q = `
		SELECT id, country, functions, encoding, content, status, output, row_count, error_code, created_at, updated_at
		FROM jobs
		WHERE id = ?
	`
	var j model.Job
	if err := r.db.GetContext(ctx, &j, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Job{}, ErrJobNotFound
		}
		return model.Job{}, err
	}
	return j, nil
}

// MarkDone stores the serialized output. Only queued jobs transition, so a
// redelivered message cannot overwrite a finished job.
func (r *JobsRepositoryImpl) MarkDone(ctx context.Context, id, output string, rows int) error {
	const q = `
		UPDATE jobs SET status = 'done', output = ?, row_count = ?, updated_at = NOW()
		WHERE id = ? AND status = 'queued'
	`
	return r.finish(ctx, q, output, rows, id)
}

func (r *JobsRepositoryImpl) MarkFailed(ctx context.Context, id, code string) error {
	const q = `
		UPDATE jobs SET status = 'failed', error_code = ?, updated_at = NOW()
		WHERE id = ? AND status = 'queued'
	`
	return r.finish(ctx, q, code, id)
}

func (r *JobsRepositoryImpl) finish(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("finish job: %w", ErrJobNotFound)
	}
	return nil
}
