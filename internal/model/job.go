package model

import "time"

type JobStatus string

const (
	JobQueued JobStatus = "queued"
	JobDone   JobStatus = "done"
	JobFailed JobStatus = "failed"
)

func (s JobStatus) String() string { return string(s) }

func (s JobStatus) Valid() bool {
	return s == JobQueued || s == JobDone || s == JobFailed
}

// Job is the DB entity persisted in the jobs table.
type Job struct {
	ID        string    `db:"id" json:"id"`
	Country   string    `db:"country" json:"country"`
	Functions []byte    `db:"functions" json:"-"` // JSON encoded FunctionSpecs
	Encoding  string    `db:"encoding" json:"encoding,omitempty"`
	Content   string    `db:"content" json:"-"`
	Status    JobStatus `db:"status" json:"status"`
	Output    *string   `db:"output" json:"output,omitempty"`
	Rows      int       `db:"row_count" json:"rows"`
	ErrorCode *string   `db:"error_code" json:"error_code,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// JobStat is one finished job as stored in ClickHouse.
type JobStat struct {
	JobID      string    `db:"job_id" json:"job_id"`
	Country    string    `db:"country" json:"country"`
	Status     JobStatus `db:"status" json:"status"`
	Rows       uint32    `db:"row_count" json:"rows"`
	DurationMs uint32    `db:"duration_ms" json:"duration_ms"`
	ErrorCode  string    `db:"error_code" json:"error_code,omitempty"`
	FinishedAt time.Time `db:"finished_at" json:"finished_at"`
}
