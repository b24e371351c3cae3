package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/mavmaso/ficherors/internal/metrics"
	"github.com/mavmaso/ficherors/internal/model"
	"github.com/mavmaso/ficherors/internal/pipeline"
	"github.com/mavmaso/ficherors/internal/repository"
	"github.com/mavmaso/ficherors/internal/util"
)

const DefaultTopic = "lists.process"

// Service atomically persists jobs and their outbox events.
type Service struct {
	db     *sqlx.DB
	jobs   repository.JobsRepository
	outbox repository.OutboxRepository
	topic  string
}

// New constructs the queue service. An empty topic falls back to DefaultTopic.
func New(
	db *sqlx.DB,
	jobsRepo repository.JobsRepository,
	outboxRepo repository.OutboxRepository,
	topic string,
) *Service {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Service{db: db, jobs: jobsRepo, outbox: outboxRepo, topic: topic}
}

// Enqueue generates a ULID and writes into `jobs` and `outbox` within a single
// transaction. Returns the generated job ID.
func (s *Service) Enqueue(ctx context.Context, req pipeline.Request, content string) (string, error) {
	jobID := util.NewID()
	country := strings.ToUpper(req.Country)

	fns, err := json.Marshal(req.Functions)
	if err != nil {
		return "", fmt.Errorf("marshal functions: %w", err)
	}

	job := model.Job{
		ID:        jobID,
		Country:   country,
		Functions: fns,
		Encoding:  req.Encoding,
		Content:   content,
		Status:    model.JobQueued,
	}

	payload, err := json.Marshal(model.Envelope{JobID: jobID, Country: country})
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.jobs.InsertQueued(ctx, tx, job); err != nil {
		return "", fmt.Errorf("insert job queued: %w", err)
	}

	ev := model.OutboxEvent{Aggregate: "job", AggregateID: jobID, Topic: s.topic, Payload: payload}
	if err := s.outbox.Insert(ctx, tx, ev); err != nil {
		return "", fmt.Errorf("insert outbox: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	metrics.JobsTotal.WithLabelValues(model.JobQueued.String()).Inc()
	return jobID, nil
}

// Get returns the job, or repository.ErrJobNotFound.
func (s *Service) Get(ctx context.Context, id string) (model.Job, error) {
	return s.jobs.Get(ctx, id)
}
