package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/mavmaso/ficherors/internal/breaker"
	"github.com/mavmaso/ficherors/internal/csvio"
	"github.com/mavmaso/ficherors/internal/kafka"
	"github.com/mavmaso/ficherors/internal/logger"
	"github.com/mavmaso/ficherors/internal/metrics"
	"github.com/mavmaso/ficherors/internal/model"
	"github.com/mavmaso/ficherors/internal/pipeline"
	"github.com/mavmaso/ficherors/internal/repository"
)

// CodeInternal marks jobs that failed for reasons other than list structure.
const CodeInternal = "internal_error"

// Consumer is the part of the Kafka consumer the worker needs.
type Consumer interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, m kafka.Message) error
}

// JobsKafka:
// - fetches job envelopes from Kafka,
// - runs the list through the pipeline,
// - stores the output and reports the finished job to ClickHouse.
type JobsKafka struct {
	// Dependencies
	Consumer Consumer
	Jobs     repository.JobsRepository
	Stats    repository.CHJobsRepository // optional
	Pipeline *pipeline.Transformer
	Breaker  *breaker.Breaker

	// Behavior
	Workers    int           // number of goroutines processing jobs
	JobTimeout time.Duration // upper bound for one list

	now func() time.Time
}

// NewJobsKafka builds a worker with sane defaults.
func NewJobsKafka(
	consumer Consumer,
	jobs repository.JobsRepository,
	stats repository.CHJobsRepository,
	p *pipeline.Transformer,
) *JobsKafka {
	return &JobsKafka{
		Consumer:   consumer,
		Jobs:       jobs,
		Stats:      stats,
		Pipeline:   p,
		Breaker:    breaker.New(5, 30*time.Second),
		Workers:    4,
		JobTimeout: 2 * time.Minute,
		now:        time.Now,
	}
}

// Run starts the worker and blocks until ctx is cancelled and in-flight jobs finish.
func (w *JobsKafka) Run(ctx context.Context) error {
	if w.Consumer == nil || w.Jobs == nil || w.Pipeline == nil {
		return errors.New("jobs-kafka: missing dependency")
	}
	if w.Workers <= 0 {
		w.Workers = 4
	}
	if w.JobTimeout <= 0 {
		w.JobTimeout = 2 * time.Minute
	}
	if w.Breaker == nil {
		w.Breaker = breaker.New(5, 30*time.Second)
	}
	if w.now == nil {
		w.now = time.Now
	}

	msgCh := make(chan kafka.Message, w.Workers*2)

	// Fetcher goroutine
	go func() {
		defer close(msgCh)

		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = 200 * time.Millisecond
		bo.MaxInterval = 5 * time.Second
		bo.Reset()

		for {
			m, err := w.Consumer.Fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				wait := bo.NextBackOff()
				logger.Log.Warn("kafka fetch failed", zap.Duration("retry_in", wait), zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(wait):
				}
				continue
			}
			bo.Reset()
			select {
			case msgCh <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Start processors
	var wg sync.WaitGroup
	for i := 0; i < w.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.runProcessor(ctx, msgCh)
		}()
	}

	<-ctx.Done()
	wg.Wait()
	return nil
}

func (w *JobsKafka) runProcessor(ctx context.Context, in <-chan kafka.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok {
				return
			}
			w.processOne(ctx, m)
		}
	}
}

func (w *JobsKafka) processOne(ctx context.Context, m kafka.Message) {
	// Parse envelope: { job_id, country }
	var env model.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil || env.JobID == "" {
		w.commit(ctx, m) // poison → commit, skip
		logger.Log.Warn("bad job envelope", zap.ByteString("value", m.Value), zap.Error(err))
		return
	}
	log := logger.Log.With(zap.String("job_id", env.JobID))

	job, err := w.Jobs.Get(ctx, env.JobID)
	switch {
	case errors.Is(err, repository.ErrJobNotFound):
		w.commit(ctx, m)
		log.Warn("job not found")
		return
	case err != nil:
		// left uncommitted so the message is redelivered
		log.Error("load job", zap.Error(err))
		return
	}

	if job.Status != model.JobQueued {
		w.commit(ctx, m) // redelivery of a finished job
		return
	}

	start := w.now()
	stat := model.JobStat{JobID: job.ID, Country: job.Country}

	res, perr := w.run(ctx, job)
	if perr == nil {
		err = w.Jobs.MarkDone(ctx, job.ID, res.Output, res.Rows)
		stat.Status = model.JobDone
		stat.Rows = uint32(res.Rows)
	} else {
		code := csvio.Code(perr)
		if code == "" {
			code = CodeInternal
		}
		log.Info("job rejected", zap.String("code", code), zap.Error(perr))
		err = w.Jobs.MarkFailed(ctx, job.ID, code)
		stat.Status = model.JobFailed
		stat.ErrorCode = code
	}
	if err != nil && !errors.Is(err, repository.ErrJobNotFound) {
		log.Error("store job result", zap.Error(err))
		return
	}
	metrics.JobsTotal.WithLabelValues(stat.Status.String()).Inc()

	stat.FinishedAt = w.now()
	stat.DurationMs = uint32(stat.FinishedAt.Sub(start).Milliseconds())
	w.report(ctx, stat)

	// Always commit (at-least-once; finished jobs are skipped on redelivery)
	w.commit(ctx, m)
}

func (w *JobsKafka) run(ctx context.Context, job model.Job) (pipeline.Result, error) {
	var fns model.FunctionSpecs
	if err := json.Unmarshal(job.Functions, &fns); err != nil {
		return pipeline.Result{}, err
	}

	jctx, cancel := context.WithTimeout(ctx, w.JobTimeout)
	defer cancel()

	return w.Pipeline.ProcessString(jctx, job.Content, pipeline.Request{
		Country:   job.Country,
		Functions: fns,
		Encoding:  job.Encoding,
	})
}

// report sends the job stat to ClickHouse; failures never fail the job.
func (w *JobsKafka) report(ctx context.Context, s model.JobStat) {
	if w.Stats == nil {
		return
	}
	err := w.Breaker.Do(func() error { return w.Stats.Insert(ctx, s) })
	if err != nil {
		logger.Log.Warn("job stat not recorded", zap.String("job_id", s.JobID), zap.Error(err))
	}
}

func (w *JobsKafka) commit(ctx context.Context, m kafka.Message) {
	if err := w.Consumer.Commit(ctx, m); err != nil {
		logger.Log.Warn("kafka commit failed", zap.Error(err))
	}
}
