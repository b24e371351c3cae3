package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mavmaso/ficherors/internal/csvio"
	"github.com/mavmaso/ficherors/internal/logger"
	"github.com/mavmaso/ficherors/internal/metrics"
	"github.com/mavmaso/ficherors/internal/model"
	"github.com/mavmaso/ficherors/internal/phone"
	"github.com/mavmaso/ficherors/internal/template"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ContextCheckInterval is how often (in rows) a sequential run checks for
// cancellation.
var ContextCheckInterval = 1000

// Request is one list transformation.
type Request struct {
	Country   string              `json:"country" validate:"required,len=2,alpha"`
	Functions model.FunctionSpecs `json:"functions"`
	Encoding  string              `json:"encoding,omitempty" validate:"omitempty,oneof=utf-8 utf8 latin1 iso-8859-1 windows-1252 cp1252"`
}

// Result is a serialized output list.
type Result struct {
	Output  string   `json:"output"`
	Headers []string `json:"headers"`
	Rows    int      `json:"rows"`
}

// Transformer turns parsed lists into destination lists.
type Transformer struct {
	phones  *phone.Normalizer
	engine  *template.Engine
	workers int
	chunk   int
}

type Option func(*Transformer)

// WithWorkers spreads rows over n goroutines; n <= 1 keeps it sequential.
func WithWorkers(n int) Option {
	return func(t *Transformer) { t.workers = n }
}

// WithChunkSize sets how many rows one goroutine handles at a time.
func WithChunkSize(n int) Option {
	return func(t *Transformer) {
		if n > 0 {
			t.chunk = n
		}
	}
}

func New(phones *phone.Normalizer, engine *template.Engine, opts ...Option) *Transformer {
	if phones == nil {
		phones = phone.NewNormalizer(nil)
	}
	if engine == nil {
		engine = template.New()
	}
	t := &Transformer{phones: phones, engine: engine, workers: 1, chunk: 512}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Rules exposes the country table used for destinations.
func (t *Transformer) Rules() *phone.Rules { return t.phones.Rules() }

// Transform builds the output table, header first. Output row order always
// equals input row order.
func (t *Transformer) Transform(ctx context.Context, table *model.Table, country string, specs model.FunctionSpecs) ([][]string, error) {
	p := newPlan(table.Headers, specs)
	rows := table.Rows

	out := make([][]string, len(rows)+1)
	out[0] = p.header

	if t.workers <= 1 || len(rows) <= t.chunk {
		for i, row := range rows {
			if i%ContextCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			out[i+1] = t.row(p, row, country)
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)
	for start := 0; start < len(rows); start += t.chunk {
		end := min(start+t.chunk, len(rows))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				out[i+1] = t.row(p, rows[i], country)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func (t *Transformer) row(p plan, row []string, country string) []string {
	var raw string
	var rest []string
	if len(row) > 0 {
		raw, rest = row[0], row[1:]
	}

	dst, outcome := t.phones.FormatOutcome(raw, country)
	metrics.PhonesTotal.WithLabelValues(outcome.String()).Inc()

	res := make([]string, 0, len(p.header))
	res = append(res, dst)

	if len(p.specs) == 0 {
		return append(res, rest...)
	}

	for i, s := range p.specs {
		value := ""
		if idx := p.sources[i]; idx >= 0 && idx < len(rest) {
			value = rest[idx]
		}
		res = append(res, t.engine.Apply(p.kinds[i], value, s.Target))
	}
	for _, idx := range p.leftovers {
		if idx < len(rest) {
			res = append(res, rest[idx])
		} else {
			res = append(res, "")
		}
	}

	return res
}

// Process reads a list from r, transforms it and serializes the result.
// Nothing is returned unless every step succeeds.
func (t *Transformer) Process(ctx context.Context, r io.Reader, req Request) (Result, error) {
	start := time.Now()

	res, err := t.process(ctx, r, req)
	if err != nil {
		metrics.ListsTotal.WithLabelValues("process", "error").Inc()
		logger.Log.Warn("list rejected",
			zap.String("country", req.Country),
			zap.String("code", csvio.Code(err)),
			zap.Error(err),
		)
		return Result{}, err
	}

	elapsed := time.Since(start)
	metrics.ListsTotal.WithLabelValues("process", "ok").Inc()
	metrics.RowsTotal.Add(float64(res.Rows))
	metrics.ProcessSeconds.Observe(elapsed.Seconds())
	logger.Log.Info("list processed",
		zap.String("country", req.Country),
		zap.Int("rows", res.Rows),
		zap.Int("functions", len(req.Functions)),
		zap.Duration("elapsed", elapsed),
	)

	return res, nil
}

func (t *Transformer) process(ctx context.Context, r io.Reader, req Request) (Result, error) {
	src, err := csvio.Decode(r, req.Encoding)
	if err != nil {
		return Result{}, err
	}

	table, err := csvio.Parse(src)
	if err != nil {
		return Result{}, fmt.Errorf("read list: %w", err)
	}

	rows, err := t.Transform(ctx, table, req.Country, req.Functions)
	if err != nil {
		return Result{}, fmt.Errorf("transform list: %w", err)
	}

	text, err := csvio.ToText(rows)
	if err != nil {
		return Result{}, fmt.Errorf("write list: %w", err)
	}

	return Result{Output: text, Headers: rows[0], Rows: len(rows) - 1}, nil
}

// ProcessString is Process over in-memory content.
func (t *Transformer) ProcessString(ctx context.Context, content string, req Request) (Result, error) {
	return t.Process(ctx, strings.NewReader(content), req)
}

// ProcessFile is Process over the file at path.
func (t *Transformer) ProcessFile(ctx context.Context, path string, req Request) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", csvio.ErrSourceNotFound, err)
	}
	defer f.Close()

	return t.Process(ctx, f, req)
}
