package mwp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/crillab/featsat/cnf"
	"github.com/crillab/featsat/oracle"
)

// ErrIterationLimit is returned when the oracle found more models than allowed
// before the end of the enumeration.
var ErrIterationLimit = errors.New("iteration limit reached")

// A Result is the outcome of an enumeration.
type Result struct {
	// Products are the minimal configurations. Each one is sorted, and they
	// are sorted lexicographically.
	Products [][]string `json:"products"`
	// Iterations is the number of models the oracle returned.
	Iterations int `json:"iterations"`
	// Duration is the time spent enumerating.
	Duration time.Duration `json:"duration"`
}

// An Enumerator enumerates minimal models. Its zero value is not usable: use
// NewEnumerator. An Enumerator can be used concurrently, since each call
// creates its own oracle.
type Enumerator struct {
	factory       oracle.Factory
	maxIterations int
	logger        *slog.Logger
}

// An Option configures an Enumerator.
type Option func(*Enumerator)

// WithOracle sets the oracle factory. Default is gophersat.
func WithOracle(factory oracle.Factory) Option {
	return func(e *Enumerator) { e.factory = factory }
}

// WithMaxIterations bounds the number of models the oracle may return.
// 0 means no limit.
func WithMaxIterations(n int) Option {
	return func(e *Enumerator) { e.maxIterations = n }
}

// WithLogger sets the logger used to report progress.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enumerator) { e.logger = logger }
}

// NewEnumerator returns an enumerator configured with the given options.
func NewEnumerator(opts ...Option) *Enumerator {
	e := &Enumerator{factory: oracle.NewGophersat, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if e.factory == nil {
		e.factory = oracle.NewGophersat
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Enumerate returns all minimal products of pb.
// An unsatisfiable problem has no product; this is not an error.
// On error, no product is returned.
func (e *Enumerator) Enumerate(ctx context.Context, pb *cnf.Problem) (*Result, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "mwp.Enumerate",
		trace.WithAttributes(
			attribute.Int("vars", pb.NbVars()),
			attribute.Int("clauses", len(pb.Clauses)),
		),
	)
	defer span.End()

	sets, iterations, err := e.Minimal(ctx, pb.NbVars(), pb.Clauses)
	duration := time.Since(start)
	enumerationDuration.Observe(duration.Seconds())
	oracleCalls.Observe(float64(iterations))
	if err != nil {
		enumerations.WithLabelValues(status(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Warn("enumeration failed",
			slog.String("root", pb.Root),
			slog.Int("iterations", iterations),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	res := &Result{
		Products:   make([][]string, len(sets)),
		Iterations: iterations,
		Duration:   duration,
	}
	for i, set := range sets {
		names := lo.Map(set, func(id int, _ int) string { return pb.Vars.Name(id) })
		slices.Sort(names)
		res.Products[i] = names
	}
	slices.SortFunc(res.Products, func(a, b []string) int { return slices.Compare(a, b) })
	enumerations.WithLabelValues("ok").Inc()
	productsFound.Observe(float64(len(res.Products)))
	span.SetAttributes(
		attribute.Int("iterations", iterations),
		attribute.Int("products", len(res.Products)),
	)
	e.logger.Debug("enumeration completed",
		slog.String("root", pb.Root),
		slog.Int("vars", pb.NbVars()),
		slog.Int("clauses", len(pb.Clauses)),
		slog.Int("iterations", iterations),
		slog.Int("products", len(res.Products)),
		slog.Duration("duration", duration),
	)
	return res, nil
}

// Minimal returns the minimal models of the given clauses, as sorted sets of
// variables, along with the number of models the oracle returned.
// The order of the sets is unspecified.
func (e *Enumerator) Minimal(ctx context.Context, nbVars int, clauses [][]int) ([][]int, int, error) {
	for _, clause := range clauses {
		if len(clause) == 0 {
			return nil, 0, nil
		}
	}
	o, err := e.factory(nbVars, clauses)
	if err != nil {
		return nil, 0, fmt.Errorf("could not create oracle: %w", err)
	}
	var (
		minimal    antichain
		iterations int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, iterations, err
		}
		sat, err := o.Solve()
		if err != nil {
			return nil, iterations, err
		}
		if !sat {
			return minimal, iterations, nil
		}
		iterations++
		if e.maxIterations > 0 && iterations > e.maxIterations {
			return nil, iterations, fmt.Errorf("%w (%d)", ErrIterationLimit, e.maxIterations)
		}
		model, err := o.Model()
		if err != nil {
			return nil, iterations, err
		}
		if minimal.add(positives(model)) {
			e.logger.Debug("candidate accepted", slog.Int("iteration", iterations), slog.Int("products", len(minimal)))
		}
		if err := o.AddClause(blocking(model)); err != nil {
			return nil, iterations, err
		}
	}
}

// Enumerate returns all minimal products of pb, using the default enumerator.
func Enumerate(ctx context.Context, pb *cnf.Problem) (*Result, error) {
	return NewEnumerator().Enumerate(ctx, pb)
}

func status(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, ErrIterationLimit):
		return "limit"
	default:
		return "error"
	}
}
