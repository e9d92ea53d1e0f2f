package imgcore

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine runs the metadata, provenance and rendering operations with a
// logger and a bounded worker pool for batch requests. An Engine holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	log     *zap.Logger
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Degraded probes are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithWorkers bounds the number of files processed at once by batch calls.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEngine returns an engine with a no-op logger and one worker per CPU
// unless configured otherwise.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{log: zap.NewNop(), workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

func logName(name string) zap.Field {
	return zap.String("path", name)
}

// RenderFile reads and decodes the image at path, applies its EXIF
// orientation, renders it with ramp and p and returns the transport string.
func RenderFile(path string, ramp Ramp, p RenderParams) (string, error) {
	return defaultEngine.RenderFile(path, ramp, p)
}

// RenderFile is the engine form of the package-level RenderFile.
func (e *Engine) RenderFile(path string, ramp Ramp, p RenderParams) (string, error) {
	data, err := readFile(path)
	if err != nil {
		return "", err
	}
	img, err := Decode(data)
	if err != nil {
		return "", err
	}
	img = Orient(img, data)

	out, err := Render(img, ramp, p)
	if err != nil {
		return "", err
	}
	e.log.Debug("rendered character art",
		logName(path),
		zap.String("ramp", ramp.ID),
		zap.Int("width", out.Rect.Dx()),
		zap.Int("height", out.Rect.Dy()),
	)
	return ToTransportString(out)
}

// MetadataResult is one entry of a ReadAll batch.
type MetadataResult struct {
	Path   string
	Record *MetadataRecord
	Err    error
}

// VerdictResult is one entry of an AnalyzeAll batch.
type VerdictResult struct {
	Path    string
	Verdict ProvenanceVerdict
	Err     error
}

// ReadAll reads every path on the worker pool. Results are in input order and
// carry their own errors. Once ctx is done no further files are started;
// those entries carry ctx.Err(), which is also returned.
func (e *Engine) ReadAll(ctx context.Context, paths []string) ([]MetadataResult, error) {
	results := make([]MetadataResult, len(paths))
	err := e.fanOut(ctx, len(paths), func(i int) {
		md, err := e.ReadImage(paths[i])
		results[i] = MetadataResult{Path: paths[i], Record: md, Err: err}
	}, func(i int, err error) {
		results[i] = MetadataResult{Path: paths[i], Err: err}
	})
	return results, err
}

// AnalyzeAll runs Analyze for every path on the worker pool, with the same
// ordering and cancellation rules as ReadAll.
func (e *Engine) AnalyzeAll(ctx context.Context, paths []string) ([]VerdictResult, error) {
	results := make([]VerdictResult, len(paths))
	err := e.fanOut(ctx, len(paths), func(i int) {
		v, err := e.Analyze(paths[i])
		results[i] = VerdictResult{Path: paths[i], Verdict: v, Err: err}
	}, func(i int, err error) {
		results[i] = VerdictResult{Path: paths[i], Err: err}
	})
	return results, err
}

// fanOut calls run for 0..n-1 with at most e.workers in flight. Indexes not
// started before ctx is done are passed to skip.
func (e *Engine) fanOut(ctx context.Context, n int, run func(i int), skip func(i int, err error)) error {
	var g errgroup.Group
	g.SetLimit(e.workers)

	i := 0
	for ; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		// i is declared outside the for statement, so it is shared.
		i := i
		g.Go(func() error {
			run(i)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil && i < n {
		e.log.Debug("batch interrupted", zap.Error(err), zap.Int("skipped", n-i))
		for ; i < n; i++ {
			skip(i, err)
		}
		return err
	}
	return nil
}
