package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/saikat7890/Lost-and-Found-System/internal/domain"
	"github.com/saikat7890/Lost-and-Found-System/internal/storage"
	apperrors "github.com/saikat7890/Lost-and-Found-System/pkg/errors"
)

// DefaultOpTimeout bounds a single store or remove call.
const DefaultOpTimeout = 30 * time.Second

var (
	mediaOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_operations_total",
			Help: "Object store operations by operation and result.",
		},
		[]string{"operation", "result"},
	)

	mediaOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_operation_duration_seconds",
			Help:    "Object store operation latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Upload is one in-memory file from a multipart request.
type Upload struct {
	Name string
	Data []byte
}

// Config tunes the orchestrator.
type Config struct {
	// OpTimeout bounds each object store call independently.
	OpTimeout time.Duration
	// CompensateOnFailure removes the blobs of a create whose other uploads
	// failed.
	CompensateOnFailure bool
}

// RemovalFailure is one image the store failed to remove.
type RemovalFailure struct {
	Handle string
	Err    error
}

// DeleteReport summarizes the removal of an item's images.
type DeleteReport struct {
	Attempted int
	Failed    []RemovalFailure
}

// OK reports whether every image was removed.
func (r DeleteReport) OK() bool {
	return len(r.Failed) == 0
}

// Orchestrator runs the object store calls of item creation and deletion
// concurrently. Calls are detached from the caller's cancellation and each
// is bounded by its own timeout.
type Orchestrator struct {
	store  storage.Store
	cfg    Config
	logger *slog.Logger

	background sync.WaitGroup
}

// NewOrchestrator creates an orchestrator over store.
func NewOrchestrator(store storage.Store, cfg Config, logger *slog.Logger) *Orchestrator {
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = DefaultOpTimeout
	}
	return &Orchestrator{store: store, cfg: cfg, logger: logger}
}

// OnCreate stores every file in parallel and returns the images in input
// order. If any upload fails the whole call fails with a media error, the
// remaining uploads are canceled and, when enabled, the uploads that did
// succeed are removed in the background.
func (o *Orchestrator) OnCreate(ctx context.Context, files []Upload) ([]domain.Image, error) {
	images := make([]domain.Image, len(files))
	if len(files) == 0 {
		return images, nil
	}

	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	for i, f := range files {
		g.Go(func() error {
			opCtx, cancel := context.WithTimeout(gctx, o.cfg.OpTimeout)
			defer cancel()

			obj, err := o.timed(opCtx, "store", func(ctx context.Context) (storage.Object, error) {
				return o.store.Store(ctx, f.Data, f.Name)
			})
			if err != nil {
				return fmt.Errorf("store image %d (%s): %w", i, f.Name, err)
			}
			images[i] = domain.Image{URL: obj.URL, Handle: obj.Handle}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.logger.ErrorContext(ctx, "image upload failed",
			slog.Int("files", len(files)),
			slog.String("error", err.Error()),
		)
		if o.cfg.CompensateOnFailure {
			o.compensate(ctx, images)
		}
		return nil, apperrors.Media(err)
	}

	return images, nil
}

// compensate removes the blobs that were stored before a create failed.
func (o *Orchestrator) compensate(ctx context.Context, images []domain.Image) {
	var stored []domain.Image
	for _, img := range images {
		if img.Handle != "" {
			stored = append(stored, img)
		}
	}
	if len(stored) == 0 {
		return
	}

	detached := context.WithoutCancel(ctx)
	o.background.Add(1)
	go func() {
		defer o.background.Done()
		report := o.OnDelete(detached, stored)
		o.logger.InfoContext(detached, "removed orphaned uploads",
			slog.Int("attempted", report.Attempted),
			slog.Int("failed", len(report.Failed)),
		)
	}()
}

// OnDelete removes every image in parallel and waits for all calls to
// settle. Failures are reported, never returned as an error.
func (o *Orchestrator) OnDelete(ctx context.Context, images []domain.Image) DeleteReport {
	report := DeleteReport{Attempted: len(images)}
	if len(images) == 0 {
		return report
	}

	errs := make([]error, len(images))
	detached := context.WithoutCancel(ctx)

	var g errgroup.Group
	for i, img := range images {
		g.Go(func() error {
			opCtx, cancel := context.WithTimeout(detached, o.cfg.OpTimeout)
			defer cancel()

			_, errs[i] = o.timed(opCtx, "remove", func(ctx context.Context) (storage.Object, error) {
				return storage.Object{}, o.store.Remove(ctx, img.Handle)
			})
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		report.Failed = append(report.Failed, RemovalFailure{Handle: images[i].Handle, Err: err})
		o.logger.WarnContext(ctx, "failed to remove image from object store",
			slog.String("handle", images[i].Handle),
			slog.String("error", err.Error()),
		)
	}

	return report
}

// Wait blocks until background compensation has finished.
func (o *Orchestrator) Wait() {
	o.background.Wait()
}

func (o *Orchestrator) timed(ctx context.Context, op string, fn func(context.Context) (storage.Object, error)) (storage.Object, error) {
	start := time.Now()
	obj, err := fn(ctx)
	mediaOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	result := "success"
	if err != nil {
		result = "failure"
		if errors.Is(err, context.DeadlineExceeded) {
			result = "timeout"
		}
	}
	mediaOpsTotal.WithLabelValues(op, result).Inc()
	return obj, err
}
