// Package pipeline runs one generation batch at a time against the server:
// resolve the model, prepare the source image, then one img2img request per
// image with cooperative cancellation between them.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"artassist/internal/config"
	"artassist/internal/imageio"
	"artassist/internal/model"
	"artassist/internal/progress"
	"artassist/internal/prompt"
	"artassist/internal/sdapi"
)

// ErrBusy is returned when a batch start is rejected because one is already
// running. Batches are single-flight by design.
var ErrBusy = errors.New("a batch is already running")

// ErrServerUnavailable means the server did not answer the reachability
// check, so the batch never started.
var ErrServerUnavailable = errors.New("image server is not reachable")

// Store persists one generated image. *imageio.Store is the real one.
type Store interface {
	Save(b64, parameters string, n int) (path string, bytes int64, err error)
}

// Service is the generation orchestrator.
type Service struct {
	api      sdapi.API
	state    *progress.BatchState
	prompts  *prompt.Builder
	store    Store
	gen      config.Generation
	keyword  string
	reporter progress.Reporter
	cancel   *Cancel
	prepare  func(path string, maxSide int) (imageio.Prepared, error)
}

// Option configures a Service.
type Option func(*Service)

// WithAPI sets the server client.
func WithAPI(api sdapi.API) Option {
	return func(s *Service) { s.api = api }
}

// WithBatchState sets the shared batch state also read by the polling loop.
func WithBatchState(st *progress.BatchState) Option {
	return func(s *Service) { s.state = st }
}

// WithPromptBuilder sets the prompt builder.
func WithPromptBuilder(b *prompt.Builder) Option {
	return func(s *Service) { s.prompts = b }
}

// WithStore sets the output image store.
func WithStore(st Store) Option {
	return func(s *Service) { s.store = st }
}

// WithGeneration sets the fixed payload parameters and strength tables.
func WithGeneration(g config.Generation) Option {
	return func(s *Service) { s.gen = g }
}

// WithModelKeyword sets the checkpoint keyword resolved once per batch.
func WithModelKeyword(kw string) Option {
	return func(s *Service) { s.keyword = kw }
}

// WithReporter attaches a progress reporter (used by the panel).
func WithReporter(r progress.Reporter) Option {
	return func(s *Service) { s.reporter = r }
}

// WithCancel sets the cooperative stop flag shared with the interrupt
// control.
func WithCancel(c *Cancel) Option {
	return func(s *Service) { s.cancel = c }
}

// withPreparer overrides source-image preparation; used by tests.
func withPreparer(f func(string, int) (imageio.Prepared, error)) Option {
	return func(s *Service) { s.prepare = f }
}

// NewService constructs a Service with the provided options.
func NewService(opts ...Option) *Service {
	s := &Service{}
	for _, o := range opts {
		o(s)
	}
	if s.state == nil {
		s.state = progress.NewBatchState(0)
	}
	if s.prompts == nil {
		s.prompts = prompt.NewBuilder(nil)
	}
	if s.cancel == nil {
		s.cancel = &Cancel{}
	}
	if s.prepare == nil {
		s.prepare = imageio.Prepare
	}
	return s
}

// Cancel returns the stop flag so the interrupt control can set it.
func (s *Service) Cancel() *Cancel {
	return s.cancel
}

// SetReporter attaches a reporter after construction. The panel calls this
// once, before any batch runs.
func (s *Service) SetReporter(r progress.Reporter) {
	s.reporter = r
}

// Run executes one full batch. It blocks until the batch completes, is
// cancelled, or fails. Images produced before a failure or cancellation are
// preserved in the returned result; cancellation is not an error.
func (s *Service) Run(ctx context.Context, req model.BatchRequest) (model.BatchResult, error) {
	var res model.BatchResult

	if err := req.Validate(); err != nil {
		return res, err
	}
	if s.api == nil || s.store == nil {
		return res, errors.New("service is missing its API client or store")
	}
	if err := s.api.Ping(ctx); err != nil {
		return res, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}

	if err := s.state.Begin(req.Task, req.Count, req.ExpectedStages()); err != nil {
		if errors.Is(err, progress.ErrActive) {
			return res, ErrBusy
		}
		return res, err
	}
	defer s.state.Finish()
	s.cancel.Reset()

	batchID := uuid.NewString()[:8]
	blog := log.WithFields(log.Fields{"batch_id": batchID, "task": req.Task, "count": req.Count})
	blog.Info("batch started")
	s.emitUpdate(progress.Update{
		BatchID: batchID, Phase: progress.PhaseStarting, Total: req.Count,
		Message: "Starting batch",
	})

	s.emitUpdate(progress.Update{
		BatchID: batchID, Phase: progress.PhaseModel, Total: req.Count,
		Message: "Resolving model",
	})
	title, err := sdapi.EnsureModel(ctx, s.api, s.keyword)
	if err != nil {
		return s.fail(batchID, blog, res, fmt.Errorf("resolve model: %w", err))
	}
	blog.WithField("model", title).Debug("model resolved")

	prep, err := s.prepare(req.ImagePath, s.gen.MaxSide)
	if err != nil {
		return s.fail(batchID, blog, res, err)
	}
	pos, neg := s.prompts.Build(ctx, req.Hint)

	for i := 0; i < req.Count; i++ {
		if s.cancel.Requested() {
			res.Cancelled = true
			blog.WithField("image", i).Info("batch cancelled by user")
			break
		}

		s.state.Advance(i)
		s.emitUpdate(progress.Update{
			BatchID: batchID, Phase: progress.PhaseGenerating, Image: i, Total: req.Count,
			Message: fmt.Sprintf("Generating image %d/%d", i+1, req.Count),
		})

		resp, err := s.api.Img2Img(ctx, buildRequest(req, s.gen, prep, pos, neg, i))
		if err != nil {
			if s.cancel.Requested() {
				res.Cancelled = true
				blog.WithField("image", i).Info("batch cancelled during generation")
				break
			}
			return s.fail(batchID, blog, res, fmt.Errorf("generate image %d: %w", i+1, err))
		}
		if s.cancel.Requested() {
			// The interrupt raced the request; the job finished anyway but
			// the user asked to stop, so the result is discarded.
			res.Cancelled = true
			blog.WithField("image", i).Info("batch cancelled, discarding in-flight result")
			break
		}
		if len(resp.Images) == 0 {
			return s.fail(batchID, blog, res, fmt.Errorf("generate image %d: server returned no images", i+1))
		}

		info := ""
		if texts := resp.Infotexts(); len(texts) > 0 {
			info = texts[0]
		}
		path, size, err := s.store.Save(resp.Images[0], info, i)
		if err != nil {
			return s.fail(batchID, blog, res, fmt.Errorf("save image %d: %w", i+1, err))
		}

		img := model.ResultImage{
			Path:       path,
			Bytes:      size,
			Seed:       SeedFor(req.Seed, i),
			Parameters: info,
		}
		res.Images = append(res.Images, img)
		blog.WithFields(log.Fields{"image": i, "path": path}).Info("image saved")
		s.emitImage(progress.ImageDone{BatchID: batchID, Index: i, Result: img})
	}

	s.state.Finish()
	phase := progress.PhaseCompleted
	msg := fmt.Sprintf("Completed: %d image(s)", len(res.Images))
	if res.Cancelled {
		phase = progress.PhaseCancelled
		msg = fmt.Sprintf("Cancelled: %d image(s) kept", len(res.Images))
	}
	blog.WithField("images", len(res.Images)).Info("batch finished")
	s.emitUpdate(progress.Update{
		BatchID: batchID, Phase: phase, Image: len(res.Images), Total: req.Count, Message: msg,
	})
	s.emitResult(progress.Result{BatchID: batchID, Images: res.Images, Cancelled: res.Cancelled})
	return res, nil
}

// fail clears the running state and reports the terminal error, preserving
// whatever the batch produced before it broke.
func (s *Service) fail(batchID string, blog *log.Entry, res model.BatchResult, err error) (model.BatchResult, error) {
	s.state.Finish()
	blog.WithError(err).Error("batch failed")
	s.emitUpdate(progress.Update{
		BatchID: batchID, Phase: progress.PhaseError, Image: len(res.Images),
		Message: err.Error(),
	})
	s.emitResult(progress.Result{BatchID: batchID, Images: res.Images, Err: err})
	return res, err
}

func (s *Service) emitUpdate(u progress.Update) {
	if s.reporter != nil {
		s.reporter.Update(u)
	}
}

func (s *Service) emitImage(i progress.ImageDone) {
	if s.reporter != nil {
		s.reporter.Image(i)
	}
}

func (s *Service) emitResult(r progress.Result) {
	if s.reporter != nil {
		s.reporter.Result(r)
	}
}
