package screen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-valuation/pkg/client"
	"github.com/goliatone/go-valuation/pkg/contract"
	"github.com/goliatone/go-valuation/pkg/form"
	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/normalize"
)

var (
	// ErrClosed is returned by every mutating call after Close.
	ErrClosed = errors.New("screen: closed")
	// ErrDiscarded is returned by Pending.Wait when the submission was
	// abandoned before it resolved.
	ErrDiscarded = errors.New("screen: submission discarded")
)

// Submitter performs one valuation call.
type Submitter interface {
	Submit(ctx context.Context, req model.ValuationRequest) model.Result
}

var _ Submitter = (*client.Client)(nil)

// Screen is one valuation form instance. It is safe for concurrent use.
type Screen struct {
	opts      Options
	submitter Submitter

	mu       sync.Mutex
	features model.PropertyFeatures
	display  model.DisplayModel
	inFlight bool
	epoch    uint64
	cancel   context.CancelFunc
	closed   bool
}

// New mounts a screen for opts.Page.
func New(submitter Submitter, options ...Option) (*Screen, error) {
	if submitter == nil {
		return nil, errors.New("screen: submitter is required")
	}
	opts := NewOptions(options...)
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	features, err := opts.Page.Features()
	if err != nil {
		return nil, err
	}
	opts.Logger = opts.Logger.With(
		slog.String("component", "valuation_screen"),
		slog.String("screen_id", opts.ID),
		slog.String("page", opts.Page.Name),
	)
	return &Screen{opts: opts, submitter: submitter, features: features}, nil
}

// ID identifies the screen.
func (s *Screen) ID() string { return s.opts.ID }

// Page returns the page binding.
func (s *Screen) Page() Page { return s.opts.Page }

// Features returns a copy of the current form state.
func (s *Screen) Features() model.PropertyFeatures {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.features
}

// Apply feeds events through the reducer. On error the state stays at the
// last valid transition and the error is returned for inline display.
func (s *Screen) Apply(events ...form.Event) (model.PropertyFeatures, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.features, ErrClosed
	}
	next, err := form.Apply(s.features, events...)
	s.features = next
	if err != nil {
		s.opts.Logger.Debug("form edit rejected", slog.Any("error", err))
	}
	return next, err
}

// InFlight reports whether a submission is outstanding.
func (s *Screen) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Display returns the latest presented result.
func (s *Screen) Display() model.DisplayModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display
}

// Dismiss clears a dismissible error banner and reports whether it did.
func (s *Screen) Dismiss() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.display.IsFailure() || !s.display.Dismissible {
		return false
	}
	s.display = model.DisplayModel{}
	return true
}

// Submit derives a request from the current state and starts the valuation
// call in the background. Local problems (incomplete features, a request the
// contract rejects) are returned before anything is sent. A call already in
// flight yields model.ErrSubmissionInProgress.
func (s *Screen) Submit(ctx context.Context) (*Pending, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.inFlight {
		s.opts.Logger.Info("submission rejected", slog.String("reason", string(model.SubmissionInProgress)))
		return nil, model.ErrSubmissionInProgress
	}

	req, err := normalize.Normalize(s.features)
	if err != nil {
		return nil, err
	}
	if s.opts.Contract != nil {
		if err := s.opts.Contract.ValidateRequest(contract.OpPredict, req); err != nil {
			return nil, fmt.Errorf("screen: request rejected: %w", err)
		}
	}

	callCtx, cancel := context.WithCancel(ctx)
	s.epoch++
	s.inFlight = true
	s.cancel = cancel

	p := &Pending{epoch: s.epoch, request: req, done: make(chan struct{})}
	listingType := s.features.ListingType
	s.opts.Logger.Debug("submission started",
		slog.Uint64("epoch", p.epoch),
		slog.String("listing_type", string(listingType)),
		slog.String("geohash", s.features.Coordinates().Geohash(6)),
	)

	go func() {
		defer cancel()
		result := s.submitter.Submit(callCtx, req)
		s.resolve(p, listingType, result)
	}()
	return p, nil
}

// SubmitAndWait submits and blocks until the result is presented.
func (s *Screen) SubmitAndWait(ctx context.Context) (model.DisplayModel, error) {
	p, err := s.Submit(ctx)
	if err != nil {
		return model.DisplayModel{}, err
	}
	return p.Wait(ctx)
}

func (s *Screen) resolve(p *Pending, listingType model.ListingType, result model.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer close(p.done)

	if s.closed || s.epoch != p.epoch {
		p.err = ErrDiscarded
		s.opts.Logger.Debug("stale submission discarded", slog.Uint64("epoch", p.epoch), slog.Uint64("current_epoch", s.epoch))
		return
	}
	s.inFlight = false
	s.cancel = nil
	s.display = s.opts.Presenter.Present(result, listingType)
	p.display = s.display

	if f, ok := result.(*model.Failure); ok {
		s.opts.Logger.Warn("valuation failed", slog.String("kind", string(f.Kind)), slog.Int("status", f.StatusCode))
	}
}

// Abandon cancels the outstanding submission, if any. Its result will be
// discarded. The screen stays usable.
func (s *Screen) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abandonLocked()
}

func (s *Screen) abandonLocked() {
	s.epoch++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.inFlight = false
}

// Close unmounts the screen. An outstanding call is canceled and its result
// discarded. Close is idempotent.
func (s *Screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.abandonLocked()
	s.closed = true
}

// Pending is a submission in flight.
type Pending struct {
	epoch   uint64
	request model.ValuationRequest
	done    chan struct{}
	display model.DisplayModel
	err     error
}

// Epoch is the submission counter value this call was started under.
func (p *Pending) Epoch() uint64 { return p.epoch }

// Request is the wire request that was sent.
func (p *Pending) Request() model.ValuationRequest { return p.request }

// Done is closed once the call resolved or was discarded.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the submission resolves. A discarded submission returns
// ErrDiscarded.
func (p *Pending) Wait(ctx context.Context) (model.DisplayModel, error) {
	select {
	case <-p.done:
		return p.display, p.err
	case <-ctx.Done():
		return model.DisplayModel{}, ctx.Err()
	}
}
