package suggest

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Result is delivered once a request finishes.
type Result struct {
	Seq         uint64
	Suggestions []Suggestion
	Err         error
}

// Requester runs suggestion tasks one at a time.
type Requester struct {
	source Source
	logger *slog.Logger

	mu     sync.Mutex
	seq    uint64             // protected by mu
	cancel context.CancelFunc // protected by mu
	wg     sync.WaitGroup
}

// NewRequester creates a Requester over source. A nil logger discards output.
func NewRequester(source Source, logger *slog.Logger) *Requester {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Requester{source: source, logger: logger}
}

// Request starts a task for req and cancels any task still running. done is
// called exactly once from the task goroutine, unless the task is
// superseded or cancelled first, in which case it is never called.
// Validation errors are returned synchronously and start no task.
func (r *Requester) Request(ctx context.Context, req Request, done func(Result)) (uint64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.seq++
	seq := r.seq
	taskCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	r.logger.Debug("suggestion request started", "seq", seq, "placement", req.Placement, "goals", len(req.Goals))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()

		suggestions, err := r.source.Suggest(taskCtx, req)

		r.mu.Lock()
		current := r.seq == seq && taskCtx.Err() == nil
		if r.seq == seq {
			r.cancel = nil
		}
		r.mu.Unlock()

		if !current {
			r.logger.Debug("suggestion request superseded", "seq", seq)
			return
		}
		if err != nil {
			r.logger.Warn("suggestion request failed", "seq", seq, "error", err)
		}
		done(Result{Seq: seq, Suggestions: suggestions, Err: err})
	}()

	return seq, nil
}

// Await runs a request and blocks until it finishes or ctx is done.
func (r *Requester) Await(ctx context.Context, req Request) ([]Suggestion, error) {
	ch := make(chan Result, 1)
	if _, err := r.Request(ctx, req, func(res Result) { ch <- res }); err != nil {
		return nil, err
	}
	select {
	case res := <-ch:
		return res.Suggestions, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel stops the running task, if any, without delivering its result.
func (r *Requester) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.seq++
}

// Wait blocks until every started task goroutine has returned.
func (r *Requester) Wait() {
	r.wg.Wait()
}
