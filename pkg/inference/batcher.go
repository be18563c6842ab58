package inference

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/df07/go-radiance-estimator/pkg/log"
)

// BatcherConfig controls how single-ray requests are coalesced
type BatcherConfig struct {
	MaxBatchSize int           // Flush once this many requests are pending
	MaxDelay     time.Duration // Flush at most this long after the first pending request
}

// DefaultBatcherConfig returns a configuration suited to one render worker per core
func DefaultBatcherConfig() BatcherConfig {
	return BatcherConfig{
		MaxBatchSize: 64,
		MaxDelay:     2 * time.Millisecond,
	}
}

type pendingRequest struct {
	ctx    context.Context
	req    Request
	result chan runResult
}

// Batcher implements Session on top of a BatchSession. Concurrent Run calls
// are collected into one RunBatch call; each caller still gets exactly its
// own output row.
type Batcher struct {
	backend BatchSession
	config  BatcherConfig
	logger  log.Logger

	requests chan *pendingRequest
	done     chan struct{}
	wg       sync.WaitGroup

	closeOnce    sync.Once
	closeErr     error
	drainTimeout time.Duration

	// ctx bounds backend calls; cancelled by Close
	ctx    context.Context
	cancel context.CancelFunc
}

// NewBatcher starts the batching loop
func NewBatcher(backend BatchSession, config BatcherConfig, logger log.Logger) *Batcher {
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = DefaultBatcherConfig().MaxBatchSize
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = DefaultBatcherConfig().MaxDelay
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Batcher{
		backend:  backend,
		config:   config,
		logger:   logger,
		requests: make(chan *pendingRequest),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,

		drainTimeout: drainTimeout,
	}

	b.wg.Add(1)
	go b.loop()
	return b
}

// Run queues req for the next batch and waits for its row
func (b *Batcher) Run(ctx context.Context, req Request) ([]float32, error) {
	p := &pendingRequest{ctx: ctx, req: req, result: make(chan runResult, 1)}

	select {
	case b.requests <- p:
	case <-b.done:
		return nil, ErrSessionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case result := <-p.result:
		return result.out, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the loop and closes the backend. A batch stuck in the backend
// is given the drain timeout to return; the backend is closed either way.
func (b *Batcher) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
		b.cancel()
		if !waitTimeout(&b.wg, b.drainTimeout) {
			b.logger.Warningf("inference batch still running %v after close", b.drainTimeout)
		}
		b.closeErr = b.backend.Close()
	})
	return b.closeErr
}

func (b *Batcher) loop() {
	defer b.wg.Done()

	for {
		var first *pendingRequest
		select {
		case first = <-b.requests:
		case <-b.done:
			return
		}

		batch := []*pendingRequest{first}
		timer := time.NewTimer(b.config.MaxDelay)
	collect:
		for len(batch) < b.config.MaxBatchSize {
			select {
			case p := <-b.requests:
				batch = append(batch, p)
			case <-timer.C:
				break collect
			case <-b.done:
				break collect
			}
		}
		timer.Stop()

		b.flush(batch)
	}
}

func (b *Batcher) flush(batch []*pendingRequest) {
	live := batch[:0]
	for _, p := range batch {
		if err := p.ctx.Err(); err != nil {
			p.result <- runResult{err: err}
			continue
		}
		live = append(live, p)
	}
	if len(live) == 0 {
		return
	}

	reqs := make([]Request, len(live))
	for i, p := range live {
		reqs[i] = p.req
	}

	b.logger.Debugf("running inference batch of %d", len(reqs))
	rows, err := b.backend.RunBatch(b.ctx, reqs)
	if err == nil && len(rows) != len(reqs) {
		err = fmt.Errorf("batch returned %d rows for %d requests", len(rows), len(reqs))
	}

	for i, p := range live {
		if err != nil {
			p.result <- runResult{err: err}
			continue
		}
		p.result <- runResult{out: rows[i]}
	}
}
