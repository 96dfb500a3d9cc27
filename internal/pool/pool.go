// Package pool runs bounded batches of tasks on an ants worker pool.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/preppal/internal/logger"
)

// ErrPoolClosed is returned when tasks are submitted after Release.
var ErrPoolClosed = errors.New("pool closed")

// DefaultExpiry is how long an idle worker goroutine lives.
const DefaultExpiry = 10 * time.Second

// Pool is a named, fixed-capacity worker pool.
type Pool struct {
	name string
	pool *ants.Pool
}

// New creates a pool running at most size tasks at once.
func New(name string, size int) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool %s: size must be positive, got %d", name, size)
	}
	p, err := ants.NewPool(size,
		ants.WithExpiryDuration(DefaultExpiry),
		ants.WithNonblocking(false),
		ants.WithPanicHandler(func(r any) {
			logger.Error("worker panic in pool %s: %v", name, r)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create pool %s: %w", name, err)
	}
	logger.Debug("Worker pool %s created with capacity %d", name, size)
	return &Pool{name: name, pool: p}, nil
}

// Name returns the pool name.
func (p *Pool) Name() string {
	return p.name
}

// Cap returns the pool capacity.
func (p *Pool) Cap() int {
	return p.pool.Cap()
}

// Run executes task(ctx, i) for i in [0, n) and waits for all of them.
// The first failure cancels the context passed to the remaining tasks and is
// returned. A panicking task counts as a failure.
func (p *Pool) Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	if p.pool.IsClosed() {
		return ErrPoolClosed
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					fail(fmt.Errorf("task %d panicked: %v", i, r))
				}
			}()
			if ctx.Err() != nil {
				return
			}
			if err := task(ctx, i); err != nil {
				fail(err)
			}
		})
		if err != nil {
			wg.Done()
			if errors.Is(err, ants.ErrPoolClosed) {
				err = ErrPoolClosed
			}
			fail(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// Release closes the pool. Running tasks finish; new ones are rejected.
func (p *Pool) Release() {
	p.pool.Release()
	logger.Debug("Worker pool %s released", p.name)
}
