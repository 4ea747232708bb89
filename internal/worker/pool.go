package worker

import (
	"context"
	"sort"
	"sync"
)

// Task is a unit of work executed by a Pool
type Task[T any] func(ctx context.Context) T

type indexedTask[T any] struct {
	index int
	run   Task[T]
}

type indexedResult[T any] struct {
	index int
	value T
}

// Pool runs tasks on a fixed number of goroutines and returns their
// results in submission order
type Pool[T any] struct {
	workers    int
	tasks      chan indexedTask[T]
	results    chan indexedResult[T]
	collected  []indexedResult[T]
	submitted  int
	wg         sync.WaitGroup
	collecting sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a pool bound to ctx; cancelling ctx stops workers
// between tasks
func NewPool[T any](ctx context.Context, workers int) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool[T]{
		workers:    workers,
		tasks:      make(chan indexedTask[T], workers*2),
		results:    make(chan indexedResult[T], workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the workers
func (p *Pool[T]) Start() {
	p.collecting.Add(1)
	go func() {
		defer p.collecting.Done()
		for r := range p.results {
			p.collected = append(p.collected, r)
		}
	}()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool[T]) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok || p.ctx.Err() != nil {
				return
			}
			p.results <- indexedResult[T]{index: task.index, value: task.run(p.ctx)}
		}
	}
}

// Submit queues a task. It is dropped if the pool is already cancelled.
// Submit must not be called concurrently with itself or after Wait.
func (p *Pool[T]) Submit(task Task[T]) {
	t := indexedTask[T]{index: p.submitted, run: task}
	p.submitted++

	if p.ctx.Err() != nil {
		return
	}
	select {
	case <-p.ctx.Done():
	case p.tasks <- t:
	}
}

// Wait waits for all submitted tasks and returns one slot per submission,
// in submission order. Tasks that never ran leave the zero value.
func (p *Pool[T]) Wait() []T {
	close(p.tasks)
	p.wg.Wait()
	p.closeResults()
	p.collecting.Wait()
	p.cancelFunc()

	sort.Slice(p.collected, func(i, j int) bool {
		return p.collected[i].index < p.collected[j].index
	})

	out := make([]T, p.submitted)
	for _, r := range p.collected {
		out[r.index] = r.value
	}
	return out
}

// Shutdown cancels running work; Wait may still be called afterwards
func (p *Pool[T]) Shutdown() {
	p.cancelFunc()
}

func (p *Pool[T]) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}

// Map runs fn for every index in [0, n) on a pool of the given size and
// returns the results in index order
func Map[T any](ctx context.Context, workers, n int, fn func(ctx context.Context, i int) T) []T {
	pool := NewPool[T](ctx, workers)
	pool.Start()
	for i := 0; i < n; i++ {
		i := i
		pool.Submit(func(ctx context.Context) T { return fn(ctx, i) })
	}
	return pool.Wait()
}
