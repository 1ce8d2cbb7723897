package taskq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/xxxsen/common/database"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

var ErrQueueClosed = errors.New("storage queue closed")

type TaskFunc[T any] func(ctx context.Context, db database.IDatabase) (T, error)

type task struct {
	name   string
	submit time.Time
	run    func(db database.IDatabase)
}

// Queue 所有对db的访问都通过唯一的worker串行执行, 调用方通过Promise同步等待结果
type Queue struct {
	c      *config
	db     database.IDatabase
	ch     chan *task
	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func New(db database.IDatabase, opts ...Option) *Queue {
	c := applyOpts(opts...)
	q := &Queue{
		c:    c,
		db:   db,
		ch:   make(chan *task, c.size),
		done: make(chan struct{}),
	}
	go q.loop()
	return q
}

func (q *Queue) loop() {
	defer close(q.done)
	for t := range q.ch {
		start := time.Now()
		t.run(q.db)
		if q.c.observer != nil {
			q.c.observer(t.name, start.Sub(t.submit), time.Since(start))
		}
	}
}

func (q *Queue) push(t *task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.ch <- t
	return nil
}

// Close 停止接收新任务, 等待已入队的任务执行完成后关闭db
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()
	<-q.done
	if q.db == nil {
		return nil
	}
	return q.db.Close()
}

type Promise[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func (p *Promise[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// WaitOr 任务失败时返回def
func (p *Promise[T]) WaitOr(ctx context.Context, def T) T {
	v, err := p.Wait(ctx)
	if err != nil {
		return def
	}
	return v
}

func Submit[T any](ctx context.Context, q *Queue, name string, fn TaskFunc[T]) *Promise[T] {
	p := &Promise[T]{done: make(chan struct{})}
	t := &task{
		name:   name,
		submit: time.Now(),
	}
	t.run = func(db database.IDatabase) {
		defer close(p.done)
		defer func() {
			if r := recover(); r != nil {
				logutil.GetLogger(ctx).Error("storage task panic", zap.String("task", name), zap.Any("panic", r))
				p.err = fmt.Errorf("storage task:%s panic:%v", name, r)
			}
		}()
		p.val, p.err = fn(ctx, db)
	}
	if err := q.push(t); err != nil {
		p.err = err
		close(p.done)
	}
	return p
}

// Do 提交任务并等待结果
func Do[T any](ctx context.Context, q *Queue, name string, fn TaskFunc[T]) (T, error) {
	return Submit(ctx, q, name, fn).Wait(ctx)
}
