package service

import (
	"context"
	"sync"
)

// identityQueue tracks exclusivity for one signing identity: whether it is
// held, and the arrival-ordered waiters.
type identityQueue struct {
	busy    bool
	waiters []chan struct{}
}

// FIFOSerializer implements ports.OperationSerializer with an explicit
// waiter queue per identity. A bare mutex would serialize correctly but
// makes no ordering promise under contention; the queue hands exclusivity
// to waiters strictly in arrival order.
type FIFOSerializer struct {
	mu     sync.Mutex
	queues map[string]*identityQueue
}

// NewFIFOSerializer creates an empty serializer.
func NewFIFOSerializer() *FIFOSerializer {
	return &FIFOSerializer{queues: make(map[string]*identityQueue)}
}

// WithExclusive runs fn while holding exclusive access for identityID.
// Callers blocked in the queue observe context cancellation and leave the
// queue without disturbing the order of the others.
func (s *FIFOSerializer) WithExclusive(ctx context.Context, identityID string, fn func() error) error {
	if err := s.acquire(ctx, identityID); err != nil {
		return err
	}
	defer s.release(identityID)
	return fn()
}

func (s *FIFOSerializer) acquire(ctx context.Context, identityID string) error {
	s.mu.Lock()
	q := s.queues[identityID]
	if q == nil {
		q = &identityQueue{}
		s.queues[identityID] = q
	}
	if !q.busy {
		q.busy = true
		s.mu.Unlock()
		return nil
	}

	ch := make(chan struct{})
	q.waiters = append(q.waiters, ch)
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		for i, w := range q.waiters {
			if w == ch {
				q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
				s.mu.Unlock()
				return ctx.Err()
			}
		}
		s.mu.Unlock()
		// The grant raced with the cancellation and was already handed to
		// us; take it and pass it straight on.
		<-ch
		s.release(identityID)
		return ctx.Err()
	}
}

func (s *FIFOSerializer) release(identityID string) {
	s.mu.Lock()
	q := s.queues[identityID]
	if q == nil {
		s.mu.Unlock()
		return
	}
	if len(q.waiters) > 0 {
		next := q.waiters[0]
		q.waiters = q.waiters[1:]
		s.mu.Unlock()
		close(next)
		return
	}
	q.busy = false
	delete(s.queues, identityID)
	s.mu.Unlock()
}
