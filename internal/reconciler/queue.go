package reconciler

import (
	"context"
	"sync"
)

// workQueue implements ReconcileQueue with per-name serialisation.
//
// At most one request per name is ready or processing at any time. Further
// requests for that name wait in a FIFO backlog and are released one at a
// time by Done. Every request is kept: events are never coalesced, since each
// one carries a delivery that must be settled.
type workQueue struct {
	mu sync.Mutex

	// ready holds requests a worker may take, in FIFO order
	ready []ReconcileRequest

	// active tracks names with a request in ready or being processed
	active map[string]bool

	// backlog holds requests waiting for their name to become inactive
	backlog map[string][]ReconcileRequest

	// cond is used for blocking Get operations
	cond *sync.Cond

	// shuttingDown indicates the queue is stopping
	shuttingDown bool
}

// NewQueue creates a new reconciliation queue.
func NewQueue() ReconcileQueue {
	return newWorkQueue()
}

func newWorkQueue() *workQueue {
	q := &workQueue{
		ready:   make([]ReconcileRequest, 0),
		active:  make(map[string]bool),
		backlog: make(map[string][]ReconcileRequest),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Add appends a request to the queue.
func (q *workQueue) Add(req ReconcileRequest) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.shuttingDown {
		return false
	}

	if q.active[req.Name] {
		q.backlog[req.Name] = append(q.backlog[req.Name], req)
		return true
	}

	q.active[req.Name] = true
	q.ready = append(q.ready, req)
	q.cond.Signal()
	return true
}

// Get retrieves the next request, blocking if necessary.
func (q *workQueue) Get(ctx context.Context) (ReconcileRequest, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.ready) == 0 && !q.shuttingDown {
		select {
		case <-ctx.Done():
			return ReconcileRequest{}, false
		default:
		}

		// Wake the waiter on cancellation; done releases the goroutine
		// after a normal wakeup from Add, Done or Shutdown.
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				q.mu.Lock()
				q.cond.Broadcast()
				q.mu.Unlock()
			case <-done:
			}
		}()

		q.cond.Wait()
		close(done)

		select {
		case <-ctx.Done():
			return ReconcileRequest{}, false
		default:
		}
	}

	if len(q.ready) == 0 {
		return ReconcileRequest{}, false
	}

	req := q.ready[0]
	q.ready = q.ready[1:]
	return req, true
}

// Done marks a request as completed.
func (q *workQueue) Done(req ReconcileRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()

	waiting := q.backlog[req.Name]
	if len(waiting) == 0 {
		delete(q.backlog, req.Name)
		delete(q.active, req.Name)
		return
	}

	next := waiting[0]
	if len(waiting) == 1 {
		delete(q.backlog, req.Name)
	} else {
		q.backlog[req.Name] = waiting[1:]
	}
	q.ready = append(q.ready, next)
	q.cond.Signal()
}

// Len returns the number of requests not yet handed to a worker.
func (q *workQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.ready)
	for _, waiting := range q.backlog {
		n += len(waiting)
	}
	return n
}

// Shutdown stops the queue and drains every request that was never started.
// Ready requests come first, followed by each name's backlog in order.
func (q *workQueue) Shutdown() []ReconcileRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.shuttingDown = true

	drained := append([]ReconcileRequest(nil), q.ready...)
	for _, waiting := range q.backlog {
		drained = append(drained, waiting...)
	}
	q.ready = nil
	q.backlog = make(map[string][]ReconcileRequest)

	q.cond.Broadcast()
	return drained
}
