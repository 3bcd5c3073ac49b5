package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"appdeployer/internal/lifecycle"
	"appdeployer/internal/transport"
	"appdeployer/pkg/logging"
)

// ErrDeliveriesClosed is returned by Run when the transport stops delivering
// before the context is cancelled.
var ErrDeliveriesClosed = errors.New("delivery channel closed")

// Manager coordinates all reconciliation activities.
//
// It manages:
//   - The receive loop reading deliveries from the transport
//   - The per-name work queue and worker pool
//   - Settlement of every delivery (ack, or nack with requeue on shutdown)
//   - Status tracking per application
type Manager struct {
	mu sync.RWMutex

	config ManagerConfig

	// transport delivers lifecycle events
	transport transport.Transport

	// reconciler applies a single event
	reconciler Reconciler

	// queue is the work queue for reconciliation requests
	queue ReconcileQueue

	metrics *Metrics

	// statusTracker tracks reconciliation status for each application
	statusTracker map[string]*ReconcileStatus

	// wg tracks running workers
	wg sync.WaitGroup

	// running indicates Run is active
	running bool

	// consuming indicates the receive loop is reading deliveries
	consuming bool
}

// NewManager creates a new reconciliation manager.
func NewManager(config ManagerConfig, tr transport.Transport, rec Reconciler, metrics *Metrics) *Manager {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultWorkerCount
	}

	return &Manager{
		config:        config,
		transport:     tr,
		reconciler:    rec,
		queue:         NewQueue(),
		metrics:       metrics,
		statusTracker: make(map[string]*ReconcileStatus),
	}
}

// Run consumes deliveries until ctx is cancelled or the transport closes.
//
// On return every delivery handed to the manager has been settled: processed
// ones are acked (or nacked with requeue when interrupted) and queued ones
// that never reached a worker are nacked with requeue after them.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("manager already running")
	}
	m.running = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.running = false
		m.consuming = false
		m.mu.Unlock()
	}()

	deliveries, err := m.transport.Consume(ctx)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for i := 0; i < m.config.WorkerCount; i++ {
		m.wg.Add(1)
		go m.worker(ctx, i)
	}

	m.mu.Lock()
	m.consuming = true
	m.mu.Unlock()
	logging.Info("Manager", "Started with %d workers", m.config.WorkerCount)

	runErr := m.receive(ctx, deliveries)

	m.mu.Lock()
	m.consuming = false
	m.mu.Unlock()

	logging.Info("Manager", "Stopping reconciliation manager...")
	m.shutdown()
	logging.Info("Manager", "Reconciliation manager stopped")

	return runErr
}

// receive is the explicit receive loop: decode, then enqueue.
func (m *Manager) receive(ctx context.Context, deliveries <-chan transport.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrDeliveriesClosed
			}
			m.handleDelivery(d)
		}
	}
}

// handleDelivery decodes one delivery and queues it for its application.
func (m *Manager) handleDelivery(d transport.Delivery) {
	ev, err := lifecycle.Decode(d.Body())
	if err != nil {
		logging.Warn("Manager", "Dropping delivery %s: %v", d.ID(), err)
		m.metrics.RecordDropped(droppedReason(err))
		if ackErr := d.Ack(); ackErr != nil {
			logging.Error("Manager", ackErr, "Failed to ack dropped delivery %s", d.ID())
		}
		return
	}

	logging.Debug("Manager", "Received %s for %s (delivery %s, redelivered=%t)",
		ev.Action, ev.Application.Name, d.ID(), d.Redelivered())

	req := ReconcileRequest{
		Name:       ev.Application.Name,
		Event:      ev,
		Delivery:   d,
		ReceivedAt: time.Now(),
	}

	m.updateStatus(req, StatePending, nil)

	if !m.queue.Add(req) {
		m.requeueDelivery(req)
		return
	}
	m.metrics.SetQueueDepth(m.queue.Len())
}

// worker processes reconciliation requests from the queue.
func (m *Manager) worker(ctx context.Context, id int) {
	defer m.wg.Done()

	logging.Debug("Manager", "Worker %d started", id)

	for {
		req, ok := m.queue.Get(ctx)
		if !ok {
			logging.Debug("Manager", "Worker %d shutting down", id)
			return
		}
		m.metrics.SetQueueDepth(m.queue.Len())

		m.processRequest(ctx, req)
		m.queue.Done(req)
	}
}

// processRequest reconciles one request and settles its delivery.
func (m *Manager) processRequest(ctx context.Context, req ReconcileRequest) {
	m.metrics.AddInFlight(1)
	defer m.metrics.AddInFlight(-1)

	m.updateStatus(req, StateReconciling, nil)

	out := m.reconciler.Reconcile(ctx, req.Event)
	m.updateStatus(req, stateFor(out), &out)

	if out.Interrupted {
		m.requeueDelivery(req)
		return
	}
	if err := req.Delivery.Ack(); err != nil {
		logging.Error("Manager", err, "Failed to ack delivery %s for %s", req.Delivery.ID(), req.Name)
	}
}

func (m *Manager) requeueDelivery(req ReconcileRequest) {
	if err := req.Delivery.Nack(true); err != nil {
		logging.Error("Manager", err, "Failed to requeue delivery %s for %s", req.Delivery.ID(), req.Name)
		return
	}
	logging.Debug("Manager", "Requeued delivery %s for %s", req.Delivery.ID(), req.Name)
}

// shutdown stops the queue, waits for workers and then requeues unstarted
// work. In-flight deliveries are settled before the drained ones so that a
// transport replaying requeued deliveries in nack order keeps each name's
// events in arrival order.
func (m *Manager) shutdown() {
	drained := m.queue.Shutdown()
	m.metrics.SetQueueDepth(0)

	m.wg.Wait()

	if len(drained) > 0 {
		logging.Info("Manager", "Requeueing %d unstarted deliveries", len(drained))
	}
	for _, req := range drained {
		m.requeueDelivery(req)
		m.updateStatus(req, StateInterrupted, nil)
	}
}

func stateFor(out Outcome) ReconcileState {
	switch out.Result() {
	case ResultSuccess:
		if out.Event.Action == lifecycle.ActionDelete {
			return StateDeleted
		}
		return StateSynced
	case ResultPartial:
		return StatePartiallySynced
	case ResultInterrupted:
		return StateInterrupted
	default:
		return StateFailed
	}
}

// updateStatus updates the reconciliation status for an application.
func (m *Manager) updateStatus(req ReconcileRequest, state ReconcileState, out *Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status, ok := m.statusTracker[req.Name]
	if !ok {
		status = &ReconcileStatus{Name: req.Name}
		m.statusTracker[req.Name] = status
	}

	status.State = state
	status.LastAction = req.Event.Action
	if req.Event.Application.Image != "" {
		status.Image = req.Event.Application.Image
	}
	if req.Delivery != nil {
		status.LastDeliveryID = req.Delivery.ID()
	}

	if out == nil {
		return
	}

	finished := out.Finished
	status.LastReconcileTime = &finished
	status.ReconcileCount++
	status.LastError = ""
	if err := out.Err(); err != nil {
		status.LastError = err.Error()
	}
	if state == StatePartiallySynced || state == StateFailed {
		status.FailureCount++
	}

	status.Resources = status.Resources[:0]
	for _, r := range out.Resources {
		rs := ResourceStatus{Kind: r.Kind, Name: r.Name, Operation: r.Operation, Attempts: r.Attempts}
		if r.Err != nil {
			rs.Error = r.Err.Error()
		}
		status.Resources = append(status.Resources, rs)
	}
}

// GetStatus returns the reconciliation status for an application.
func (m *Manager) GetStatus(name string) (ReconcileStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, ok := m.statusTracker[name]
	if !ok {
		return ReconcileStatus{}, false
	}
	return copyStatus(status), true
}

// GetAllStatuses returns all reconciliation statuses sorted by name.
func (m *Manager) GetAllStatuses() []ReconcileStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]ReconcileStatus, 0, len(m.statusTracker))
	for _, status := range m.statusTracker {
		statuses = append(statuses, copyStatus(status))
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

func copyStatus(s *ReconcileStatus) ReconcileStatus {
	c := *s
	c.Resources = append([]ResourceStatus(nil), s.Resources...)
	if s.LastReconcileTime != nil {
		t := *s.LastReconcileTime
		c.LastReconcileTime = &t
	}
	return c
}

// IsRunning returns whether Run is active.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// IsReady reports whether the receive loop is consuming deliveries.
func (m *Manager) IsReady() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.consuming
}

// GetQueueLength returns the number of requests waiting for a worker.
func (m *Manager) GetQueueLength() int {
	return m.queue.Len()
}

// Metrics returns the manager's metrics, possibly nil.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}
