package transport

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrAlreadySettled is returned when a memory delivery is acked or nacked twice.
var ErrAlreadySettled = errors.New("delivery already settled")

// NackRecord is a recorded negative acknowledgement.
type NackRecord struct {
	ID      string
	Requeue bool
}

// MemoryTransport is an in-process Transport and Publisher. Requeued
// deliveries go back to the end of the queue marked as redelivered.
type MemoryTransport struct {
	mu      sync.Mutex
	pending []*memoryDelivery
	notify  chan struct{}
	closed  bool

	acked  []string
	nacked []NackRecord
}

// NewMemoryTransport returns an empty in-memory queue.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{notify: make(chan struct{}, 1)}
}

// Publish implements Publisher.
func (m *MemoryTransport) Publish(_ context.Context, body []byte) error {
	_, err := m.PublishWithID(uuid.NewString(), body)
	return err
}

// PublishWithID enqueues body under a caller-chosen delivery ID.
func (m *MemoryTransport) PublishWithID(id string, body []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", ErrClosed
	}
	m.pending = append(m.pending, &memoryDelivery{owner: m, id: id, body: append([]byte(nil), body...)})
	m.signal()
	return id, nil
}

func (m *MemoryTransport) signal() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *MemoryTransport) pop() (*memoryDelivery, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pending) == 0 {
		return nil, m.closed
	}
	d := m.pending[0]
	m.pending = m.pending[1:]
	return d, false
}

// Consume implements Transport.
func (m *MemoryTransport) Consume(ctx context.Context) (<-chan Delivery, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			d, closed := m.pop()
			if d == nil {
				if closed {
					return
				}
				select {
				case <-ctx.Done():
					return
				case <-m.notify:
				}
				continue
			}

			select {
			case out <- d:
			case <-ctx.Done():
				m.restore(d)
				return
			}
		}
	}()
	return out, nil
}

// restore puts back a delivery that was popped but never handed out.
func (m *MemoryTransport) restore(d *memoryDelivery) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append([]*memoryDelivery{d}, m.pending...)
	m.signal()
}

// Close implements Transport and Publisher.
func (m *MemoryTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		m.signal()
	}
	return nil
}

// Acked returns the IDs of acknowledged deliveries in ack order.
func (m *MemoryTransport) Acked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acked...)
}

// Nacked returns the recorded negative acknowledgements.
func (m *MemoryTransport) Nacked() []NackRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]NackRecord(nil), m.nacked...)
}

// Pending returns the number of deliveries waiting to be consumed.
func (m *MemoryTransport) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

type memoryDelivery struct {
	owner       *MemoryTransport
	id          string
	body        []byte
	redelivered bool

	settled bool
}

func (d *memoryDelivery) ID() string        { return d.id }
func (d *memoryDelivery) Body() []byte      { return d.body }
func (d *memoryDelivery) Redelivered() bool { return d.redelivered }

func (d *memoryDelivery) Ack() error {
	m := d.owner
	m.mu.Lock()
	defer m.mu.Unlock()

	if d.settled {
		return ErrAlreadySettled
	}
	d.settled = true
	m.acked = append(m.acked, d.id)
	return nil
}

func (d *memoryDelivery) Nack(requeue bool) error {
	m := d.owner
	m.mu.Lock()
	defer m.mu.Unlock()

	if d.settled {
		return ErrAlreadySettled
	}
	d.settled = true
	m.nacked = append(m.nacked, NackRecord{ID: d.id, Requeue: requeue})
	if requeue && !m.closed {
		m.pending = append(m.pending, &memoryDelivery{owner: m, id: d.id, body: d.body, redelivered: true})
		m.signal()
	}
	return nil
}
