package transport

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"appdeployer/pkg/logging"
)

// Config describes the RabbitMQ queue the worker consumes from.
type Config struct {
	Host     string
	Port     int
	VHost    string
	Username string
	Password string
	Queue    string

	// Durable declares the queue durable and publishes persistent messages.
	Durable bool

	// Prefetch bounds the number of unacknowledged deliveries.
	Prefetch int
}

// withDefaults fills in the broker defaults for an unset port and vhost.
func (c Config) withDefaults() Config {
	if c.VHost == "" {
		c.VHost = "/"
	}
	if c.Port == 0 {
		c.Port = 5672
	}
	return c
}

// URL returns the AMQP connection URL.
func (c Config) URL() string {
	c = c.withDefaults()
	return amqp.URI{
		Scheme:   "amqp",
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
		Vhost:    c.VHost,
	}.String()
}

// Redacted describes the endpoint URL dials, without credentials.
func (c Config) Redacted() string {
	c = c.withDefaults()
	return fmt.Sprintf("%s vhost=%s queue=%s", net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), c.VHost, c.Queue)
}

// session is an open connection with a channel and the declared queue.
type session struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func dial(cfg Config) (*session, error) {
	conn, err := amqp.Dial(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Redacted(), err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Same arguments on both sides; a mismatch is a PRECONDITION_FAILED.
	if _, err := ch.QueueDeclare(cfg.Queue, cfg.Durable, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	return &session{conn: conn, ch: ch}, nil
}

func (s *session) close() error {
	var chErr error
	if s.ch != nil {
		chErr = s.ch.Close()
	}
	if s.conn != nil && !s.conn.IsClosed() {
		if err := s.conn.Close(); err != nil {
			return err
		}
	}
	return chErr
}

// AMQPTransport consumes deliveries from a RabbitMQ queue with manual acks.
type AMQPTransport struct {
	cfg Config

	mu      sync.Mutex
	session *session
	closed  bool
}

// NewAMQPTransport returns an unconnected transport; Consume dials.
func NewAMQPTransport(cfg Config) *AMQPTransport {
	return &AMQPTransport{cfg: cfg}
}

// Consume implements Transport.
func (t *AMQPTransport) Consume(ctx context.Context) (<-chan Delivery, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ErrClosed
	}
	if t.session != nil {
		return nil, fmt.Errorf("already consuming from %s", t.cfg.Queue)
	}

	s, err := dial(t.cfg)
	if err != nil {
		return nil, err
	}

	if t.cfg.Prefetch > 0 {
		if err := s.ch.Qos(t.cfg.Prefetch, 0, false); err != nil {
			_ = s.close()
			return nil, fmt.Errorf("failed to set prefetch: %w", err)
		}
	}

	consumer := "appdeployer-" + uuid.NewString()
	msgs, err := s.ch.ConsumeWithContext(ctx, t.cfg.Queue, consumer, false, false, false, false, nil)
	if err != nil {
		_ = s.close()
		return nil, fmt.Errorf("failed to consume from %s: %w", t.cfg.Queue, err)
	}
	t.session = s

	logging.Info("Transport", "Consuming from %s as %s", t.cfg.Redacted(), consumer)

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					logging.Warn("Transport", "Delivery channel for %s closed", t.cfg.Queue)
					return
				}
				select {
				case out <- newAMQPDelivery(d):
				case <-ctx.Done():
					// Not handed to the consumer; the broker redelivers it.
					_ = d.Nack(false, true)
					return
				}
			}
		}
	}()

	return out, nil
}

// Close implements Transport.
func (t *AMQPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	if t.session == nil {
		return nil
	}
	err := t.session.close()
	t.session = nil
	if err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	logging.Debug("Transport", "Closed connection to %s", t.cfg.Redacted())
	return nil
}

type amqpDelivery struct {
	d  amqp.Delivery
	id string
}

func newAMQPDelivery(d amqp.Delivery) *amqpDelivery {
	id := d.MessageId
	if id == "" {
		id = uuid.NewString()
	}
	return &amqpDelivery{d: d, id: id}
}

func (d *amqpDelivery) ID() string        { return d.id }
func (d *amqpDelivery) Body() []byte      { return d.d.Body }
func (d *amqpDelivery) Redelivered() bool { return d.d.Redelivered }
func (d *amqpDelivery) Ack() error        { return d.d.Ack(false) }

func (d *amqpDelivery) Nack(requeue bool) error {
	return d.d.Nack(false, requeue)
}

// AMQPPublisher publishes lifecycle events to the worker queue.
type AMQPPublisher struct {
	cfg Config

	mu      sync.Mutex
	session *session
	closed  bool
}

// NewAMQPPublisher returns an unconnected publisher; the first Publish dials.
func NewAMQPPublisher(cfg Config) *AMQPPublisher {
	return &AMQPPublisher{cfg: cfg}
}

// Publish implements Publisher.
func (p *AMQPPublisher) Publish(ctx context.Context, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.session == nil {
		s, err := dial(p.cfg)
		if err != nil {
			return err
		}
		p.session = s
	}

	mode := amqp.Transient
	if p.cfg.Durable {
		mode = amqp.Persistent
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: mode,
		MessageId:    uuid.NewString(),
		Body:         body,
	}
	if err := p.session.ch.PublishWithContext(ctx, "", p.cfg.Queue, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.cfg.Queue, err)
	}

	logging.Debug("Transport", "Published message %s to %s", msg.MessageId, p.cfg.Queue)
	return nil
}

// Close implements Publisher.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	if p.session == nil {
		return nil
	}
	err := p.session.close()
	p.session = nil
	return err
}
