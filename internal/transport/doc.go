// Package transport carries lifecycle event payloads between the upstream API
// and the worker.
//
// AMQPTransport consumes from a RabbitMQ queue with manual acknowledgement;
// AMQPPublisher writes to the same queue through the default exchange.
// MemoryTransport implements both sides in-process for tests and dry runs.
//
// Connection loss is not retried here: the delivery channel closes and the
// worker exits so its supervisor can restart it.
package transport
