// Package messaging runs an embedded NATS broker that carries
// per-session state updates from the publish path to every subscribed
// viewer connection.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// SessionSubject returns the broker subject carrying updates for one
// game session.
func SessionSubject(sessionID string) string {
	return fmt.Sprintf("session.%s", sessionID)
}

// Broker is an in-process NATS server plus an internal client
// connection for publish and subscribe.
type Broker struct {
	ns *server.Server

	// conn is set by the Start worker once the server is bound and read
	// from request goroutines.
	mu   sync.Mutex
	conn *nats.Conn

	startupTimeout time.Duration
	host           string
	port           int
}

func NewBroker(opts ...BrokerOpt) (*Broker, error) {
	b := &Broker{
		startupTimeout: 10 * time.Second,
		host:           "127.0.0.1",
	}

	for _, opt := range opts {
		opt(b)
	}

	ns, err := server.NewServer(&server.Options{
		Host:   b.host,
		Port:   b.port,
		NoSigs: true, // Let the application handle signals
	})

	b.ns = ns

	if err != nil {
		return nil, err
	}

	return b, nil
}

// Start runs the broker until the context is cancelled.
func (b *Broker) Start(ctx context.Context) error {
	b.ns.Start()

	if !b.ns.ReadyForConnections(b.startupTimeout) {
		return fmt.Errorf("nats server not ready for connections")
	}

	// ClientURL reflects the bound address, so port 0 works.
	conn, err := nats.Connect(b.ns.ClientURL())
	if err != nil {
		return fmt.Errorf("creating nats client connection: %w", err)
	}
	b.setClient(conn)

	slog.InfoContext(ctx, "message broker listening", "addr", b.ns.Addr())

	<-ctx.Done()
	conn.Close()
	b.ns.Shutdown()
	b.ns.WaitForShutdown()

	return nil
}

// Subscribe registers a handler for a subject. The returned function
// removes the subscription; it is safe to call more than once.
func (b *Broker) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	conn := b.client()
	if conn == nil {
		return nil, fmt.Errorf("broker not started")
	}
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Publish sends a message to the given subject. Delivery to each
// subscriber preserves publish order.
func (b *Broker) Publish(subject string, data []byte) error {
	conn := b.client()
	if conn == nil {
		return fmt.Errorf("broker not started")
	}
	return conn.Publish(subject, data)
}

func (b *Broker) client() *nats.Conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn
}

func (b *Broker) setClient(conn *nats.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conn = conn
}
