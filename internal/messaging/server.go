// Package messaging embeds a NATS server that carries frames out and control
// commands in.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

var ErrNotStarted = errors.New("nats server not started")

type NatsServer struct {
	ns    *server.Server
	conn  *nats.Conn
	ready chan struct{}

	startupTimeout time.Duration
	host           string
	port           int
}

func NewNatsServer(opts ...NatsServerOpt) (*NatsServer, error) {
	s := &NatsServer{
		startupTimeout: 10 * time.Second,
		host:           "127.0.0.1",
		port:           server.DEFAULT_PORT,
		ready:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	ns, err := server.NewServer(&server.Options{
		Host:   s.host,
		Port:   s.port,
		NoSigs: true, // Let the application handle signals
	})
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	s.ns = ns

	return s, nil
}

func (n *NatsServer) Start(ctx context.Context) error {
	n.ns.Start()

	if !n.ns.ReadyForConnections(n.startupTimeout) {
		n.ns.Shutdown()
		return fmt.Errorf("nats server not ready for connections")
	}

	// Internal client connection used for publishing and subscriptions
	conn, err := nats.Connect(n.ns.ClientURL(), nats.Name("atlas"))
	if err != nil {
		n.ns.Shutdown()
		return fmt.Errorf("creating nats client connection: %w", err)
	}
	n.conn = conn
	close(n.ready)

	slog.InfoContext(ctx, "nats server listening", "addr", n.ns.Addr())

	<-ctx.Done()
	if err := n.conn.Drain(); err != nil {
		slog.WarnContext(ctx, "draining nats connection", "error", err)
	}
	n.ns.Shutdown()
	n.ns.WaitForShutdown()

	return nil
}

// Ready is closed once the server accepts connections.
func (n *NatsServer) Ready() <-chan struct{} {
	return n.ready
}

// ClientURL is the address clients connect to.
func (n *NatsServer) ClientURL() string {
	return n.ns.ClientURL()
}

func (n *NatsServer) started() bool {
	select {
	case <-n.ready:
		return true
	default:
		return false
	}
}

// Subscribe calls handler for every message on subject. When the message
// carries a reply subject the handler's result is sent back.
// Returns an unsubscribe function to remove the subscription.
func (n *NatsServer) Subscribe(subject string, handler func(data []byte) []byte) (func(), error) {
	if !n.started() {
		return nil, ErrNotStarted
	}
	sub, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		resp := handler(msg.Data)
		if msg.Reply == "" {
			return
		}
		if err := msg.Respond(resp); err != nil {
			slog.Warn("responding to nats request", "subject", subject, "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", subject, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Publish sends a message to the given subject
func (n *NatsServer) Publish(subject string, data []byte) error {
	if !n.started() {
		return ErrNotStarted
	}
	return n.conn.Publish(subject, data)
}
