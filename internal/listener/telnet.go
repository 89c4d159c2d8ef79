package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"syscall"

	"github.com/iammegalith/telnet"
)

// TelnetListener serves the interactive console over telnet.
type TelnetListener struct {
	addr string
	cm   *ConnectionManager

	ready chan struct{}
	bound net.Addr
}

func NewTelnetListener(addr string, cm *ConnectionManager) *TelnetListener {
	return &TelnetListener{
		addr:  addr,
		cm:    cm,
		ready: make(chan struct{}),
	}
}

// Ready is closed once the listener accepts connections.
func (l *TelnetListener) Ready() <-chan struct{} {
	return l.ready
}

// Addr is the bound address. It is only valid after Ready.
func (l *TelnetListener) Addr() net.Addr {
	return l.bound
}

func (l *TelnetListener) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("%s is already in use (another atlas running?)", l.addr)
		}
		return fmt.Errorf("listening on %s: %w", l.addr, err)
	}
	l.bound = ln.Addr()

	// Sessions outlive ctx long enough to print the shutdown notice.
	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	viewers := &telnetViewers{ctx: connCtx, cm: l.cm}
	svr := telnet.NewServer(l.addr, viewers)

	stop := context.AfterFunc(ctx, func() {
		ln.Close()
		cancelConns()
	})
	defer stop()

	slog.InfoContext(ctx, "console listening", "protocol", "telnet", "addr", l.bound)
	close(l.ready)

	err = svr.Serve(ln)
	cancelConns()
	viewers.wait()

	if ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("serving telnet on %s: %w", l.addr, err)
}

// telnetViewers runs one console session per telnet connection. The server
// closes each connection once its session returns.
type telnetViewers struct {
	ctx context.Context
	cm  *ConnectionManager
	wg  sync.WaitGroup
}

func (v *telnetViewers) HandleTelnet(conn *telnet.Connection) {
	v.wg.Add(1)
	defer v.wg.Done()

	slog.InfoContext(v.ctx, "console viewer connected", "protocol", "telnet", "remote", conn.RemoteAddr())
	v.cm.AcceptConnection(v.ctx, newLineEndings(conn))
}

func (v *telnetViewers) wait() {
	v.wg.Wait()
}
