package listener

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"golang.org/x/crypto/ssh"
)

// SshListener serves the console over ssh without authentication. A shell
// request opens an interactive console; an exec request runs one command, so
// `ssh host status` prints the current year and exits.
type SshListener struct {
	addr    string
	cm      *ConnectionManager
	hostKey ssh.Signer

	ready chan struct{}
	bound net.Addr
}

func NewSshListener(addr string, cm *ConnectionManager, hostKey ssh.Signer) *SshListener {
	return &SshListener{
		addr:    addr,
		cm:      cm,
		hostKey: hostKey,
		ready:   make(chan struct{}),
	}
}

// Ready is closed once the listener accepts connections.
func (l *SshListener) Ready() <-chan struct{} {
	return l.ready
}

// Addr is the bound address. It is only valid after Ready.
func (l *SshListener) Addr() net.Addr {
	return l.bound
}

func (l *SshListener) Start(ctx context.Context) error {
	config := &ssh.ServerConfig{
		NoClientAuth: true,
	}
	config.AddHostKey(l.hostKey)

	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", l.addr, err)
	}
	l.bound = ln.Addr()
	close(l.ready)

	slog.InfoContext(ctx, "console listening", "protocol", "ssh", "addr", l.bound)

	// Sessions outlive ctx long enough to print the shutdown notice.
	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			slog.ErrorContext(ctx, "accepting ssh connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.serveConn(connCtx, conn, config)
		}()
	}
}

func (l *SshListener) serveConn(ctx context.Context, conn net.Conn, config *ssh.ServerConfig) {
	defer conn.Close()

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		slog.WarnContext(ctx, "ssh handshake", "remote", conn.RemoteAddr(), "error", err)
		return
	}
	defer sshConn.Close()

	slog.InfoContext(ctx, "console viewer connected", "protocol", "ssh", "remote", conn.RemoteAddr(), "client", string(sshConn.ClientVersion()))

	// Unblocks the channel loop below on shutdown.
	go func() {
		<-ctx.Done()
		sshConn.Close()
	}()

	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			newChan.Reject(ssh.UnknownChannelType, "only console sessions are served")
			continue
		}

		ch, requests, err := newChan.Accept()
		if err != nil {
			slog.WarnContext(ctx, "accepting ssh channel", "error", err)
			continue
		}

		l.serveChannel(ctx, ch, requests)
		ch.Close()
	}
}

// consoleStart is the first shell or exec request on a channel. command is
// empty for a shell.
type consoleStart struct {
	command string
}

func (l *SshListener) serveChannel(ctx context.Context, ch ssh.Channel, requests <-chan *ssh.Request) {
	starts := make(chan consoleStart, 1)
	go answerRequests(requests, starts)

	var start consoleStart
	select {
	case start = <-starts:
	case <-ctx.Done():
		return
	}

	var status uint32
	if start.command == "" {
		l.cm.AcceptConnection(ctx, newLineEndings(ch))
	} else if err := l.cm.RunCommand(ctx, ch, start.command); err != nil {
		slog.InfoContext(ctx, "console command failed", "protocol", "ssh", "command", start.command, "error", err)
		status = 1
	}
	exit := struct{ Status uint32 }{status}
	if _, err := ch.SendRequest("exit-status", false, ssh.Marshal(&exit)); err != nil {
		slog.DebugContext(ctx, "sending exit status", "error", err)
	}
}

// answerRequests replies to channel requests and reports the first shell or
// exec. PTYs are refused so clients keep local echo and line editing.
func answerRequests(in <-chan *ssh.Request, starts chan<- consoleStart) {
	started := false
	for req := range in {
		switch req.Type {
		case "shell", "exec":
			var start consoleStart
			if req.Type == "exec" {
				var payload struct{ Command string }
				if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
					req.Reply(false, nil)
					continue
				}
				start.command = payload.Command
			}
			req.Reply(!started, nil)
			if !started {
				started = true
				starts <- start
			}
		default:
			req.Reply(false, nil)
		}
	}
}
