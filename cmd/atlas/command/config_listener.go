package command

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-service"
	"golang.org/x/crypto/ssh"

	"github.com/pixil98/go-atlas/internal/listener"
)

type ListenerType int

const (
	ListenerTypeTelnet ListenerType = iota
	ListenerTypeSSH
)

func (lt *ListenerType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "telnet":
		*lt = ListenerTypeTelnet
	case "ssh":
		*lt = ListenerTypeSSH
	default:
		return fmt.Errorf("unknown listener type: %s", text)
	}
	return nil
}

func (lt ListenerType) String() string {
	if lt == ListenerTypeSSH {
		return "ssh"
	}
	return "telnet"
}

// ListenerConfig opens a console port. Host defaults to every interface.
type ListenerConfig struct {
	Protocol    ListenerType `json:"protocol"`
	Host        string       `json:"host,omitempty"`
	Port        uint16       `json:"port"`
	HostKeyPath string       `json:"host_key_path,omitempty"`
}

func (cl *ListenerConfig) validate() error {
	el := errors.NewErrorList()

	if cl.Port == 0 {
		el.Add(fmt.Errorf("port must be set to a positive integer"))
	}
	if strings.Contains(cl.Host, ":") && net.ParseIP(cl.Host) == nil {
		el.Add(fmt.Errorf("host %q must not include a port", cl.Host))
	}
	if cl.HostKeyPath != "" && cl.Protocol != ListenerTypeSSH {
		el.Add(fmt.Errorf("host_key_path is only used by ssh listeners"))
	}

	return el.Err()
}

func (cl *ListenerConfig) addr() string {
	return net.JoinHostPort(cl.Host, strconv.Itoa(int(cl.Port)))
}

func (cl *ListenerConfig) BuildListener(cm *listener.ConnectionManager) (service.Worker, error) {
	switch cl.Protocol {
	case ListenerTypeTelnet:
		return listener.NewTelnetListener(cl.addr(), cm), nil
	case ListenerTypeSSH:
		hostKey, err := cl.hostKey()
		if err != nil {
			return nil, fmt.Errorf("setting up ssh host key: %w", err)
		}
		return listener.NewSshListener(cl.addr(), cm, hostKey), nil
	default:
		return nil, fmt.Errorf("unknown listener type: %v", cl.Protocol)
	}
}

// hostKey reads the configured key. Without one, a fresh key is generated and
// viewers see a new fingerprint on every restart.
func (cl *ListenerConfig) hostKey() (ssh.Signer, error) {
	if cl.HostKeyPath == "" {
		slog.Warn("ssh console has no host_key_path, using a key for this run only", "addr", cl.addr())
		return ephemeralHostKey()
	}

	pem, err := os.ReadFile(cl.HostKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading host key %q: %w", cl.HostKeyPath, err)
	}
	signer, err := ssh.ParsePrivateKey(pem)
	if err != nil {
		return nil, fmt.Errorf("parsing host key %q: %w", cl.HostKeyPath, err)
	}
	return signer, nil
}

func ephemeralHostKey() (ssh.Signer, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating host key: %w", err)
	}
	return ssh.NewSignerFromKey(key)
}
