package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// commandRunner runs one shell command on the target and returns stdout.
type commandRunner interface {
	runCommand(cmd string) (string, error)
}

// sshProbe implements Probe for a remote Linux host. Every fact is one
// shell command whose output goes through the same parsers the local
// Linux probe uses.
type sshProbe struct {
	unsupportedProbe

	config     RemoteConfig
	runner     commandRunner
	breaker    *breaker
	cmdTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
	client *ssh.Client
}

// errNotConnected is returned by runCommand before connect or after Close.
var errNotConnected = errors.New("ssh client not connected")

func newSSHProbe(config RemoteConfig) (*sshProbe, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("host is required")
	}

	settings, err := loadSSHHostSettings(config.SSHConfigPath, config.Host)
	if err != nil {
		return nil, err
	}
	config = resolveRemoteConfig(config, settings)
	if config.User == "" {
		return nil, fmt.Errorf("user is required")
	}
	if config.AuthMethod == nil {
		return nil, fmt.Errorf("authentication method is required")
	}

	p := &sshProbe{
		unsupportedProbe: unsupportedProbe{name: "remote-linux"},
		config:           config,
		breaker:          newBreaker(defaultBreakerThreshold, defaultBreakerCooldown),
		cmdTimeout:       config.CommandTimeout,
	}
	p.runner = p
	return p, nil
}

// connect dials the host and verifies it runs Linux.
func (p *sshProbe) connect(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	clientConfig, err := p.buildSSHConfig()
	if err != nil {
		return fmt.Errorf("building ssh config: %w", err)
	}

	addr := net.JoinHostPort(p.config.Host, strconv.Itoa(p.config.Port))
	dialer := net.Dialer{Timeout: p.config.ConnectTimeout}
	conn, err := dialer.DialContext(p.ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, clientConfig)
	if err != nil {
		conn.Close()
		return fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}

	p.mu.Lock()
	p.client = ssh.NewClient(c, chans, reqs)
	p.mu.Unlock()

	kernel, err := p.runCommand("uname -s")
	if err != nil {
		p.Close()
		return fmt.Errorf("detecting remote OS: %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(kernel), "linux") {
		p.Close()
		return fmt.Errorf("unsupported remote OS: %s", strings.TrimSpace(kernel))
	}
	return nil
}

func (p *sshProbe) buildSSHConfig() (*ssh.ClientConfig, error) {
	auth, err := authMethods(p.config.AuthMethod)
	if err != nil {
		return nil, err
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if !p.config.InsecureIgnoreHostKey {
		hostKeyCallback, err = knownhosts.New(p.config.KnownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("loading known hosts %s: %w", p.config.KnownHostsPath, err)
		}
	}

	return &ssh.ClientConfig{
		User:            p.config.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         p.config.ConnectTimeout,
	}, nil
}

func authMethods(method AuthMethod) ([]ssh.AuthMethod, error) {
	switch auth := method.(type) {
	case PasswordAuth:
		return []ssh.AuthMethod{ssh.Password(auth.Password)}, nil
	case KeyAuth:
		key, err := os.ReadFile(auth.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("reading private key: %w", err)
		}
		var signer ssh.Signer
		if auth.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(key, []byte(auth.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(key)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing private key: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	case AgentAuth:
		socket := os.Getenv("SSH_AUTH_SOCK")
		if socket == "" {
			return nil, fmt.Errorf("SSH_AUTH_SOCK not set")
		}
		// The agent is dialled lazily, when the handshake asks for keys.
		return []ssh.AuthMethod{ssh.PublicKeysCallback(func() ([]ssh.Signer, error) {
			conn, err := net.Dial("unix", socket)
			if err != nil {
				return nil, fmt.Errorf("connecting to ssh agent: %w", err)
			}
			defer conn.Close()
			return agent.NewClient(conn).Signers()
		})}, nil
	default:
		return nil, fmt.Errorf("unsupported auth method type: %T", auth)
	}
}

// runCommand executes cmd in a fresh session, killing it on timeout.
func (p *sshProbe) runCommand(cmd string) (string, error) {
	p.mu.RLock()
	client := p.client
	p.mu.RUnlock()

	if client == nil {
		return "", errNotConnected
	}

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmd)
	}()

	select {
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("%s: %w (stderr: %s)", cmd, err, strings.TrimSpace(stderr.String()))
		}
		return stdout.String(), nil
	case <-time.After(p.cmdTimeout):
		_ = session.Signal(ssh.SIGKILL)
		return "", fmt.Errorf("%s: %w after %v", cmd, context.DeadlineExceeded, p.cmdTimeout)
	case <-p.ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return "", p.ctx.Err()
	}
}

func (p *sshProbe) Close() error {
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		err := p.client.Close()
		p.client = nil
		return err
	}
	return nil
}

// run executes cmd through the runner and classifies a failure for fact.
func (p *sshProbe) run(fact Fact, cmd string) (string, error) {
	if p.breaker != nil && !p.breaker.allow() {
		return "", probeFailure(fact, CodeNetworkError, errBreakerOpen)
	}
	out, err := p.runner.runCommand(cmd)
	if p.breaker != nil {
		p.breaker.record(isTransportError(err))
	}
	if err != nil {
		return "", remoteFailure(fact, err)
	}
	return out, nil
}

func remoteFailure(fact Fact, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return probeFailure(fact, CodeTimeout, err)
	case errors.Is(err, errNotConnected), errors.Is(err, context.Canceled):
		return probeFailure(fact, CodeNetworkError, err)
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return probeFailure(fact, CodeIOError, err)
	}
	return probeFailure(fact, CodeNetworkError, err)
}

// isTransportError reports whether err means the command never completed.
// A non-zero exit status proves the link works.
func isTransportError(err error) bool {
	if err == nil {
		return false
	}
	var exitErr *ssh.ExitError
	return !errors.As(err, &exitErr)
}

// shellEscape wraps s in single quotes for use in a remote command line.
func shellEscape(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
