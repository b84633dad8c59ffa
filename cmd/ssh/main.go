// Command ssh serves the night sky over SSH: every session gets its own sky.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/muesli/termenv"

	"github.com/tomz197/nightsky/internal/client"
	"github.com/tomz197/nightsky/internal/config"
	"github.com/tomz197/nightsky/internal/sky"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
)

func main() {
	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	configPath := config.GetEnv("SKY_CONFIG", "")

	logger, err := config.NewLogger(os.Stderr, config.GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "log level: %v\n", err)
		os.Exit(1)
	}

	opts, file, err := config.LoadOptions(configPath, config.GetEnv("SKY_PROFILE", ""))
	if err != nil {
		logger.Fatal("load options", "path", configPath, "err", err)
	}
	if len(file.Undecoded) > 0 {
		logger.Warn("unknown option keys", "keys", file.Undecoded)
	}
	logger.Info("SSH config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "profile", opts.Profile)

	sessions := newSessionSet()
	srv := &skyServer{opts: opts, sessions: sessions, logger: logger}

	sshOpts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			srv.middleware,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY so frames leave as soon as they are written
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		sshOpts = append(sshOpts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(sshOpts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	// End every sky so clients get their terminal restored before the connection closes
	if n := sessions.closeAll(ctx); n > 0 {
		logger.Warn("sessions did not end in time", "count", n)
	}

	if err := s.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// skyServer runs one client session per SSH connection.
type skyServer struct {
	opts     sky.Options
	sessions *sessionSet
	logger   *log.Logger
}

// middleware handles SSH sessions and runs the sky client.
func (srv *skyServer) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		logger := srv.logger.With("user", sess.User())
		profile := colorProfile(sess, pty.Term, sess.Environ())
		logger.Info("New sky session", "terminal", pty.Term, "colors", profile.Name(),
			"size", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

		ctx, done := srv.sessions.add(sess.Context())
		defer done()

		c, err := client.New(bufio.NewReader(sess), sess, client.Options{
			Width:        max(pty.Window.Width, 1),
			Height:       pty.Window.Height,
			Username:     sess.User(),
			Sky:          srv.opts,
			ColorProfile: profile,
			IdleTimeout:  config.InactivityDisconnectUser,
			Logger:       logger,
		})
		if err != nil {
			logger.Error("create session", "err", err)
			return
		}

		// Window changes reach the sky before its next frame
		go func() {
			for win := range winCh {
				c.Resize(win.Width, win.Height)
			}
		}()

		if err := c.Run(ctx); err != nil {
			logger.Error("Sky error", "err", err)
		}

		st := c.Renderer().Stats()
		logger.Info("Session ended", "frames", st.Frames)
		next(sess)
	}
}

// colorProfile detects the remote terminal's colour support from its TERM
// and environment, the way termenv does for a local terminal.
func colorProfile(w io.Writer, term string, environ []string) termenv.Profile {
	return termenv.NewOutput(w,
		termenv.WithEnvironment(sshEnviron{term: term, environ: environ}),
		termenv.WithTTY(true),
	).EnvColorProfile()
}

// sshEnviron serves a session's environment to termenv. TERM comes from the
// pty request, which clients send instead of a TERM variable.
type sshEnviron struct {
	term    string
	environ []string
}

func (e sshEnviron) Environ() []string {
	return e.environ
}

func (e sshEnviron) Getenv(key string) string {
	if key == "TERM" && e.term != "" {
		return e.term
	}
	for _, kv := range e.environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			return v
		}
	}
	return ""
}

// sessionSet tracks running sessions so shutdown can end them.
type sessionSet struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	cancels map[int]context.CancelFunc
	nextID  int
}

func newSessionSet() *sessionSet {
	return &sessionSet{cancels: make(map[int]context.CancelFunc)}
}

// add registers a session and returns its context and a function to call
// when the session ends.
func (s *sessionSet) add(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.cancels[id] = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.cancels, id)
			s.mu.Unlock()
			cancel()
			s.wg.Done()
		})
	}
}

// len returns the number of running sessions.
func (s *sessionSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cancels)
}

// closeAll cancels every session and waits for them to end or ctx to expire.
// It returns the number of sessions still running.
func (s *sessionSet) closeAll(ctx context.Context) int {
	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return 0
	case <-ctx.Done():
		return s.len()
	}
}
