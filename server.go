// Package s3rver is a local, filesystem-backed emulator of an
// S3-compatible object storage HTTP service, intended for development
// and integration-test use.
package s3rver

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/fireboy1919/s3rver/internal/dispatch"
	"github.com/fireboy1919/s3rver/internal/events"
	"github.com/fireboy1919/s3rver/internal/store"
	"golang.org/x/sync/errgroup"
)

// Server is the main server struct. It owns a listener, the on-disk
// store, and the event bus; Close detaches subscribers and optionally
// wipes the data root.
type Server struct {
	mu       sync.Mutex
	opts     Options
	log      *slog.Logger
	store    *store.Store
	bus      *events.Bus
	listener net.Listener
	http     *http.Server
	eg       *errgroup.Group
	egCancel context.CancelFunc
}

// New resolves opts against defaults, opens the data store, and wires
// the dispatcher. It does not bind a listener; call Start or Run for
// that.
func New(opt ...Option) (*Server, error) {
	opts := defaultOptions()
	for _, o := range opt {
		o(&opts)
	}

	dir := opts.Directory
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "s3rver-")
		if err != nil {
			return nil, fmt.Errorf("s3rver: create data directory: %w", err)
		}
		opts.Directory = dir
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("s3rver: create data directory: %w", err)
	}

	level := charmlog.InfoLevel
	if opts.Silent {
		level = charmlog.WarnLevel
	}
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	logger := slog.New(handler)

	st, err := store.New(dir)
	if err != nil {
		return nil, fmt.Errorf("s3rver: open store: %w", err)
	}
	bus := events.New()
	st.SetPublisher(bus)

	h, err := dispatch.New(st, bus, dispatch.Config{
		Hostname:      opts.Hostname,
		HostSuffixes:  opts.HostSuffixes,
		CORSDisabled:  opts.CORSDisabled,
		DefaultCORS:   opts.CORS,
		IndexDocument: opts.IndexDocument,
		ErrorDocument: opts.ErrorDocument,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("s3rver: build dispatcher: %w", err)
	}

	return &Server{
		opts:  opts,
		log:   logger,
		store: st,
		bus:   bus,
		http:  &http.Server{Handler: h},
	}, nil
}

// Run creates and starts a server in one call, the way Minis3.Run did
// in the teacher. Callers are responsible for calling Close.
func Run(opt ...Option) (*Server, error) {
	s, err := New(opt...)
	if err != nil {
		return nil, err
	}
	if err := s.Start(); err != nil {
		return nil, err
	}
	return s, nil
}

// Start binds the listener and begins serving in the background.
// A zero Options.Port asks the OS for one; Addr/Port report the
// result once Start returns.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := net.Listen("tcp", fmt.Sprintf(":%d", s.opts.Port))
	if err != nil {
		return fmt.Errorf("s3rver: listen: %w", err)
	}
	s.listener = l

	ctx, cancel := context.WithCancel(context.Background())
	eg, egCtx := errgroup.WithContext(ctx)
	s.eg = eg
	s.egCancel = cancel

	useTLS := len(s.opts.Key) > 0 && len(s.opts.Cert) > 0
	if useTLS {
		cert, err := tls.X509KeyPair(s.opts.Cert, s.opts.Key)
		if err != nil {
			l.Close()
			return fmt.Errorf("s3rver: load TLS material: %w", err)
		}
		s.http.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
	}

	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	})

	eg.Go(func() error {
		var err error
		if useTLS {
			s.log.Info("serving HTTPS", "addr", l.Addr().String())
			err = s.http.ServeTLS(l, "", "")
		} else {
			s.log.Info("serving HTTP", "addr", l.Addr().String())
			err = s.http.Serve(l)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			return err
		}
		return nil
	})

	return nil
}

// Close stops accepting connections, drains in-flight requests,
// detaches every event subscriber, and applies the
// RemoveBucketsOnClose cleanup policy.
func (s *Server) Close() error {
	s.mu.Lock()
	eg, cancel := s.eg, s.egCancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var err error
	if eg != nil {
		err = eg.Wait()
	}
	s.bus.Close()

	if s.opts.RemoveBucketsOnClose {
		if rmErr := removeBucketsUnder(s.opts.Directory); rmErr != nil {
			s.log.Warn("failed to clean data directory on close", "error", rmErr)
		}
	}
	return err
}

func removeBucketsUnder(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if rmErr := os.RemoveAll(dir + string(os.PathSeparator) + e.Name()); rmErr != nil {
			return rmErr
		}
	}
	return nil
}

// Addr returns the address the server is listening on, empty if not
// yet started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Host returns the hostname the server was configured with.
func (s *Server) Host() string {
	return s.opts.Hostname
}

// Port returns the bound port, 0 if not yet started.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return 0
	}
	if tcpAddr, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return tcpAddr.Port
	}
	return 0
}

// Directory returns the data root the server persists below.
func (s *Server) Directory() string {
	return s.opts.Directory
}

// Events returns the server's event bus, for subscribing to
// ObjectCreated/ObjectRemoved notifications.
func (s *Server) Events() *events.Bus {
	return s.bus
}
