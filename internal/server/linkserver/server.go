package linkserver

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/calliope-space/telemhist/internal/telemetry/logger"
)

// Config configures the link server.
type Config struct {
	// Addr is the TCP listen address.
	Addr string

	// MaxFrame bounds accepted request frames. Defaults to
	// MaxFrameSize.
	MaxFrame int

	// RateLimit is the per-connection request rate in requests per
	// second. Zero disables limiting.
	RateLimit float64

	// RateBurst is the per-connection burst allowance.
	RateBurst int

	// Handler dispatches request frames. Required.
	Handler *Handler

	// Logger is the structured logger.
	Logger logger.Logger
}

// Server accepts ground link connections and serves request frames.
type Server struct {
	cfg      Config
	listener net.Listener
	logger   logger.Logger
	running  atomic.Bool
	wg       sync.WaitGroup
}

// New creates a link server.
func New(cfg Config) (*Server, error) {
	if cfg.Handler == nil {
		return nil, errors.New("linkserver: handler is required")
	}
	if cfg.Addr == "" {
		return nil, errors.New("linkserver: addr is required")
	}
	if cfg.MaxFrame <= 0 || cfg.MaxFrame > MaxFrameSize {
		cfg.MaxFrame = MaxFrameSize
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	return &Server{cfg: cfg, logger: cfg.Logger}, nil
}

// ListenAndServe starts the accept loop. It blocks until Shutdown.
func (s *Server) ListenAndServe() error {
	var err error
	s.listener, err = net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	s.running.Store(true)
	s.logger.Info("link server listening", "addr", s.cfg.Addr)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Addr returns the bound listen address, nil until the accept loop is
// up. The running flag orders the read against the listener write.
func (s *Server) Addr() net.Addr {
	if !s.running.Load() {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting connections and drains active ones,
// respecting the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var closeErr error
	if s.listener != nil {
		closeErr = s.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return closeErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	connID := ulid.MustNew(ulid.Now(), rand.Reader).String()
	ctx := logger.WithRequestID(context.Background(), connID)
	log := s.logger.With("conn_id", connID, "remote", conn.RemoteAddr().String())
	log.Debug("link connection opened")

	var limiter *rate.Limiter
	if s.cfg.RateLimit > 0 {
		burst := s.cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), burst)
	}

	var writeMu sync.Mutex
	send := func(payload []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return WriteFrame(conn, payload)
	}

	for {
		req, err := ReadFrame(conn, s.cfg.MaxFrame)
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug("link connection closed by peer")
			} else if s.running.Load() {
				log.Warn("link read failed", "error", err)
			}
			return
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
		}

		if err := s.cfg.Handler.Handle(ctx, req, send); err != nil {
			log.Warn("request handling failed", "error", err)
			return
		}
	}
}
