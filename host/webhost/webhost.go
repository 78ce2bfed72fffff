// Package webhost serves the particle field to browsers. Each websocket
// connection runs its own field; the browser sends pointer and viewport
// events as JSON and paints the binary draw lists it receives.
package webhost

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/field"
	"github.com/pthm-cable/particlefield/game"
	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/renderer"
	"github.com/pthm-cable/particlefield/wire"
)

//go:embed static/index.html
var indexHTML []byte

// maxMessageSize bounds a client message. Events are a few dozen bytes.
const maxMessageSize = 512

// ErrTooManySessions is reported to clients beyond the session cap.
var ErrTooManySessions = errors.New("webhost: too many sessions")

// Server hands out one field session per websocket connection.
type Server struct {
	cfg    *config.Config
	opts   game.Options
	log    *slog.Logger
	engine *gin.Engine

	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions int
	nextID   uint64
	wg       sync.WaitGroup
	done     chan struct{}
	stop     sync.Once
}

// New creates a server. opts is the template for every session; each one
// gets its own seed offset and output subdirectory.
func New(cfg *config.Config, opts game.Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		cfg:  cfg,
		opts: opts,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
		},
		done: make(chan struct{}),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.Sessions()})
	})
	r.GET("/ws", s.handleWS)
	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions
}

// Run listens on addr until ctx is done, then closes every session and
// waits for them to finish.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("web host listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.Close()
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close ends every session and waits for them to finish.
func (s *Server) Close() {
	s.stop.Do(func() { close(s.done) })
	s.wg.Wait()
}

// reserve claims a session slot.
func (s *Server) reserve() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit := s.cfg.Web.MaxSessions; limit > 0 && s.sessions >= limit {
		return 0, false
	}
	select {
	case <-s.done:
		return 0, false
	default:
	}
	s.sessions++
	s.nextID++
	s.wg.Add(1)
	return s.nextID, true
}

func (s *Server) release() {
	s.mu.Lock()
	s.sessions--
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Server) handleWS(c *gin.Context) {
	id, ok := s.reserve()
	if !ok {
		s.log.Warn("rejecting session", "error", ErrTooManySessions)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": ErrTooManySessions.Error()})
		return
	}
	defer s.release()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	log := s.log.With("session", id)
	if err := s.serve(conn, id, log); err != nil {
		log.Warn("session ended", "error", err)
		return
	}
	log.Info("session ended")
}

// serve runs one session. The field, its loop and every write to conn stay
// on this goroutine; a read pump feeds it decoded client events.
func (s *Server) serve(conn *websocket.Conn, id uint64, log *slog.Logger) error {
	opts := s.opts
	opts.Seed += int64(id)
	opts.Logger = log
	if opts.OutputDir != "" {
		opts.OutputDir = filepath.Join(opts.OutputDir, fmt.Sprintf("session-%03d", id))
	}
	g, err := game.NewGameWithOptions(s.cfg, opts)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer g.Unload()

	sess := newSession()
	// The viewport is empty until the client's first resize arrives.
	if err := g.Mount(sess); err != nil {
		return err
	}
	log.Info("session started")

	events := make(chan field.Event, 64)
	readErr := make(chan error, 1)
	quit := make(chan struct{})
	defer close(quit)
	conn.SetReadLimit(maxMessageSize)
	go readPump(conn, events, readErr, quit, log)

	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.Web.FrameRate))
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return closeConn(conn, websocket.CloseGoingAway, "server shutting down", s.cfg.Web.WriteTimeout)

		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("reading client events: %w", err)

		case ev := <-events:
			sess.Dispatch(ev)
			if ev.Kind == field.EventResize {
				// Keep the surface in step even when the field is detached.
				if w, h := sess.surface.Size(); w != ev.Width || h != ev.Height {
					sess.surface.Resize(ev.Width, ev.Height)
				}
			}

		case <-ticker.C:
			if sess.RunFrame() == 0 {
				continue
			}
			if dropped := sess.surface.enc.Dropped(); dropped > 0 {
				log.Debug("frame truncated", "dropped", dropped)
			}
			conn.SetWriteDeadline(time.Now().Add(s.cfg.Web.WriteTimeout))
			if err := conn.WriteMessage(websocket.BinaryMessage, sess.surface.enc.Bytes()); err != nil {
				return fmt.Errorf("writing frame: %w", err)
			}
			if g.Done() {
				return closeConn(conn, websocket.CloseNormalClosure, "tick limit reached", s.cfg.Web.WriteTimeout)
			}
		}
	}
}

// readPump decodes text messages until the connection fails. Malformed
// messages are logged and skipped.
func readPump(conn *websocket.Conn, events chan<- field.Event, errc chan<- error, quit <-chan struct{}, log *slog.Logger) {
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			errc <- err
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		ev, err := wire.DecodeEvent(data)
		if err != nil {
			log.Debug("ignoring client message", "error", err)
			continue
		}
		select {
		case events <- ev:
		case <-quit:
			return
		}
	}
}

func closeConn(conn *websocket.Conn, code int, reason string, timeout time.Duration) error {
	msg := websocket.FormatCloseMessage(code, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("closing connection: %w", err)
	}
	return nil
}

// requestLogger logs each request at debug level once it completes.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// surface is the client's viewport, drawn into a frame encoder.
type surface struct {
	w, h int
	enc  *wire.Encoder
}

func (s *surface) Size() (int, int) { return s.w, s.h }

func (s *surface) Resize(w, h int) { s.w, s.h = w, h }

func (s *surface) Canvas() renderer.Canvas { return s.enc }

// session is the field.Host for one connection.
type session struct {
	*host.Loop
	surface *surface
}

func newSession() *session {
	return &session{
		Loop:    host.NewLoop(),
		surface: &surface{enc: wire.NewEncoder()},
	}
}

// Surface implements field.Host.
func (s *session) Surface() field.Surface {
	return s.surface
}
