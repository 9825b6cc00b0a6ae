// Package diag serves process diagnostics over HTTP: health, the live
// threads with their loop statistics, and the dispatcher's view tree.
package diag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joeycumines/go-uiloop/dispatch"
	"github.com/joeycumines/go-uiloop/runloop"
	"github.com/joeycumines/logiface"
)

// Server is the diagnostics HTTP server.
type Server struct {
	process    *runloop.Process
	dispatcher *dispatch.Dispatcher
	logger     *logiface.Logger[logiface.Event]
	router     chi.Router

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New returns a server for p. The dispatcher is optional, without it the
// view tree is not served.
func New(p *runloop.Process, d *dispatch.Dispatcher, logger *logiface.Logger[logiface.Event]) *Server {
	s := &Server{process: p, dispatcher: d, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/threads", s.handleThreads)
	r.Get("/threads/{id}", s.handleThread)
	if s.dispatcher != nil {
		r.Get("/tree", s.handleTree)
	}
	return r
}

// Handler returns the router, for mounting elsewhere.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on addr and serves in the background, returning the bound
// address.
func (s *Server) Start(addr string) (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return nil, errors.New("diag: server already started")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("diag: listen: %w", err)
	}
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	s.server, s.listener = srv, ln
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Err().Err(err).Log(`diagnostics server failed`)
		}
	}()
	s.logger.Info().Str(`addr`, ln.Addr().String()).Log(`diagnostics server listening`)
	return ln.Addr(), nil
}

// Close shuts the server down, waiting for active requests until ctx is
// done.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.server, s.listener = nil, nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str(`method`, r.Method).
			Str(`path`, r.URL.Path).
			Int(`status`, ww.Status()).
			Dur(`duration`, time.Since(start)).
			Str(`request_id`, middleware.GetReqID(r.Context())).
			Log(`diagnostics request`)
	})
}

type health struct {
	Started time.Time `json:"started"`
	Status  string    `json:"status"`
	Process string    `json:"process"`
	Uptime  string    `json:"uptime"`
	Threads int       `json:"threads"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	h := health{
		Status:  `ok`,
		Process: s.process.ID().String(),
		Started: s.process.Started(),
		Uptime:  time.Since(s.process.Started()).Round(time.Millisecond).String(),
		Threads: len(s.process.Threads()),
	}
	status := http.StatusOK
	if s.process.Exiting() {
		h.Status = `exiting`
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, h)
}

func (s *Server) handleThreads(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.process.Threads())
}

func (s *Server) handleThread(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid thread id")
		return
	}
	for _, info := range s.process.Threads() {
		if info.ID == runloop.ThreadID(id) {
			s.writeJSON(w, http.StatusOK, info)
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "thread not found")
}

// ViewNode is a node of the serialized view tree.
type ViewNode struct {
	Name      string     `json:"name"`
	Bounds    SafeRect   `json:"bounds"`
	Children  []ViewNode `json:"children,omitempty"`
	Visible   bool       `json:"visible"`
	Receive   bool       `json:"receive"`
	Focusable bool       `json:"focusable,omitempty"`
	Focused   bool       `json:"focused,omitempty"`
}

// SafeFloat encodes Inf and NaN as strings, which JSON can't represent.
type SafeFloat float64

func (f SafeFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(v)
}

// SafeRect is a JSON-safe dispatch.Rect.
type SafeRect struct {
	X      SafeFloat `json:"x"`
	Y      SafeFloat `json:"y"`
	Width  SafeFloat `json:"width"`
	Height SafeFloat `json:"height"`
}

func serializeView(v dispatch.View, focus dispatch.View) ViewNode {
	b := v.Bounds()
	node := ViewNode{
		Name:      fmt.Sprint(v),
		Bounds:    SafeRect{SafeFloat(b.Origin.X), SafeFloat(b.Origin.Y), SafeFloat(b.Size.X), SafeFloat(b.Size.Y)},
		Visible:   v.Visible(),
		Receive:   v.Receive(),
		Focusable: v.Focusable(),
		Focused:   v == focus,
	}
	for _, c := range v.Children() {
		node.Children = append(node.Children, serializeView(c, focus))
	}
	return node
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	var node *ViewNode
	// the tree is read on the main loop, with the UI lock held
	ok := s.dispatcher.Sync(func() {
		if root := s.dispatcher.Root(); root != nil {
			n := serializeView(root, s.dispatcher.FocusView())
			node = &n
		}
	})
	switch {
	case !ok:
		s.writeError(w, http.StatusServiceUnavailable, "main loop unavailable")
	case node == nil:
		s.writeError(w, http.StatusNotFound, "no root view")
	default:
		s.writeJSON(w, http.StatusOK, node)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warning().Err(err).Log(`failed to encode diagnostics response`)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
