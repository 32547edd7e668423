// Package livereload implements a LiveReload protocol 7 server.
//
// Browsers connect with the livereload.js client, either through a browser
// extension or a <script> tag pointing at /livereload.js. After the hello
// handshake every Notify is pushed to them as a reload command; stylesheets
// are swapped in place (liveCSS), anything else reloads the page.
package livereload

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.trai.ch/glaze/internal/build"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
)

// ProtocolV7 is the only protocol the server speaks.
const ProtocolV7 = "http://livereload.com/protocols/official-7"

const (
	serverName        = "glaze"
	writeTimeout      = 5 * time.Second
	shutdownTimeout   = 2 * time.Second
	readHeaderTimeout = 10 * time.Second
)

//go:embed livereload.js
var clientScript []byte

var _ ports.Reloader = (*Server)(nil)

// Message is the envelope of every LiveReload command.
type Message struct {
	Command    string   `json:"command"`
	Protocols  []string `json:"protocols,omitempty"`
	ServerName string   `json:"serverName,omitempty"`
	Path       string   `json:"path,omitempty"`
	LiveCSS    bool     `json:"liveCSS,omitempty"`
}

// Server is a LiveReload server. The zero value is not usable; use NewServer.
type Server struct {
	logger   ports.Logger
	upgrader websocket.Upgrader

	listening atomic.Bool
	mu        sync.Mutex
	clients   map[*client]struct{}
	addr      string
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) send(msg Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(msg)
}

// NewServer creates a server that is not yet listening.
func NewServer(logger ports.Logger) *Server {
	return &Server{
		logger: logger,
		upgrader: websocket.Upgrader{
			// Pages are served by another server or from disk.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Listen binds addr and serves in the background until ctx is cancelled.
// Bind errors are returned directly.
func (s *Server) Listen(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrReloadServerFailed.Error()), "addr", addr)
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()
	s.listening.Store(true)

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("live reload server stopped: " + err.Error())
		}
	}()

	go func() {
		<-ctx.Done()
		s.listening.Store(false)
		s.closeClients()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return nil
}

// Addr returns the bound address, empty before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Clients returns the number of clients that completed the handshake.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Notify implements ports.Reloader.
func (s *Server) Notify(paths []string) {
	if !s.listening.Load() || len(paths) == 0 {
		return
	}

	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, p := range paths {
		msg := Message{Command: "reload", Path: p, LiveCSS: true}
		for _, c := range clients {
			if err := c.send(msg); err != nil {
				s.drop(c)
			}
		}
	}
}

// Router returns the HTTP routes of the server.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/livereload", s.handleSocket)
	r.HandleFunc("/livereload.js", handleScript).Methods(http.MethodGet)
	r.HandleFunc("/changed", s.handleChanged).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/", handleStatus).Methods(http.MethodGet)
	return r
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the request.
		return
	}
	c := &client{conn: conn}
	defer s.drop(c)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Command != "hello" {
			// "info" and friends carry nothing the server needs.
			continue
		}
		if !slices.Contains(msg.Protocols, ProtocolV7) {
			return
		}
		if err := c.send(Message{Command: "hello", Protocols: []string{ProtocolV7}, ServerName: serverName}); err != nil {
			return
		}
		s.mu.Lock()
		s.clients[c] = struct{}{}
		s.mu.Unlock()
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	_ = c.conn.Close()
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := s.clients
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()

	for c := range clients {
		_ = c.conn.Close()
	}
}

// changedRequest is the tiny-lr compatible body of POST /changed.
type changedRequest struct {
	Files []string `json:"files"`
}

type changedResponse struct {
	Clients int      `json:"clients"`
	Files   []string `json:"files"`
}

func (s *Server) handleChanged(w http.ResponseWriter, r *http.Request) {
	var files []string
	if q := r.URL.Query().Get("files"); q != "" {
		for _, f := range strings.Split(q, ",") {
			if f = strings.TrimSpace(f); f != "" {
				files = append(files, f)
			}
		}
	}
	if r.Method == http.MethodPost && r.ContentLength != 0 {
		var body changedRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		files = append(files, body.Files...)
	}

	s.Notify(files)
	writeJSON(w, changedResponse{Clients: s.Clients(), Files: files})
}

func handleScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	_, _ = w.Write(clientScript)
}

func handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{serverName: "Welcome", "version": build.Version})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
