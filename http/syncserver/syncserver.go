// Package syncserver pushes filtered network snapshots to attached thin
// clients over websockets. Clients authenticate with their account
// credential, receive a full snapshot on attach and incremental network
// snapshots as state changes.
package syncserver

import (
	"net/http"
	"sync"
	"time"

	"perch/irc/networks"
	"perch/logger"
	"perch/sessions"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type (
	Server struct {
		directory *sessions.Directory

		mu      sync.Mutex
		clients map[string][]*client
	}

	client struct {
		conn *websocket.Conn
		send chan any
	}

	initPayload struct {
		Type     string                  `json:"type"`
		Networks []networks.FilteredView `json:"networks"`
	}

	networkPayload struct {
		Type    string                `json:"type"`
		Network networks.FilteredView `json:"network"`
	}
)

func New(directory *sessions.Directory) *Server {
	s := &Server{
		directory: directory,
		clients:   make(map[string][]*client),
	}
	directory.Notify = s.broadcast
	return s
}

// Serve blocks on the listen address.
func (s *Server) Serve(listen string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/sync", s.handleSync)
	logger.Info("Sync server listening", "listen", listen)
	return http.ListenAndServe(listen, mux)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	name, password, ok := r.BasicAuth()
	if !ok || !sessions.ValidName(name) {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	session, err := s.directory.LoadUser(name)
	if err != nil {
		logger.Session(name, r.RemoteAddr).Error("Error loading account", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if session == nil || !session.CheckPassword(password) {
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Session(name, r.RemoteAddr).Error("Error upgrading connection", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan any, 16)}
	s.attach(name, c)
	logger.Session(name, r.RemoteAddr).Info("Client attached")

	c.send <- initPayload{Type: "init", Networks: session.FilteredNetworks(time.Time{})}

	go c.writeLoop()
	// Reads only serve to detect the peer going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.detach(name, c)
	close(c.send)
	logger.Session(name, r.RemoteAddr).Info("Client detached")
}

func (c *client) writeLoop() {
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(payload); err != nil {
			c.conn.Close()
			return
		}
	}
	c.conn.Close()
}

// broadcast pushes one network's fresh snapshot to every client
// attached to the owning account.
func (s *Server) broadcast(account string, network *networks.Network) {
	view := network.FilteredClone(time.Time{})
	payload := networkPayload{Type: "network", Network: view}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients[account] {
		select {
		case c.send <- payload:
		default:
			// Slow client, drop the update. The next change
			// carries the full snapshot anyway.
		}
	}
}

func (s *Server) attach(account string, c *client) {
	s.mu.Lock()
	s.clients[account] = append(s.clients[account], c)
	s.mu.Unlock()
}

func (s *Server) detach(account string, c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attached := s.clients[account]
	for i, existing := range attached {
		if existing == c {
			s.clients[account] = append(attached[:i], attached[i+1:]...)
			return
		}
	}
}
