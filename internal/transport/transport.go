// Package transport implements the WebSocket listener: it accepts
// connections, frames JSON packets in both directions, and hands decoded
// inbound frames to a caller-supplied handler. It never interprets packet
// types itself (per the framework's session router owning that).
package transport

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Connection is one live client socket. It exposes the narrow surface the
// rest of the server needs: identity, send, close.
type Connection struct {
	ws         *websocket.Conn
	send       chan []byte
	remoteAddr string

	mu            sync.Mutex
	authenticated bool
	username      string
}

func (c *Connection) RemoteAddr() string { return c.remoteAddr }

func (c *Connection) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

func (c *Connection) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// Authorize binds a username to this connection, marking it authenticated.
func (c *Connection) Authorize(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authenticated = true
	c.username = username
}

// Send encodes packet as JSON and queues it for delivery. A write to a dead
// or backed-up connection is silently dropped, per the transport's failure
// semantics.
func (c *Connection) Send(packet any) {
	data, err := json.Marshal(packet)
	if err != nil {
		log.Printf("[transport] failed to marshal outbound packet: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[transport] send buffer full for %s, dropping packet", c.remoteAddr)
	}
}

// SendRaw queues an already-encoded frame, used to flush a user's deferred
// packet queue at end of tick without a redundant marshal round-trip.
func (c *Connection) SendRaw(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Printf("[transport] send buffer full for %s, dropping packet", c.remoteAddr)
	}
}

func (c *Connection) Close() {
	select {
	case <-c.send:
	default:
	}
	c.ws.Close()
}

// Handler wires transport events back to the session layer. OnMessage
// receives the raw decoded JSON bytes; the session router is responsible
// for interpreting the "type" field.
type Handler struct {
	OnConnect    func(*Connection)
	OnDisconnect func(*Connection)
	OnMessage    func(*Connection, []byte)
}

// Server is the WebSocket listener.
type Server struct {
	handler Handler

	httpServer *http.Server

	mu      sync.RWMutex
	clients map[*Connection]struct{}
}

func New(handler Handler) *Server {
	return &Server{
		handler: handler,
		clients: make(map[*Connection]struct{}),
	}
}

// Start begins accepting connections at host:port. If certFile and keyFile
// are both non-empty, the listener serves TLS.
func (s *Server) Start(host string, port int, certFile, keyFile string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)

	addr := fmt.Sprintf("%s:%d", host, port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	useTLS := certFile != "" && keyFile != ""

	errCh := make(chan error, 1)
	go func() {
		var err error
		if useTLS {
			s.httpServer.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
			err = s.httpServer.ListenAndServeTLS(certFile, keyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	scheme := "ws"
	if useTLS {
		scheme = "wss"
	}
	log.Printf("[transport] listening on %s://%s/ws", scheme, addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("transport failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Stop closes the listener and every open connection.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*Connection]struct{})
	s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[transport] upgrade failed: %v", err)
		return
	}

	conn := &Connection{
		ws:         ws,
		send:       make(chan []byte, sendBufferSize),
		remoteAddr: r.RemoteAddr,
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	if s.handler.OnConnect != nil {
		s.handler.OnConnect(conn)
	}

	go s.writePump(conn)
	go s.readPump(conn)
}

func (s *Server) readPump(conn *Connection) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.ws.Close()
		if s.handler.OnDisconnect != nil {
			s.handler.OnDisconnect(conn)
		}
	}()

	conn.ws.SetReadLimit(maxMessageSize)
	conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		conn.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[transport] read error from %s: %v", conn.remoteAddr, err)
			}
			return
		}

		if !json.Valid(message) {
			continue // malformed JSON is silently ignored
		}

		if s.handler.OnMessage != nil {
			s.handler.OnMessage(conn, message)
		}
	}
}

func (s *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.ws.Close()
	}()

	for {
		select {
		case message, ok := <-conn.send:
			conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Broadcast delivers packet to every authenticated connection except
// exclude (which may be nil).
func (s *Server) Broadcast(packet any, exclude *Connection) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.clients {
		if conn == exclude || !conn.Authenticated() {
			continue
		}
		conn.Send(packet)
	}
}

// SendToUser delivers packet to the one connection currently bound to
// username, reporting whether such a connection was found.
func (s *Server) SendToUser(username string, packet any) bool {
	conn := s.GetClientByUsername(username)
	if conn == nil {
		return false
	}
	conn.Send(packet)
	return true
}

func (s *Server) GetClientByUsername(username string) *Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.clients {
		if conn.Username() == username {
			return conn
		}
	}
	return nil
}
