package web

import (
	"sync"
	"time"

	"github.com/esteban-rocha/svgview"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var _ svgview.Display = (*Surface)(nil)

// Surface is a browser-backed display. Content pushed by the manager is
// fanned out to every connected websocket client; a client that connects
// later receives the latest content first.
type Surface struct {
	mu      sync.Mutex
	content string
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan string
	done chan struct{}
}

// NewSurface returns an empty Surface.
func NewSurface() *Surface {
	return &Surface{clients: make(map[*client]struct{})}
}

// SetContent implements svgview.Display. Slow clients only ever see the
// newest content; intermediate pushes are dropped.
func (s *Surface) SetContent(html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = html
	for c := range s.clients {
		c.offer(html)
	}
}

// Content returns the last content pushed into the surface.
func (s *Surface) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// Close disconnects every client.
func (s *Surface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		_ = c.conn.Close()
	}
}

func (s *Surface) attach(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan string, 1),
		done: make(chan struct{}),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
	if s.content != "" {
		c.offer(s.content)
	}
	return c
}

// detach removes c and returns the number of remaining clients.
func (s *Surface) detach(c *client) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.done)
		_ = c.conn.Close()
	}
	return len(s.clients)
}

// offer queues html, replacing anything not yet written. Callers hold the
// surface lock, so offer is the only sender.
func (c *client) offer(html string) {
	select {
	case <-c.send:
	default:
	}
	c.send <- html
}

func (c *client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case html := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(html)); err != nil {
				_ = c.conn.Close()
				return
			}
		}
	}
}

// readLoop discards client messages and returns when the connection closes.
func (c *client) readLoop() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
