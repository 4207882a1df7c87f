package net

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"PlayBoard/internal/state"

	"github.com/gorilla/websocket"
)

const (
	MessageScene = "scene"

	writeWait  = 5 * time.Second
	peerBuffer = 8
)

// Message is one live-share frame: the host's whole scene after a change.
type Message struct {
	Type     string         `json:"type"`
	Snapshot state.Snapshot `json:"snapshot"`
	Lamport  uint64         `json:"lamport"`
	Site     string         `json:"site"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Peer is a connected viewer.
type Peer struct {
	conn *websocket.Conn
	send chan []byte
	addr string
}

// Hub fans scene messages out to every viewer. New viewers get the latest
// message as soon as they connect.
type Hub struct {
	mu     sync.RWMutex
	peers  map[*Peer]struct{}
	latest []byte
	closed bool
}

func NewHub() *Hub {
	return &Hub{peers: make(map[*Peer]struct{})}
}

// Len returns the number of connected viewers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Publish sends msg to every viewer. Viewers that cannot keep up are dropped.
func (h *Hub) Publish(msg Message) error {
	if msg.Type == "" {
		msg.Type = MessageScene
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("net: publish: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = data
	for p := range h.peers {
		select {
		case p.send <- data:
		default:
			log.Printf("[HOST] Dropping slow viewer %s", p.addr)
			h.removeLocked(p)
		}
	}
	return nil
}

func (h *Hub) add(p *Peer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.peers[p] = struct{}{}
	if h.latest != nil {
		p.send <- h.latest
	}
	log.Printf("[HOST] Viewer connected from %s", p.addr)
	return true
}

func (h *Hub) remove(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(p)
}

func (h *Hub) removeLocked(p *Peer) {
	if _, ok := h.peers[p]; !ok {
		return
	}
	delete(h.peers, p)
	close(p.send)
	log.Printf("[HOST] Viewer %s disconnected", p.addr)
}

// Close disconnects every viewer and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for p := range h.peers {
		h.removeLocked(p)
	}
}

// ServeHTTP upgrades the request and streams scene messages until the viewer
// goes away. Anything the viewer sends is ignored.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[HOST] Websocket upgrade failed: %v", err)
		return
	}

	p := &Peer{conn: ws, send: make(chan []byte, peerBuffer), addr: r.RemoteAddr}
	if !h.add(p) {
		ws.Close()
		return
	}

	go func() {
		defer h.remove(p)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	p.writeLoop()
}

func (p *Peer) writeLoop() {
	defer p.conn.Close()
	for data := range p.send {
		_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[HOST] Websocket write error to %s: %v", p.addr, err)
			return
		}
	}
	_ = p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}
