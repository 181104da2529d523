package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"reelvote/models"

	"github.com/gorilla/websocket"
)

// Hub fans live updates out to every connected widget. There is a single
// board, so no per-room bookkeeping: the only split is admin vs public
// clients, which see different leaderboards.
type Hub struct {
	clients     map[*Client]bool
	register    chan *Client
	unregister  chan *Client
	mutex       sync.RWMutex
	gameService *GameService
	voteService *VoteService
}

type Client struct {
	hub     *Hub
	id      string
	socket  *websocket.Conn
	send    chan []byte
	isAdmin bool
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub(gameService *GameService, voteService *VoteService) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		gameService: gameService,
		voteService: voteService,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client registered: %s (admin=%t) - Total clients: %d", client.id, client.isAdmin, len(h.clients))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("Client unregistered: %s - Total clients: %d", client.id, len(h.clients))
			}
			h.mutex.Unlock()
		}
	}
}

// BroadcastBoard pushes the current leaderboard to every client: admins
// get the unfiltered board, everyone else the featured-only one.
func (h *Hub) BroadcastBoard() {
	publicBoard, err := h.gameService.PublicBoard()
	if err != nil {
		log.Printf("Failed to build public board for broadcast: %v", err)
		return
	}

	adminBoard, err := h.gameService.AdminBoard()
	if err != nil {
		log.Printf("Failed to build admin board for broadcast: %v", err)
		adminBoard = publicBoard
	}

	publicData, err := json.Marshal(Message{Type: "board_update", Payload: publicBoard})
	if err != nil {
		log.Printf("Error marshaling board update: %v", err)
		return
	}
	adminData, err := json.Marshal(Message{Type: "board_update", Payload: adminBoard})
	if err != nil {
		log.Printf("Error marshaling admin board update: %v", err)
		return
	}

	h.mutex.Lock()
	for client := range h.clients {
		data := publicData
		if client.isAdmin {
			data = adminData
		}
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
	h.mutex.Unlock()
}

// BroadcastVoteEvent pushes one activity-feed entry to all clients.
func (h *Hub) BroadcastVoteEvent(entry *models.VoterLogEntry) {
	h.broadcastAll("vote_event", map[string]interface{}{
		"voter_name": entry.VoterName,
		"game_id":    entry.GameID,
		"game_name":  entry.GameName,
		"created_at": entry.CreatedAt,
	})
}

// BroadcastResetDone tells clients a reset finished so they can drop any
// locally rendered counts.
func (h *Hub) BroadcastResetDone(kind string) {
	h.broadcastAll("reset_done", map[string]interface{}{"kind": kind})
}

func (h *Hub) broadcastAll(messageType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling %s message: %v", messageType, err)
		return
	}

	h.mutex.Lock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
	h.mutex.Unlock()
}

// sendStateSync gives a single client the current board and recent feed,
// used on connect and on request.
func (h *Hub) sendStateSync(client *Client) {
	var board []BoardEntry
	var err error
	if client.isAdmin {
		board, err = h.gameService.AdminBoard()
	} else {
		board, err = h.gameService.PublicBoard()
	}
	if err != nil {
		log.Printf("Error building board for state sync to client %s: %v", client.id, err)
		return
	}

	feed, err := h.voteService.RecentFeed(10)
	if err != nil {
		log.Printf("Error loading feed for state sync to client %s: %v", client.id, err)
		feed = nil
	}

	data, err := json.Marshal(Message{
		Type: "state_sync",
		Payload: map[string]interface{}{
			"board": board,
			"feed":  feed,
		},
	})
	if err != nil {
		log.Printf("Error marshaling state sync message: %v", err)
		return
	}

	h.mutex.Lock()
	select {
	case client.send <- data:
	default:
		close(client.send)
		delete(h.clients, client)
	}
	h.mutex.Unlock()
}

func (h *Hub) RegisterClient(conn *websocket.Conn, isAdmin bool) *Client {
	client := &Client{
		hub:     h,
		id:      generateClientID(),
		socket:  conn,
		send:    make(chan []byte, 256),
		isAdmin: isAdmin,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	// New clients get the current state immediately.
	h.sendStateSync(client)

	return client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer func() {
		c.socket.Close()
	}()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}

		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}

	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "ping":
		response := Message{Type: "pong", Payload: "pong"}
		data, _ := json.Marshal(response)
		c.send <- data

	case "request_state":
		c.hub.sendStateSync(c)

	default:
		log.Printf("Unknown message type: %s from client %s", msg.Type, c.id)
	}
}

func generateClientID() string {
	return fmt.Sprintf("client_%d", time.Now().UnixNano())
}
