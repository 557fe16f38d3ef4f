package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// message type constants for websocket communication
const (
	// is sent after a consume, refund or reset changed the account's counter
	TypeUsageUpdated = "usage_updated"

	// is sent when billing moved the account to another tier
	TypeTierChanged = "tier_changed"

	// is sent when an error occurs
	TypeError = "error"

	// is sent by clients to keep the connection alive
	TypePing = "ping"

	// is sent by server in response to ping
	TypePong = "pong"

	// is sent by server before shutdown
	TypeServerShutdown = "server_shutdown"
)

// client connection constants
const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// clients only send pings, anything larger is a misbehaving peer
	maxMessageSize = 4 * 1024

	sendBufferSize = 64
)

// hub connection limit constants
const (
	maxConnectionsPerAccount = 10
	maxConnectionsPerIP      = 20
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrTooManyAccount   = errors.New("too many connections for this account")
	ErrTooManyIP        = errors.New("too many connections from this address")
)

// represents a websocket message with typed payload
type Message struct {
	Type      string          `json:"type"`
	AccountID string          `json:"-"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// the account's counter after a change, limit and remaining are -1 when unbounded
type UsageUpdatedPayload struct {
	Period    string `json:"period"`
	Count     int64  `json:"count"`
	Limit     int64  `json:"limit"`
	Remaining int64  `json:"remaining"`
}

type TierChangedPayload struct {
	Tier string `json:"tier"`
}

// contains information about server shutdown
type ServerShutdownPayload struct {
	Reason string `json:"reason"`
}

// fans account events out to every open connection of that account
type Hub struct {
	accounts map[string]map[string]*Client

	Register   chan *Client
	Unregister chan *Client
	Publish    chan *Message

	accountConnections map[string]int
	ipConnections      map[string]int

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}
	mu           sync.RWMutex
}

// one websocket connection of an account
type Client struct {
	ID        string
	AccountID string
	IPAddress string

	conn   *websocket.Conn
	hub    *Hub
	send   chan []byte
	closed bool
	mu     sync.RWMutex
}
