package tui

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	ws "codeberg.org/incdrops/server/internal/websocket"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

// creates a push client for the API at baseURL
func NewWSClient(baseURL, token string) *WSClient {
	return &WSClient{
		endpoint: wsEndpoint(baseURL),
		token:    token,
		events:   make(chan UsagePushMsg, 8),
	}
}

// http(s)://host -> ws(s)://host/api/v1/ws
func wsEndpoint(baseURL string) string {
	endpoint := strings.TrimRight(baseURL, "/")

	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint = "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		endpoint = "ws://" + strings.TrimPrefix(endpoint, "http://")
	}

	return endpoint + "/api/v1/ws"
}

// establishes the websocket connection
func (c *WSClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	if c.closed {
		return fmt.Errorf("client closed")
	}

	conn, _, err := websocket.DefaultDialer.Dial(c.endpoint+"?token="+url.QueryEscape(c.token), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.conn = conn
	c.connected = true

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go c.readPump(conn)
	go c.pingPump(conn)

	return nil
}

// sends periodic pings to keep the connection alive
func (c *WSClient) pingPump(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()

		if !c.connected || c.conn != conn {
			c.mu.Unlock()
			return
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec
		err := conn.WriteMessage(websocket.PingMessage, nil)
		c.mu.Unlock()

		if err != nil {
			return
		}
	}
}

// turns usage and tier pushes into events, returns when the connection drops
func (c *WSClient) readPump(conn *websocket.Conn) {
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.connected = false
			c.conn = nil
		}
		c.mu.Unlock()

		conn.Close() //nolint:errcheck,gosec
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec

		var msg ws.Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case ws.TypeUsageUpdated, ws.TypeTierChanged:
			select {
			case c.events <- UsagePushMsg{kind: msg.Type}:
			default:
				// a reload is already queued and will pick this change up
			}

		case ws.TypeServerShutdown:
			return
		}
	}
}

// returns whether the client is connected
func (c *WSClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// closes the websocket connection, the client cannot reconnect afterwards
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true

	if c.conn != nil {
		c.conn.WriteControl( //nolint:errcheck,gosec
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)
		c.conn.Close() //nolint:errcheck,gosec
		c.conn = nil
	}

	c.connected = false
}

// returns a tea.Cmd that connects when needed and waits for the next push
func (c *WSClient) ListenCmd() tea.Cmd {
	return func() tea.Msg {
		if err := c.Connect(); err != nil {
			return PushDisconnectedMsg{err: err}
		}

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case ev := <-c.events:
				return ev
			case <-ticker.C:
				if !c.IsConnected() {
					return PushDisconnectedMsg{err: fmt.Errorf("connection closed")}
				}
			}
		}
	}
}

// returns a tea.Cmd that waits before listening again
func (c *WSClient) ReconnectCmd() tea.Cmd {
	return tea.Tick(reconnectDelay, func(time.Time) tea.Msg {
		return reconnectMsg{}
	})
}

type reconnectMsg struct{}
