package websocket

import (
	"encoding/json"
	"time"

	"codeberg.org/incdrops/server/internal/logger"
)

func NewHub() *Hub {
	return &Hub{
		accounts:           make(map[string]map[string]*Client),
		Register:           make(chan *Client),
		Unregister:         make(chan *Client),
		Publish:            make(chan *Message, 256),
		accountConnections: make(map[string]int),
		ipConnections:      make(map[string]int),
		shutdown:           make(chan struct{}),
		done:               make(chan struct{}),
	}
}

// creates a message with the payload marshaled to JSON
func NewMessage(msgType, accountID string, payload any) (*Message, error) {
	msg := &Message{
		Type:      msgType,
		AccountID: accountID,
		Timestamp: time.Now(),
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}

		msg.Payload = raw
	}

	return msg, nil
}

// starts the hub's main loop
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case message := <-h.Publish:
			h.deliver(message)

		case <-h.shutdown:
			h.closeAllConnections()
			return
		}
	}
}

// hands client to the hub. false when the hub has shut down, in which case the
// caller still owns the connection
func (h *Hub) RegisterClient(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.shutdown:
		return false
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.accounts[client.AccountID] == nil {
		h.accounts[client.AccountID] = make(map[string]*Client)
	}

	h.accounts[client.AccountID][client.ID] = client
	h.accountConnections[client.AccountID]++

	if client.IPAddress != "" {
		h.ipConnections[client.IPAddress]++
	}

	logger.Debug("client registered",
		"client_id", client.ID,
		"account_id", client.AccountID,
	)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(client)
}

// must be called with the lock held
func (h *Hub) removeLocked(client *Client) {
	clients, exists := h.accounts[client.AccountID]
	if !exists {
		return
	}

	if _, exists := clients[client.ID]; !exists {
		return
	}

	delete(clients, client.ID)
	client.Close()

	h.accountConnections[client.AccountID]--
	if h.accountConnections[client.AccountID] <= 0 {
		delete(h.accountConnections, client.AccountID)
	}

	if client.IPAddress != "" {
		h.ipConnections[client.IPAddress]--

		if h.ipConnections[client.IPAddress] <= 0 {
			delete(h.ipConnections, client.IPAddress)
		}
	}

	if len(clients) == 0 {
		delete(h.accounts, client.AccountID)
	}

	logger.Debug("client unregistered",
		"client_id", client.ID,
		"account_id", client.AccountID,
	)
}

// sends msg to every connection of its account, dropping clients whose buffer overflowed
func (h *Hub) deliver(msg *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.accounts[msg.AccountID] {
		if err := client.Send(msg); err != nil {
			logger.Warn("dropping websocket client",
				"client_id", client.ID,
				"account_id", client.AccountID,
				"error", err,
			)

			h.removeLocked(client)
		}
	}
}

// queues msg for delivery without blocking the caller. events are advisory,
// clients reconcile from the usage endpoint, so a full queue drops the event
func (h *Hub) publish(msg *Message) {
	select {
	case <-h.shutdown:
		return
	default:
	}

	select {
	case h.Publish <- msg:
	default:
		logger.Warn("websocket publish queue full, event dropped",
			"type", msg.Type,
			"account_id", msg.AccountID,
		)
	}
}

// tells the account's other sessions about its new counter
func (h *Hub) PublishUsage(accountID string, usage UsageUpdatedPayload) {
	msg, err := NewMessage(TypeUsageUpdated, accountID, usage)
	if err != nil {
		logger.ErrorErr(err, "failed to build usage event", "account_id", accountID)
		return
	}

	h.publish(msg)
}

// tells the account's sessions that billing changed its tier
func (h *Hub) TierChanged(accountID, tier string) {
	msg, err := NewMessage(TypeTierChanged, accountID, TierChangedPayload{Tier: tier})
	if err != nil {
		logger.ErrorErr(err, "failed to build tier event", "account_id", accountID)
		return
	}

	h.publish(msg)
}

// returns the number of open connections for an account
func (h *Hub) ConnectionCount(accountID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.accounts[accountID])
}

// checks if a new connection should be allowed based on limits
func (h *Hub) CanAcceptConnection(accountID, ipAddress string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.accountConnections[accountID] >= maxConnectionsPerAccount {
		return ErrTooManyAccount
	}

	if ipAddress != "" && h.ipConnections[ipAddress] >= maxConnectionsPerIP {
		return ErrTooManyIP
	}

	return nil
}

// stops the hub, notifying and closing every connection. safe to call more than once
func (h *Hub) Shutdown() {
	h.shutdownOnce.Do(func() {
		close(h.shutdown)
	})
}

// blocks until Run has returned or timeout passes
func (h *Hub) Wait(timeout time.Duration) bool {
	select {
	case <-h.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg, err := NewMessage(TypeServerShutdown, "", ServerShutdownPayload{Reason: "server is shutting down"})

	total := 0
	for accountID, clients := range h.accounts {
		for _, client := range clients {
			if err == nil {
				client.Send(msg) //nolint:errcheck,gosec // best effort before close
			}

			client.Close()
			total++
		}

		delete(h.accounts, accountID)
	}

	h.accountConnections = make(map[string]int)
	h.ipConnections = make(map[string]int)

	logger.Info("websocket hub shut down", "closed_connections", total)
}
