package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(id, accountID string) *Client {
	return &Client{
		ID:        id,
		AccountID: accountID,
		send:      make(chan []byte, sendBufferSize),
	}
}

func TestClientSendError(t *testing.T) {
	client := newTestClient("test-client", "account-1")

	client.SendError("TEST_ERROR", "Test error message", "Additional details")

	select {
	case msg := <-client.send:
		assert.Contains(t, string(msg), "TEST_ERROR")
		assert.Contains(t, string(msg), "Test error message")
		assert.Contains(t, string(msg), `"type":"error"`)
	default:
		t.Error("expected error message to be sent")
	}
}

func TestClientSendMessage(t *testing.T) {
	client := newTestClient("test-client", "account-1")

	msg, err := NewMessage(TypeTierChanged, "account-1", TierChangedPayload{Tier: "pro"})
	require.NoError(t, err)

	require.NoError(t, client.Send(msg))

	select {
	case received := <-client.send:
		var decoded struct {
			Type    string             `json:"type"`
			Payload TierChangedPayload `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(received, &decoded))
		assert.Equal(t, TypeTierChanged, decoded.Type)
		assert.Equal(t, "pro", decoded.Payload.Tier)
		assert.NotContains(t, string(received), "account-1")
	default:
		t.Error("expected message to be sent")
	}
}

func TestClientSendMessageToClosedChannel(t *testing.T) {
	client := newTestClient("test-client", "account-1")

	// close the send channel behind the client's back
	close(client.send)

	msg, err := NewMessage(TypePong, "account-1", nil)
	require.NoError(t, err)

	// sending to closed channel should not panic
	assert.ErrorIs(t, client.Send(msg), ErrConnectionClosed)
}

func TestClientSendAfterClose(t *testing.T) {
	client := newTestClient("test-client", "account-1")
	client.Close()
	client.Close()

	msg, err := NewMessage(TypePong, "account-1", nil)
	require.NoError(t, err)

	assert.True(t, client.IsClosed())
	assert.ErrorIs(t, client.Send(msg), ErrConnectionClosed)
}

func TestClientSendBufferOverflowClosesClient(t *testing.T) {
	client := &Client{ID: "slow", AccountID: "account-1", send: make(chan []byte, 1)}

	msg, err := NewMessage(TypePong, "account-1", nil)
	require.NoError(t, err)

	require.NoError(t, client.Send(msg))
	assert.ErrorIs(t, client.Send(msg), ErrConnectionClosed)
	assert.True(t, client.IsClosed())
}

func TestClientHandleIncoming(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantType string
	}{
		{name: "ping gets pong", raw: `{"type":"ping"}`, wantType: TypePong},
		{name: "unknown type", raw: `{"type":"code_update"}`, wantType: TypeError},
		{name: "invalid json", raw: `not json`, wantType: TypeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient("c", "account-1")
			client.handleIncoming([]byte(tt.raw))

			select {
			case received := <-client.send:
				var decoded Message
				require.NoError(t, json.Unmarshal(received, &decoded))
				assert.Equal(t, tt.wantType, decoded.Type)
			default:
				t.Fatal("expected a reply")
			}
		})
	}
}
