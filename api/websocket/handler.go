package websocket

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/incdrops/server/incdrops/usage"
	"codeberg.org/incdrops/server/internal/auth"
	"codeberg.org/incdrops/server/internal/errors"
	"codeberg.org/incdrops/server/internal/logger"
	ws "codeberg.org/incdrops/server/internal/websocket"
)

type UsageSnapshotter interface {
	Snapshot(ctx context.Context, accountID string) (*usage.Snapshot, error)
}

// handles the per-account usage push channel. the connection receives the
// current usage right away and every change afterwards
func WebSocketHandler(hub *ws.Hub, snapshots UsageSnapshotter, upgrader *websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		ipAddress := c.ClientIP()

		// check connection limits before accepting new connection
		if err := hub.CanAcceptConnection(accountID, ipAddress); err != nil {
			errors.TooManyRequests(c, err.Error())
			return
		}

		// use timeout context for DB operations to prevent hanging
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		snap, err := snapshots.Snapshot(ctx, accountID)
		if err != nil {
			errors.InternalError(c, "failed to load usage", err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.ErrorErr(err, "failed to upgrade connection",
				"account_id", accountID,
				"ip", ipAddress,
			)

			return
		}

		client := ws.NewClient(accountID, ipAddress, conn, hub)

		initial, err := ws.NewMessage(ws.TypeUsageUpdated, accountID, ws.UsageUpdatedPayload{
			Period:    snap.Period,
			Count:     snap.Count,
			Limit:     snap.Limit,
			Remaining: snap.Remaining,
		})
		if err == nil {
			client.Send(initial) //nolint:errcheck,gosec // fresh buffer cannot be full
		}

		if !hub.RegisterClient(client) {
			client.Close()
			conn.Close() //nolint:errcheck,gosec // server is shutting down

			return
		}

		go client.WritePump()
		go client.ReadPump()

		logger.Info("websocket connection established",
			"client_id", client.ID,
			"account_id", accountID,
			"ip", ipAddress,
		)
	}
}
