package websocket

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/incdrops/server/internal/auth"
	ws "codeberg.org/incdrops/server/internal/websocket"
)

// browsers cannot set headers on the upgrade request, so the token may come in the query
func RegisterRoutes(router *gin.RouterGroup, tokens *auth.Tokens, hub *ws.Hub, snapshots UsageSnapshotter, upgrader *websocket.Upgrader) {
	router.GET("/ws", tokens.QueryTokenMiddleware(), WebSocketHandler(hub, snapshots, upgrader))
}
