package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/oduggan21/reading-assistant/internal/auth"
	"github.com/oduggan21/reading-assistant/internal/controller"
	"github.com/oduggan21/reading-assistant/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SessionHandler upgrades one HTTP request to a websocket and runs a
// reading session to completion on it. Every connection gets its own
// controller.Session; all sessions share the one Adapters value passed in,
// and so the same underlying adapter instances.
func SessionHandler(adapters controller.Adapters, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)
		log := log.WithContext(c.Request.Context()).WithComponent("session_handler")

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Error("failed to upgrade connection", "error", err.Error(), "user_id", userID)
			return
		}

		sink := NewWSSink(conn)
		defer sink.Close()

		session := controller.New(sink, adapters, log, userID)
		ctx := c.Request.Context()

		for {
			messageType, payload, err := conn.ReadMessage()
			if err != nil {
				break
			}

			switch messageType {
			case websocket.TextMessage:
				session.HandleText(ctx, payload)
			case websocket.BinaryMessage:
				session.HandleBinary(payload)
			}
		}

		session.Wait()
	}
}
