// internal/api/handlers/websocket_handler.go
package handlers

import (
	"net/http"
	"time"

	"waste-docket-api-server/internal/auth"
	"waste-docket-api-server/internal/resolvers"
	"waste-docket-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Maximum time between client pings before the connection is dropped.
const pongWait = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub     *socket.Hub
	Secrets resolvers.SecretSource
	Log     *zap.Logger
}

// ServeWs authenticates ?token= and registers the connection under the
// token's email until the client goes away.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	log := h.Log
	if log == nil {
		log = zap.NewNop()
	}

	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}
	if h.Secrets == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": auth.ErrMissingSecret.Error()})
		return
	}
	bundle, err := h.Secrets.GetInstance(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	claims, err := auth.Verify(tokenString, bundle.JWTSecret)
	if err != nil || claims.Email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	email := claims.Email

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.Hub.Register(email, conn)
	defer func() {
		h.Hub.Unregister(email, conn)
		conn.Close()
	}()

	// Each client ping extends the read deadline.
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Info("websocket closed unexpectedly", zap.String("email", email), zap.Error(err))
			}
			return
		}
	}
}
