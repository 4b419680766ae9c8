package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/extortion-watch/extortion-report-api/api"
	"github.com/extortion-watch/extortion-report-api/chat"
	"github.com/extortion-watch/extortion-report-api/config"
)

// ChatGateway upgrades authenticated requests to websocket chat
// connections
type ChatGateway struct {
	Auth *api.Auth
	Hub  *chat.Hub
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeHandler authenticates the session token from the query string
// and hands the connection to the chat hub. Browsers cannot set an
// Authorization header on a websocket dial, hence the query
// parameter.
func (g ChatGateway) ServeHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := g.Auth.AuthenticateToken(r, r.URL.Query().Get("token"))
	if err != nil {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("failed to upgrade websocket", "error", err)
		return
	}

	client := chat.NewClient(g.Hub, conn, sess)
	zap.S().Debugw("chat client connected", "userID", sess.UserID, "clientID", client.ID)

	go client.WritePump()
	client.ReadPump()
}
