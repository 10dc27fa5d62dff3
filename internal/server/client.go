package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tower-server/internal/domain"
	"tower-server/internal/engine"
	"tower-server/internal/network"
	"tower-server/pkg/api"
	"tower-server/pkg/logger"
	"tower-server/pkg/utils"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между Websocket и сессией
type Client struct {
	ID      string
	Session *engine.Session
	Hub     *network.Broadcaster
	Conn    *websocket.Conn

	updates <-chan api.ServerResponse
	log     *logrus.Entry
}

func NewClient(session *engine.Session, hub *network.Broadcaster, conn *websocket.Conn) *Client {
	id := utils.GenerateID()
	return &Client{
		ID:      id,
		Session: session,
		Hub:     hub,
		Conn:    conn,
		updates: hub.Register(id),
		log: logger.Log.WithFields(logrus.Fields{
			"component": "ws",
			"client":    id,
		}),
	}
}

// readPump читает команды от клиента и ставит их в очередь сессии
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c.ID)
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection")
		}
		c.log.Info("Client disconnected")
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	c.log.Info("Client connected")

	for {
		var cmd api.ClientCommand
		if err := c.Conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Error("WS read error")
			}
			return
		}

		if err := validateCommand(cmd); err != nil {
			c.Hub.SendTo(c.ID, api.ServerResponse{Type: api.TypeError, Session: c.Session.ID, Error: err.Error()})
			continue
		}
		if !c.Session.Submit(cmd) {
			c.Hub.SendTo(c.ID, api.ServerResponse{Type: api.TypeError, Session: c.Session.ID, Error: "server busy"})
		}
	}
}

// validateCommand отсекает мусор до очереди сессии.
func validateCommand(cmd api.ClientCommand) error {
	action := domain.ParseAction(cmd.Action)
	switch action {
	case domain.ActionUnknown:
		return fmt.Errorf("unknown action %q", cmd.Action)
	case domain.ActionMove, domain.ActionShoot:
		var p api.DirectionPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
		return p.Validate()
	}
	return nil
}

// writePump отправляет снимки клиенту + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.updates:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				c.log.WithError(err).Debug("write json message failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
