// internal/handlers/match_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/spellclash/internal/game"
	"github.com/jason-s-yu/spellclash/internal/middleware"
	"github.com/sirupsen/logrus"
)

const writeTimeout = 3 * time.Second

// MatchMessage is an incoming websocket message.
type MatchMessage struct {
	Type     string                `json:"type"` // submit_decision, sync, ping
	Decision *game.DecisionPayload `json:"decision,omitempty"`
}

// MatchWSHandler upgrades GET /match/ws/{id} for the side named by the seat
// token. A seat has at most one live socket; a new one replaces the old.
func MatchWSHandler(s *MatchServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := matchIDFromPath(r.URL.Path, "/match/ws/")
		if !ok {
			http.Error(w, "Invalid match_id in path (/match/ws/{match_id})", http.StatusBadRequest)
			return
		}
		sess, ok := s.session(id)
		if !ok {
			http.Error(w, "match not found", http.StatusNotFound)
			return
		}
		if sess.match.Over() {
			http.Error(w, "match has already ended", http.StatusGone)
			return
		}
		side, err := s.authorize(seatToken(r), id)
		if err != nil {
			s.logger.WithError(err).WithField("match_id", id).Warn("seat authentication failed")
			http.Error(w, "invalid seat token", http.StatusForbidden)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"match"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			s.logger.WithError(err).WithField("match_id", id).Warn("websocket accept error")
			return
		}
		defer c.Close(websocket.StatusInternalError, "internal server error during handler exit")

		if c.Subprotocol() != "match" {
			c.Close(BadSubprotocolError, "client must use the 'match' subprotocol")
			return
		}

		log := sess.log.WithField("side", side)
		seat := sess.seats[side]
		if prev := seat.Attach(c); prev != nil {
			prev.Close(SeatReplacedError, "seat taken over by a newer connection")
		}
		middleware.LogWebSocketConnect(s.logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sess.sync(ctx, c, side)
		go sess.writeLoop(ctx, c, side, log)
		err = sess.readLoop(ctx, c, side, log)

		seat.Detach(c)
		middleware.LogWebSocketDisconnect(s.logger, r.RemoteAddr, r.URL.Path, err)
		if sess.match.Over() {
			c.Close(MatchOverError, "match over")
		}
	}
}

// sync drops stale queued events and sends the current view of the board and
// any decision waiting on this side.
func (sess *matchSession) sync(ctx context.Context, c *websocket.Conn, side game.Side) {
	sess.drain(side)
	st := sess.match.Snapshot(side)
	msg := map[string]interface{}{
		"type":  game.EventSnapshot,
		"state": st,
	}
	if pending := sess.match.Pending(side); pending != nil {
		msg["decision"] = pending
	}
	sendWsMessage(ctx, c, msg)
}

func (sess *matchSession) writeLoop(ctx context.Context, c *websocket.Conn, side game.Side, log *logrus.Entry) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-sess.outbox[side]:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				log.WithError(err).Debug("failed to write event")
				return
			}
		}
	}
}

// readLoop routes incoming messages until the socket closes.
func (sess *matchSession) readLoop(ctx context.Context, c *websocket.Conn, side game.Side, log *logrus.Entry) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			log.Warn("ignoring non-text message")
			continue
		}

		var msg MatchMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sendWsError(ctx, c, "Invalid JSON format.")
			continue
		}

		switch msg.Type {
		case "submit_decision":
			if msg.Decision == nil {
				sendWsError(ctx, c, "submit_decision requires a decision")
				continue
			}
			if err := sess.match.Submit(side, *msg.Decision); err != nil {
				sendWsMessage(ctx, c, map[string]interface{}{
					"type":  "decision_rejected",
					"error": err.Error(),
				})
			}
		case "sync":
			sess.sync(ctx, c, side)
		case "ping":
			sendWsMessage(ctx, c, map[string]string{"type": "pong"})
		default:
			sendWsError(ctx, c, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}
	}
}

// sendWsMessage marshals a message and sends it to the WebSocket client.
func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = c.Write(wctx, websocket.MessageText, msgBytes)
}

// sendWsError sends a structured error message to the client.
func sendWsError(ctx context.Context, c *websocket.Conn, errorMsg string) {
	sendWsMessage(ctx, c, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}
