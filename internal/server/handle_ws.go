package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Command is a message a WebSocket client sends to drive its game.
type Command struct {
	Type string   `json:"type"`
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
}

// CommandError is written back when a command is rejected.
type CommandError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func handleWS(logger *slog.Logger, games *Games, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gm := gameFrom(r)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Hour)
		defer cancel()

		ch := broker.Subscribe(gm.ID)
		defer broker.Unsubscribe(gm.ID, ch)
		if _, err := games.Get(gm.ID); err != nil {
			conn.Close(websocket.StatusGoingAway, "game discarded")
			return
		}

		if err := wsjson.Write(ctx, conn, newSessionView(gm.ID, gm.Session.Snapshot())); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}

		go func() {
			defer cancel()
			for {
				var cmd Command
				if err := wsjson.Read(ctx, conn, &cmd); err != nil {
					logger.Debug("websocket read ended", "error", err)
					return
				}
				if err := applyCommand(games, gm, cmd); err != nil {
					reply := CommandError{Type: "error", Error: err.Error()}
					if err := wsjson.Write(ctx, conn, reply); err != nil {
						return
					}
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case data, ok := <-ch:
				if !ok {
					conn.Close(websocket.StatusGoingAway, "game discarded")
					return
				}
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}

// applyCommand runs a command against the game's session and counts as
// activity for the idle sweep. Successful transitions reach the client
// through the broker.
func applyCommand(games *Games, gm *Game, cmd Command) error {
	games.keepAlive(gm)
	s := gm.Session
	switch cmd.Type {
	case "advance":
		_, err := s.Advance()
		return err
	case "marker", "guess":
		p, err := PointRequest{Lat: cmd.Lat, Lng: cmd.Lng}.point()
		if err != nil {
			return err
		}
		if cmd.Type == "marker" {
			_, err = s.PlaceMarker(p)
		} else {
			_, err = s.SubmitGuess(p)
		}
		return err
	default:
		return fmt.Errorf("unknown command %q", cmd.Type)
	}
}
