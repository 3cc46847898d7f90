package ws

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/engine"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/lobby"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/types"
)

// Handler streams every lobby snapshot to the connection and accepts
// StartDraft/BanStage/ResetDraft messages from it.
func Handler(lb *lobby.Lobby, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := randID(6)
		out, err := lb.Subscribe(r.Context(), clientID, 8)
		if err != nil {
			conn.Close(websocket.StatusTryAgainLater, "lobby unavailable")
			return
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = lb.Unsubscribe(ctx, clientID)
		}()
		log := log.With(zap.String("client", clientID))
		log.Debug("ws client joined")

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				writeJSON(writeCtx, conn, snapshotMessage(snap))
			}
			// Outbox closed: we were dropped or the lobby shut down.
			conn.Close(websocket.StatusGoingAway, "lobby closed")
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				log.Debug("ws read ended", zap.Error(err))
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeJSON(r.Context(), conn, types.ServerMessage{Type: "Error", Error: "bad json"})
				continue
			}

			if err := dispatch(r.Context(), lb, cm); err != nil {
				writeJSON(r.Context(), conn, types.ServerMessage{Type: "Error", Error: err.Error()})
			}
		}
	}
}

// dispatch applies the message; successful transitions reach the client
// through the snapshot stream, so only errors come back here.
func dispatch(ctx context.Context, lb *lobby.Lobby, m types.ClientMessage) error {
	switch m.Type {
	case string(engine.CmdStart):
		_, err := lb.Start(ctx, m.RunnerA, m.RunnerB)
		return err
	case string(engine.CmdBan):
		_, _, err := lb.BanAndPublish(ctx, m.Stage)
		return err
	case string(engine.CmdReset):
		_, err := lb.Reset(ctx)
		return err
	default:
		return errUnknownType
	}
}

var errUnknownType = errors.New("unknown type")

func snapshotMessage(snap lobby.Snapshot) types.ServerMessage {
	state := snap.State
	return types.ServerMessage{
		Type:          "StateSnapshot",
		Version:       snap.Version,
		State:         &state,
		Events:        snap.Events,
		Announcements: types.Announcements(snap.Events),
		Ordering:      snap.Ordering,
	}
}

func writeJSON(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	payload, _ := json.Marshal(msg)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_ = conn.Write(ctx, websocket.MessageText, payload)
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.IntN(len(charset))]
	}
	return string(b)
}
