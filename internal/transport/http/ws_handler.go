package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizroom/internal/app"
	"quizroom/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSHandler is the session gateway: it upgrades connections, decodes
// inbound participant actions, and routes them into the game service.
type WSHandler struct {
	service  *app.GameService
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, hub *Hub) *WSHandler {
	return &WSHandler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type connectedPayload struct {
	PlayerID string `json:"playerId"`
}

type createRoomPayload struct {
	GameTitle  string          `json:"gameTitle"`
	PlayerName string          `json:"playerName"`
	GameConfig json.RawMessage `json:"gameConfig"`
}

type joinRoomPayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type roomRefPayload struct {
	RoomID string `json:"roomId"`
}

type kickPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type submitAnswerPayload struct {
	RoomID    string `json:"roomId"`
	Answer    any    `json:"answer"`
	TimeTaken int64  `json:"timeTaken"`
	Wager     int    `json:"wager"`
}

type chatMessagePayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

type privateChatPayload struct {
	RoomID         string `json:"roomId"`
	TargetPlayerID string `json:"targetPlayerId"`
	Message        string `json:"message"`
}

type roomResultPayload struct {
	RoomID    string           `json:"roomId"`
	RoomState app.RoomSnapshot `json:"roomState"`
}

// ServeWS upgrades the request and runs the connection's read loop. Each
// connection is one participant; a missing playerId gets a fresh one.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		playerID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	c := newClient(playerID, conn)
	h.hub.register(c)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop()
	}()

	c.enqueue(outboundMessage{Type: "connected", Payload: connectedPayload{PlayerID: playerID}})

	// The room this connection is currently a member of; disconnects leave
	// it through the same path as an explicit leave.
	currentRoom := ""
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		currentRoom = h.dispatch(r, c, playerID, currentRoom, inbound)
	}

	if currentRoom != "" {
		h.service.LeaveRoom(currentRoom, playerID)
	}
	h.hub.unregister(c)
	<-writerDone
}

// dispatch handles one inbound action and returns the connection's room
// membership afterwards.
func (h *WSHandler) dispatch(r *http.Request, c *client, playerID, currentRoom string, inbound inboundMessage) string {
	switch inbound.Type {
	case "createRoom":
		var payload createRoomPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.sendError(c, "invalid createRoom payload")
			return currentRoom
		}
		cfg := domain.DefaultGameConfig()
		if len(payload.GameConfig) > 0 {
			if err := json.Unmarshal(payload.GameConfig, &cfg); err != nil {
				h.sendError(c, "invalid gameConfig")
				return currentRoom
			}
		}
		snapshot, err := h.service.CreateRoom(r.Context(), payload.GameTitle, playerID, payload.PlayerName, cfg)
		if err != nil {
			h.sendError(c, err.Error())
			return currentRoom
		}
		c.enqueue(outboundMessage{Type: "roomCreated", Payload: roomResultPayload{RoomID: snapshot.ID, RoomState: snapshot}})
		return snapshot.ID

	case "joinRoom":
		var payload joinRoomPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.sendError(c, "invalid joinRoom payload")
			return currentRoom
		}
		snapshot, err := h.service.JoinRoom(payload.RoomID, playerID, payload.PlayerName)
		if err != nil {
			h.sendError(c, err.Error())
			return currentRoom
		}
		c.enqueue(outboundMessage{Type: "roomJoined", Payload: roomResultPayload{RoomID: snapshot.ID, RoomState: snapshot}})
		return snapshot.ID

	case "joinTestRoom":
		var payload joinRoomPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.sendError(c, "invalid joinTestRoom payload")
			return currentRoom
		}
		snapshot, err := h.service.JoinTestRoom(r.Context(), playerID, payload.PlayerName)
		if err != nil {
			h.sendError(c, err.Error())
			return currentRoom
		}
		c.enqueue(outboundMessage{Type: "roomJoined", Payload: roomResultPayload{RoomID: snapshot.ID, RoomState: snapshot}})
		return snapshot.ID

	case "leaveRoom":
		var payload roomRefPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.sendError(c, "invalid leaveRoom payload")
			return currentRoom
		}
		h.service.LeaveRoom(payload.RoomID, playerID)
		if payload.RoomID == currentRoom {
			return ""
		}
		return currentRoom

	case "requestRoomState":
		var payload roomRefPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.sendError(c, "invalid requestRoomState payload")
			return currentRoom
		}
		if snapshot, ok := h.service.Snapshot(payload.RoomID); ok {
			c.enqueue(outboundMessage{Type: "roomState", Payload: snapshot})
		} else {
			c.enqueue(outboundMessage{Type: "roomState", Payload: nil})
		}
		return currentRoom

	case "startGame":
		var payload roomRefPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.sendError(c, "invalid startGame payload")
			return currentRoom
		}
		if err := h.service.StartGame(r.Context(), payload.RoomID, playerID); err != nil {
			h.sendError(c, err.Error())
		}
		return currentRoom

	case "forceNextQuestion":
		var payload roomRefPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.sendError(c, "invalid forceNextQuestion payload")
			return currentRoom
		}
		if err := h.service.ForceAdvance(payload.RoomID, playerID); err != nil {
			h.sendError(c, err.Error())
		}
		return currentRoom

	case "kickPlayer":
		var payload kickPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.sendError(c, "invalid kickPlayer payload")
			return currentRoom
		}
		if err := h.service.KickPlayer(payload.RoomID, playerID, payload.PlayerID); err != nil {
			h.sendError(c, err.Error())
		}
		return currentRoom

	case "submitAnswer":
		var payload submitAnswerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.sendError(c, "invalid submitAnswer payload")
			return currentRoom
		}
		err := h.service.SubmitAnswer(payload.RoomID, playerID, payload.Answer, payload.TimeTaken, payload.Wager)
		if err != nil {
			h.sendError(c, err.Error())
		}
		return currentRoom

	case "chatMessage":
		var payload chatMessagePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.sendError(c, "invalid chatMessage payload")
			return currentRoom
		}
		if err := h.service.SendChat(payload.RoomID, playerID, payload.Message); err != nil && !errors.Is(err, domain.ErrRoomNotFound) {
			h.sendError(c, err.Error())
		}
		return currentRoom

	case "privateChatMessage":
		var payload privateChatPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.sendError(c, "invalid privateChatMessage payload")
			return currentRoom
		}
		if err := h.service.SendPrivateChat(payload.RoomID, playerID, payload.TargetPlayerID, payload.Message); err != nil {
			h.sendError(c, err.Error())
		}
		return currentRoom

	default:
		h.sendError(c, "unsupported message type")
		return currentRoom
	}
}

func (h *WSHandler) sendError(c *client, message string) {
	c.enqueue(outboundMessage{Type: "gameError", Payload: errorPayload{Message: message}})
}
