package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"quizroom/internal/app"
	"quizroom/internal/domain"
	"quizroom/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*httptest.Server, *app.GameService) {
	t.Helper()
	store := memory.NewRoomStore()
	questions := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(sampleBank()), time.Minute)
	hub := NewHub()
	service := app.NewGameService(store, questions, hub)
	service.SetCountdownTick(time.Millisecond)

	server := httptest.NewServer(NewRouter(service, NewWSHandler(service, hub)))
	t.Cleanup(server.Close)
	return server, service
}

func dial(t *testing.T, server *httptest.Server, playerID string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?playerId=" + playerID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", playerID, err)
	}
	t.Cleanup(func() { conn.Close() })

	typ, payload := readNext(conn, t, "connected")
	if typ != "connected" || payload["playerId"] != playerID {
		t.Fatalf("expected connected for %s, got %s %v", playerID, typ, payload)
	}
	return conn
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

// readUntil skips unrelated broadcasts until the wanted event arrives.
func readUntil(conn *websocket.Conn, t *testing.T, want string) map[string]any {
	t.Helper()
	for i := 0; i < 20; i++ {
		typ, payload := readNext(conn, t, "")
		if typ == want {
			return payload
		}
	}
	t.Fatalf("never saw %s event", want)
	return nil
}

func TestWebSocketGameFlow(t *testing.T) {
	server, _ := newTestServer(t)

	host := dial(t, server, "host")
	if err := host.WriteJSON(map[string]any{
		"type": "createRoom",
		"payload": map[string]any{
			"gameTitle":  "Friday Trivia",
			"playerName": "Alice",
			"gameConfig": map[string]any{
				"progressionMode": "manual",
				"questionCount":   2,
			},
		},
	}); err != nil {
		t.Fatalf("write createRoom: %v", err)
	}

	_, created := readNext(host, t, "roomCreated")
	roomID, _ := created["roomId"].(string)
	if roomID == "" {
		t.Fatalf("expected roomId in roomCreated payload, got %v", created)
	}

	guest := dial(t, server, "p2")
	if err := guest.WriteJSON(map[string]any{
		"type":    "joinRoom",
		"payload": map[string]any{"roomId": roomID, "playerName": "Bob"},
	}); err != nil {
		t.Fatalf("write joinRoom: %v", err)
	}
	readNext(guest, t, "roomJoined")

	joined := readUntil(host, t, "playerJoined")
	if joined["newPlayerName"] != "Bob" {
		t.Fatalf("expected Bob in playerJoined, got %v", joined)
	}

	if err := host.WriteJSON(map[string]any{
		"type":    "startGame",
		"payload": map[string]any{"roomId": roomID},
	}); err != nil {
		t.Fatalf("write startGame: %v", err)
	}

	question := readUntil(guest, t, "newQuestion")
	if question["questionNumber"] != float64(1) {
		t.Fatalf("expected first question, got %v", question["questionNumber"])
	}
	inner, _ := question["question"].(map[string]any)
	if inner == nil || inner["correct_answer"] != nil {
		t.Fatalf("clients must never see the correct answer: %v", inner)
	}

	if err := guest.WriteJSON(map[string]any{
		"type":    "submitAnswer",
		"payload": map[string]any{"roomId": roomID, "answer": "Paris", "timeTaken": 800},
	}); err != nil {
		t.Fatalf("write submitAnswer: %v", err)
	}
	answered := readUntil(host, t, "playerAnswered")
	if answered["playerId"] != "p2" {
		t.Fatalf("expected p2 in playerAnswered, got %v", answered)
	}

	if err := host.WriteJSON(map[string]any{
		"type":    "forceNextQuestion",
		"payload": map[string]any{"roomId": roomID},
	}); err != nil {
		t.Fatalf("write forceNextQuestion: %v", err)
	}
	results := readUntil(guest, t, "roundResults")
	if results["correctAnswer"] != "Paris" {
		t.Fatalf("expected revealed answer, got %v", results["correctAnswer"])
	}
}

func TestWebSocketRejectsInvalidAction(t *testing.T) {
	server, _ := newTestServer(t)

	conn := dial(t, server, "host")
	if err := conn.WriteJSON(map[string]any{
		"type":    "submitAnswer",
		"payload": map[string]any{"roomId": "NOPE", "answer": "Paris"},
	}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, payload := readNext(conn, t, "gameError")
	if payload["message"] == "" {
		t.Fatalf("expected error message, got %v", payload)
	}
}

func TestRequestRoomStateUnknownRoom(t *testing.T) {
	server, _ := newTestServer(t)

	conn := dial(t, server, "host")
	if err := conn.WriteJSON(map[string]any{
		"type":    "requestRoomState",
		"payload": map[string]any{"roomId": "NOPE"},
	}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, payload := readNext(conn, t, "roomState")
	if payload != nil {
		t.Fatalf("expected null state for unknown room, got %v", payload)
	}
}

func sampleBank() []domain.Question {
	return []domain.Question{
		{ID: "q1", Type: domain.MultipleChoice, Prompt: "Capital of France?", CorrectAnswer: "Paris", IncorrectAnswers: []string{"Lyon", "Nice"}, Points: 100},
		{ID: "q2", Type: domain.MultipleChoice, Prompt: "Capital of Italy?", CorrectAnswer: "Rome", IncorrectAnswers: []string{"Milan", "Turin"}, Points: 100},
	}
}
