package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"quizroom/internal/domain"
)

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRoomQRCode(t *testing.T) {
	server, service := newTestServer(t)

	cfg := domain.DefaultGameConfig()
	cfg.QuestionCount = 2
	snapshot, err := service.CreateRoom(context.Background(), "QR Trivia", "host", "Alice", cfg)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(server.URL + "/rooms/" + snapshot.ID + "/qr")
	if err != nil {
		t.Fatalf("get qr: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %s", ct)
	}

	resp, err = client.Get(server.URL + "/rooms/NOPE/qr")
	if err != nil {
		t.Fatalf("get unknown qr: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown room, got %d", resp.StatusCode)
	}
}
