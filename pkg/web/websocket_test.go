package web

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dbehnke/enocean-nexus/pkg/logger"
)

func TestEvent_Marshal(t *testing.T) {
	event := Event{
		Type:      "telegram",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"equipment": "living_room",
			"address":   "01234567",
			"dbm":       -62,
		},
	}

	data, err := event.Marshal()
	if err != nil {
		t.Fatalf("Failed to marshal event: %v", err)
	}

	var decoded Event
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal event: %v", err)
	}

	if decoded.Type != "telegram" {
		t.Errorf("Expected type 'telegram', got %s", decoded.Type)
	}
	if decoded.Data["equipment"] != "living_room" {
		t.Errorf("Unexpected event data: %+v", decoded.Data)
	}
}

func TestWebSocketHub_New(t *testing.T) {
	log := logger.New(logger.Config{Level: "info"})
	hub := NewWebSocketHub(log)

	if hub == nil {
		t.Fatal("NewWebSocketHub returned nil")
	}

	if hub.GetClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", hub.GetClientCount())
	}
}

func TestWebSocketHub_RegisterUnregister(t *testing.T) {
	log := logger.New(logger.Config{Level: "info"})
	hub := NewWebSocketHub(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)

	client := &Client{
		ID:       "test-client",
		messages: make(chan []byte, 16),
	}

	hub.register <- client
	time.Sleep(50 * time.Millisecond)

	if hub.GetClientCount() != 1 {
		t.Errorf("Expected 1 client, got %d", hub.GetClientCount())
	}

	hub.unregister <- client
	time.Sleep(50 * time.Millisecond)

	if hub.GetClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", hub.GetClientCount())
	}
}

func TestWebSocketHub_Broadcast(t *testing.T) {
	log := logger.New(logger.Config{Level: "info"})
	hub := NewWebSocketHub(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)

	client := &Client{
		ID:       "test-client",
		messages: make(chan []byte, 16),
	}
	hub.register <- client
	time.Sleep(50 * time.Millisecond)

	hub.BroadcastTeachIn("hallway_switch", "FFAB1200", "F6-02-01")

	select {
	case msg := <-client.messages:
		var event Event
		if err := json.Unmarshal(msg, &event); err != nil {
			t.Fatalf("Failed to unmarshal broadcast: %v", err)
		}
		if event.Type != "teach_in" {
			t.Errorf("Expected type 'teach_in', got %s", event.Type)
		}
		if event.Data["eep"] != "F6-02-01" {
			t.Errorf("Unexpected event data: %+v", event.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for broadcast")
	}
}

func TestWebSocketHub_LearnModeEvent(t *testing.T) {
	log := logger.New(logger.Config{Level: "info"})
	hub := NewWebSocketHub(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)

	client := &Client{
		ID:       "test-client",
		messages: make(chan []byte, 16),
	}
	hub.register <- client
	time.Sleep(50 * time.Millisecond)

	hub.BroadcastLearnMode(true)

	select {
	case msg := <-client.messages:
		var event Event
		if err := json.Unmarshal(msg, &event); err != nil {
			t.Fatalf("Failed to unmarshal broadcast: %v", err)
		}
		if event.Type != "learn_mode" {
			t.Errorf("Expected type 'learn_mode', got %s", event.Type)
		}
		if event.Data["on"] != true {
			t.Errorf("Unexpected event data: %+v", event.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for broadcast")
	}
}

func TestWebSocketHub_Shutdown(t *testing.T) {
	log := logger.New(logger.Config{Level: "info"})
	hub := NewWebSocketHub(log)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := &Client{
		ID:       "test-client",
		messages: make(chan []byte, 16),
	}
	hub.register <- client
	time.Sleep(50 * time.Millisecond)

	cancel()
	time.Sleep(50 * time.Millisecond)

	if hub.GetClientCount() != 0 {
		t.Errorf("Expected 0 clients after shutdown, got %d", hub.GetClientCount())
	}
}
