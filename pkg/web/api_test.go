package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dbehnke/enocean-nexus/pkg/logger"
)

type stubProvider struct{}

func (stubProvider) Status() StatusInfo {
	return StatusInfo{
		Service:            "enocean-nexus",
		Version:            "test",
		TransportConnected: true,
		LearnMode:          true,
		TelegramsReceived:  42,
		EquipmentCount:     2,
	}
}

func (stubProvider) Equipments() []EquipmentInfo {
	return []EquipmentInfo{
		{Name: "living_room", Address: "01234567", EEP: "A5-02-05", Topic: "sensors/living_room", Learned: true},
		{Name: "ceiling_light", Address: "AABBCCDD", EEP: "A5-38-08", Topic: "actuators/ceiling_light"},
	}
}

func (stubProvider) Activity(limit int) []ActivityEntry {
	entries := []ActivityEntry{
		{Equipment: "living_room", Address: "01234567", RORG: "4BS", Direction: "rx", DBm: -60, ReceivedAt: time.Now()},
	}
	if limit < len(entries) {
		entries = entries[:limit]
	}
	return entries
}

func TestAPI_Status(t *testing.T) {
	log := logger.New(logger.Config{Level: "info"})
	api := NewAPI(log, stubProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()

	api.HandleStatus(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var result StatusInfo
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.TelegramsReceived != 42 {
		t.Errorf("TelegramsReceived = %d, want 42", result.TelegramsReceived)
	}
	if !result.TransportConnected {
		t.Error("Expected TransportConnected true")
	}
}

func TestAPI_Status_NilProvider(t *testing.T) {
	log := logger.New(logger.Config{Level: "info"})
	api := NewAPI(log, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()

	api.HandleStatus(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var result StatusInfo
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Service != "enocean-nexus" {
		t.Errorf("Service = %q", result.Service)
	}
}

func TestAPI_Equipments(t *testing.T) {
	log := logger.New(logger.Config{Level: "info"})
	api := NewAPI(log, stubProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/equipments", nil)
	w := httptest.NewRecorder()

	api.HandleEquipments(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var result []EquipmentInfo
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 equipments, got %d", len(result))
	}
	if result[0].Name != "living_room" || !result[0].Learned {
		t.Errorf("Unexpected first equipment: %+v", result[0])
	}
}

func TestAPI_Activity(t *testing.T) {
	log := logger.New(logger.Config{Level: "info"})
	api := NewAPI(log, stubProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/activity?limit=1", nil)
	w := httptest.NewRecorder()

	api.HandleActivity(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var result []ActivityEntry
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("Expected 1 activity entry, got %d", len(result))
	}
	if result[0].RORG != "4BS" {
		t.Errorf("Unexpected activity entry: %+v", result[0])
	}
}

func TestAPI_MethodNotAllowed(t *testing.T) {
	log := logger.New(logger.Config{Level: "info"})
	api := NewAPI(log, nil)

	// POST to GET-only endpoint
	req := httptest.NewRequest(http.MethodPost, "/api/status", nil)
	w := httptest.NewRecorder()

	api.HandleStatus(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", resp.StatusCode)
	}
}
