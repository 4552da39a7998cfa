package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dbehnke/enocean-nexus/pkg/logger"
)

// StatusInfo is the payload of /api/status
type StatusInfo struct {
	Service            string `json:"service"`
	Version            string `json:"version"`
	TransportConnected bool   `json:"transport_connected"`
	LearnMode          bool   `json:"learn_mode"`
	TelegramsReceived  uint64 `json:"telegrams_received"`
	TelegramsSent      uint64 `json:"telegrams_sent"`
	TeachIns           uint64 `json:"teach_ins"`
	EquipmentCount     int    `json:"equipment_count"`
}

// EquipmentInfo is one entry of /api/equipments
type EquipmentInfo struct {
	Name     string                 `json:"name"`
	Address  string                 `json:"address"`
	EEP      string                 `json:"eep"`
	Topic    string                 `json:"topic"`
	Learned  bool                   `json:"learned"`
	Ignored  bool                   `json:"ignored"`
	DBm      int                    `json:"dbm,omitempty"`
	LastSeen time.Time              `json:"last_seen,omitempty"`
	Values   map[string]interface{} `json:"values,omitempty"`
}

// ActivityEntry is one entry of /api/activity
type ActivityEntry struct {
	Equipment  string    `json:"equipment"`
	Address    string    `json:"address"`
	RORG       string    `json:"rorg"`
	Direction  string    `json:"direction"`
	DBm        int       `json:"dbm"`
	TeachIn    bool      `json:"teach_in"`
	Values     string    `json:"values"`
	ReceivedAt time.Time `json:"received_at"`
}

// Provider supplies the API with live gateway data
type Provider interface {
	Status() StatusInfo
	Equipments() []EquipmentInfo
	Activity(limit int) []ActivityEntry
}

// API handles REST API endpoints
type API struct {
	logger   *logger.Logger
	provider Provider
}

// NewAPI creates a new API instance. A nil provider serves empty data,
// which keeps the server usable before the bridge is wired up.
func NewAPI(log *logger.Logger, provider Provider) *API {
	return &API{
		logger:   log,
		provider: provider,
	}
}

// HandleStatus handles the /api/status endpoint
func (a *API) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := StatusInfo{Service: "enocean-nexus", Version: "dev"}
	if a.provider != nil {
		status = a.provider.Status()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		a.logger.Warn("Failed to encode status response", logger.Error(err))
	}
}

// HandleEquipments handles the /api/equipments endpoint
func (a *API) HandleEquipments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	equipments := []EquipmentInfo{}
	if a.provider != nil {
		equipments = a.provider.Equipments()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(equipments); err != nil {
		a.logger.Warn("Failed to encode equipments response", logger.Error(err))
	}
}

// HandleActivity handles the /api/activity endpoint
func (a *API) HandleActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}

	activity := []ActivityEntry{}
	if a.provider != nil {
		activity = a.provider.Activity(limit)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(activity); err != nil {
		a.logger.Warn("Failed to encode activity response", logger.Error(err))
	}
}
