package database

import (
	"time"

	"gorm.io/gorm"
)

// Telegram directions
const (
	DirectionRX = "rx"
	DirectionTX = "tx"
)

// TelegramRecord is one translated radio telegram, kept as activity history
type TelegramRecord struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Address    string    `gorm:"index;size:8;not null" json:"address"`
	Equipment  string    `gorm:"index;size:64" json:"equipment"`
	RORG       string    `gorm:"size:8" json:"rorg"`
	EEP        string    `gorm:"size:8" json:"eep"`
	Direction  string    `gorm:"size:2;not null" json:"direction"`
	Values     string    `json:"values"` // JSON document of decoded fields
	DBm        int       `json:"dbm"`
	Repeated   bool      `json:"repeated"`
	TeachIn    bool      `json:"teach_in"`
	ReceivedAt time.Time `gorm:"index;not null" json:"received_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for TelegramRecord
func (TelegramRecord) TableName() string {
	return "telegrams"
}

// BeforeCreate hook to ensure timestamps are set
func (t *TelegramRecord) BeforeCreate(tx *gorm.DB) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.ReceivedAt.IsZero() {
		t.ReceivedAt = time.Now()
	}
	return nil
}

// EquipmentState is the latest known state per configured equipment,
// upserted on every decoded telegram.
type EquipmentState struct {
	Address   string    `gorm:"primarykey;size:8" json:"address"`
	Name      string    `gorm:"index;size:64" json:"name"`
	EEP       string    `gorm:"size:8" json:"eep"`
	Topic     string    `gorm:"size:128" json:"topic"`
	Learned   bool      `json:"learned"`
	Values    string    `json:"values"` // JSON document of the last reading
	DBm       int       `json:"dbm"`
	LastSeen  time.Time `gorm:"index" json:"last_seen"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for EquipmentState
func (EquipmentState) TableName() string {
	return "equipment_states"
}

// Stale reports whether the equipment has been silent longer than maxAge
func (s *EquipmentState) Stale(maxAge time.Duration, now time.Time) bool {
	if s.LastSeen.IsZero() {
		return true
	}
	return now.Sub(s.LastSeen) > maxAge
}
