package database

import (
	"gorm.io/gorm"
)

// StateRepository handles equipment state database operations
type StateRepository struct {
	db *gorm.DB
}

// NewStateRepository creates a new equipment state repository
func NewStateRepository(db *gorm.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Upsert creates or updates an equipment state record
func (r *StateRepository) Upsert(state *EquipmentState) error {
	// Save updates by primary key (the address) or creates when missing
	return r.db.Save(state).Error
}

// GetByAddress retrieves the state for a radio address
func (r *StateRepository) GetByAddress(address string) (*EquipmentState, error) {
	var state EquipmentState
	err := r.db.Where("address = ?", address).First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// GetByName retrieves the state for an equipment name
func (r *StateRepository) GetByName(name string) (*EquipmentState, error) {
	var state EquipmentState
	err := r.db.Where("name = ?", name).First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// GetAll retrieves every stored equipment state, ordered by name
func (r *StateRepository) GetAll() ([]EquipmentState, error) {
	var states []EquipmentState
	err := r.db.Order("name ASC").Find(&states).Error
	return states, err
}

// Count returns the number of stored equipment states
func (r *StateRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&EquipmentState{}).Count(&count).Error
	return count, err
}

// DeleteAll removes every stored equipment state
func (r *StateRepository) DeleteAll() error {
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&EquipmentState{}).Error
}
