package database

import (
	"time"

	"gorm.io/gorm"
)

// TelegramRepository handles telegram history database operations
type TelegramRepository struct {
	db *gorm.DB
}

// NewTelegramRepository creates a new telegram repository
func NewTelegramRepository(db *gorm.DB) *TelegramRepository {
	return &TelegramRepository{db: db}
}

// Create adds a new telegram record
func (r *TelegramRepository) Create(rec *TelegramRecord) error {
	return r.db.Create(rec).Error
}

// GetRecent retrieves the most recent N telegrams
func (r *TelegramRepository) GetRecent(limit int) ([]TelegramRecord, error) {
	var records []TelegramRecord
	err := r.db.Order("received_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// GetRecentPaginated retrieves telegrams with pagination
func (r *TelegramRepository) GetRecentPaginated(page, perPage int) ([]TelegramRecord, int64, error) {
	var records []TelegramRecord
	var total int64

	// Count total records
	if err := r.db.Model(&TelegramRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Get paginated results
	offset := (page - 1) * perPage
	err := r.db.Order("received_at DESC").
		Offset(offset).
		Limit(perPage).
		Find(&records).Error

	return records, total, err
}

// GetByAddress retrieves telegrams for a specific radio address
func (r *TelegramRepository) GetByAddress(address string, limit int) ([]TelegramRecord, error) {
	var records []TelegramRecord
	err := r.db.Where("address = ?", address).
		Order("received_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// GetByTimeRange retrieves telegrams within a time range
func (r *TelegramRepository) GetByTimeRange(start, end time.Time, limit int) ([]TelegramRecord, error) {
	var records []TelegramRecord
	err := r.db.Where("received_at BETWEEN ? AND ?", start, end).
		Order("received_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// GetTeachIns retrieves the most recent teach-in records
func (r *TelegramRepository) GetTeachIns(limit int) ([]TelegramRecord, error) {
	var records []TelegramRecord
	err := r.db.Where("teach_in = ?", true).
		Order("received_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// DeleteOlderThan deletes telegrams older than the specified time
func (r *TelegramRepository) DeleteOlderThan(before time.Time) (int64, error) {
	result := r.db.Where("received_at < ?", before).Delete(&TelegramRecord{})
	return result.RowsAffected, result.Error
}

// CountSince counts telegrams received after the cutoff
func (r *TelegramRepository) CountSince(cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&TelegramRecord{}).
		Where("received_at > ?", cutoff).
		Count(&count).Error
	return count, err
}
