package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"valutatrade/internal/domain"
)

// HistoryDB is the append-only side of persistence: one row per merged pair
// per update round, one row per settled trade. SQLite keeps these queryable
// without loading the whole log.
type HistoryDB struct {
	db *gorm.DB
}

// NewHistoryDB opens (and migrates) the history database at path.
func NewHistoryDB(path string) (*HistoryDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.RateRecord{}, &domain.Transaction{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &HistoryDB{db: db}, nil
}

// AppendRates inserts one history row per pair.
func (h *HistoryDB) AppendRates(records []domain.RateRecord) error {
	if len(records) == 0 {
		return nil
	}
	return h.db.Create(&records).Error
}

// AppendTrade inserts one audit row for a settled trade.
func (h *HistoryDB) AppendTrade(tx domain.Transaction) error {
	return h.db.Create(&tx).Error
}

// RecentRates returns the latest history rows for a base currency, newest first.
func (h *HistoryDB) RecentRates(fromCurrency string, limit int) ([]domain.RateRecord, error) {
	var records []domain.RateRecord
	err := h.db.
		Where("from_currency = ?", fromCurrency).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// TradesForUser returns the user's settled trades, newest first.
func (h *HistoryDB) TradesForUser(userID int, limit int) ([]domain.Transaction, error) {
	var trades []domain.Transaction
	err := h.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&trades).Error
	return trades, err
}
