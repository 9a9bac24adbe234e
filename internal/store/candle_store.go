package store

import (
	"fmt"

	"github.com/jona04/colab-finance-go/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CandleStore is the §4.B Candle & Offset Store's candle half: idempotent
// upsert by (symbol, interval, open_time) and ascending-order retrieval.
type CandleStore interface {
	Upsert(c domain.Candle) error
	GetLastNClosed(symbol, interval string, n int) ([]domain.Candle, error)
}

type gormCandleStore struct {
	db *gorm.DB
}

func NewCandleStore(db *gorm.DB) CandleStore {
	return &gormCandleStore{db: db}
}

func (s *gormCandleStore) Upsert(c domain.Candle) error {
	rec := candleToRecord(c)
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "interval"}, {Name: "open_time"}},
		DoUpdates: clause.AssignmentColumns([]string{"close_time", "open", "high", "low", "close", "volume", "trades"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("store: upsert candle: %w", err)
	}
	return nil
}

func (s *gormCandleStore) GetLastNClosed(symbol, interval string, n int) ([]domain.Candle, error) {
	var recs []CandleRecord
	err := s.db.Where("symbol = ? AND interval = ?", symbol, interval).
		Order("close_time desc").
		Limit(n).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("store: get last %d closed candles for %s@%s: %w", n, symbol, interval, err)
	}
	out := make([]domain.Candle, len(recs))
	for i := range recs {
		out[len(recs)-1-i] = recordToCandle(recs[i])
	}
	return out, nil
}
