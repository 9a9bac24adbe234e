package store

import (
	"fmt"

	"github.com/jona04/colab-finance-go/internal/domain"
	"gorm.io/gorm"
)

// StrategyStore is the §4.D Strategy Catalog.
type StrategyStore interface {
	GetActiveByIndicatorSet(cfgHash string) ([]domain.Strategy, error)
	Get(symbol, name string) (domain.Strategy, bool, error)
	Upsert(s domain.Strategy) error
}

type gormStrategyStore struct {
	db *gorm.DB
}

func NewStrategyStore(db *gorm.DB) StrategyStore {
	return &gormStrategyStore{db: db}
}

func (s *gormStrategyStore) GetActiveByIndicatorSet(cfgHash string) ([]domain.Strategy, error) {
	var recs []StrategyRecord
	err := s.db.Where("indicator_set_id = ? AND status = ?", cfgHash, string(domain.StrategyActive)).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("store: get active strategies for indicator set %s: %w", cfgHash, err)
	}
	out := make([]domain.Strategy, 0, len(recs))
	for _, r := range recs {
		strat, err := recordToStrategy(r)
		if err != nil {
			return nil, fmt.Errorf("store: decode strategy %s/%s: %w", r.Symbol, r.Name, err)
		}
		out = append(out, strat)
	}
	return out, nil
}

func (s *gormStrategyStore) Get(symbol, name string) (domain.Strategy, bool, error) {
	var rec StrategyRecord
	err := s.db.Where("symbol = ? AND name = ?", symbol, name).First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return domain.Strategy{}, false, nil
	}
	if err != nil {
		return domain.Strategy{}, false, fmt.Errorf("store: get strategy %s/%s: %w", symbol, name, err)
	}
	strat, err := recordToStrategy(rec)
	if err != nil {
		return domain.Strategy{}, false, fmt.Errorf("store: decode strategy %s/%s: %w", symbol, name, err)
	}
	return strat, true, nil
}

func (s *gormStrategyStore) Upsert(strat domain.Strategy) error {
	rec, err := strategyToRecord(strat)
	if err != nil {
		return fmt.Errorf("store: encode strategy %s: %w", strat.StrategyID(), err)
	}
	var existing StrategyRecord
	err = s.db.Where("symbol = ? AND name = ?", strat.Symbol, strat.Name).First(&existing).Error
	switch err {
	case gorm.ErrRecordNotFound:
		if err := s.db.Create(&rec).Error; err != nil {
			return fmt.Errorf("store: create strategy %s: %w", strat.StrategyID(), err)
		}
		return nil
	case nil:
		rec.ID = existing.ID
		if err := s.db.Save(&rec).Error; err != nil {
			return fmt.Errorf("store: update strategy %s: %w", strat.StrategyID(), err)
		}
		return nil
	default:
		return fmt.Errorf("store: upsert strategy %s: %w", strat.StrategyID(), err)
	}
}
