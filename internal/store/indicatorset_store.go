package store

import (
	"fmt"

	"github.com/jona04/colab-finance-go/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IndicatorSetStore is the §4.C Indicator Set Catalog: not a hot path,
// consulted once per ingested candle to resolve which sets to compute.
type IndicatorSetStore interface {
	UpsertActive(s domain.IndicatorSet) (domain.IndicatorSet, error)
	GetActiveBySymbol(symbol string) ([]domain.IndicatorSet, error)
	FindOneByTuple(symbol string, emaFast, emaSlow, atrWindow int) (domain.IndicatorSet, bool, error)
}

type gormIndicatorSetStore struct {
	db *gorm.DB
}

func NewIndicatorSetStore(db *gorm.DB) IndicatorSetStore {
	return &gormIndicatorSetStore{db: db}
}

func (s *gormIndicatorSetStore) UpsertActive(set domain.IndicatorSet) (domain.IndicatorSet, error) {
	if set.CfgHash == "" {
		set.CfgHash = ComputeCfgHash(set.Symbol, set.EMAFast, set.EMASlow, set.ATRWindow)
	}
	if set.Status == "" {
		set.Status = domain.IndicatorSetActive
	}
	rec := indicatorSetToRecord(set)
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "ema_fast"}, {Name: "ema_slow"}, {Name: "atr_window"}},
		DoUpdates: clause.AssignmentColumns([]string{"status"}),
	}).Create(&rec).Error
	if err != nil {
		return domain.IndicatorSet{}, fmt.Errorf("store: upsert indicator set %s: %w", set.CfgHash, err)
	}
	return recordToIndicatorSet(rec), nil
}

func (s *gormIndicatorSetStore) GetActiveBySymbol(symbol string) ([]domain.IndicatorSet, error) {
	var recs []IndicatorSetRecord
	err := s.db.Where("symbol = ? AND status = ?", symbol, string(domain.IndicatorSetActive)).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("store: get active indicator sets for %s: %w", symbol, err)
	}
	out := make([]domain.IndicatorSet, len(recs))
	for i, r := range recs {
		out[i] = recordToIndicatorSet(r)
	}
	return out, nil
}

func (s *gormIndicatorSetStore) FindOneByTuple(symbol string, emaFast, emaSlow, atrWindow int) (domain.IndicatorSet, bool, error) {
	var rec IndicatorSetRecord
	err := s.db.Where("symbol = ? AND ema_fast = ? AND ema_slow = ? AND atr_window = ?", symbol, emaFast, emaSlow, atrWindow).
		First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return domain.IndicatorSet{}, false, nil
	}
	if err != nil {
		return domain.IndicatorSet{}, false, fmt.Errorf("store: find indicator set tuple: %w", err)
	}
	return recordToIndicatorSet(rec), true, nil
}
