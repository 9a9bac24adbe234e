package store

import (
	"fmt"

	"github.com/jona04/colab-finance-go/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SignalStore is the §4.G durable bounded queue. A re-emitted plan for the
// same (strategy_id, ts, signal_type) key updates in place.
type SignalStore interface {
	UpsertSignal(sig domain.Signal) error
	ListPending(limit int) ([]domain.Signal, error)
	MarkSuccess(sig domain.Signal) error
	MarkFailure(sig domain.Signal, lastError string) error
}

type gormSignalStore struct {
	db *gorm.DB
}

func NewSignalStore(db *gorm.DB) SignalStore {
	return &gormSignalStore{db: db}
}

func (s *gormSignalStore) UpsertSignal(sig domain.Signal) error {
	if sig.Status == "" {
		sig.Status = domain.SignalPending
	}
	rec, err := signalToRecord(sig)
	if err != nil {
		return fmt.Errorf("store: encode signal for %s: %w", sig.StrategyID, err)
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "strategy_id"}, {Name: "ts"}, {Name: "signal_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "attempts", "steps_json", "episode_json", "last_error"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("store: upsert signal for %s: %w", sig.StrategyID, err)
	}
	return nil
}

func (s *gormSignalStore) ListPending(limit int) ([]domain.Signal, error) {
	var recs []SignalRecord
	err := s.db.Where("status = ?", string(domain.SignalPending)).
		Order("created_at asc").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("store: list pending signals: %w", err)
	}
	out := make([]domain.Signal, 0, len(recs))
	for _, r := range recs {
		sig, err := recordToSignal(r)
		if err != nil {
			return nil, fmt.Errorf("store: decode signal id %d: %w", r.ID, err)
		}
		out = append(out, sig)
	}
	return out, nil
}

func (s *gormSignalStore) MarkSuccess(sig domain.Signal) error {
	err := s.db.Model(&SignalRecord{}).
		Where("strategy_id = ? AND ts = ? AND signal_type = ?", sig.StrategyID, sig.Ts, string(sig.SignalType)).
		Updates(map[string]any{"status": string(domain.SignalExecuted), "last_error": ""}).Error
	if err != nil {
		return fmt.Errorf("store: mark signal success for %s: %w", sig.StrategyID, err)
	}
	return nil
}

func (s *gormSignalStore) MarkFailure(sig domain.Signal, lastError string) error {
	err := s.db.Model(&SignalRecord{}).
		Where("strategy_id = ? AND ts = ? AND signal_type = ?", sig.StrategyID, sig.Ts, string(sig.SignalType)).
		Updates(map[string]any{
			"status":     string(domain.SignalFailed),
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": lastError,
		}).Error
	if err != nil {
		return fmt.Errorf("store: mark signal failure for %s: %w", sig.StrategyID, err)
	}
	return nil
}
