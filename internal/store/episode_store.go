package store

import (
	"fmt"

	"github.com/jona04/colab-finance-go/internal/domain"
	"gorm.io/gorm"
)

// EpisodeStore is the episode half of §4.B/§6's strategy_episodes
// collection. close_episode is an unconditional state write per §5.
type EpisodeStore interface {
	GetOpen(strategyID string) (domain.Episode, bool, error)
	OpenNew(e domain.Episode) error
	CloseEpisode(e domain.Episode) error
	UpdatePartial(e domain.Episode) error
}

type gormEpisodeStore struct {
	db *gorm.DB
}

func NewEpisodeStore(db *gorm.DB) EpisodeStore {
	return &gormEpisodeStore{db: db}
}

func (s *gormEpisodeStore) GetOpen(strategyID string) (domain.Episode, bool, error) {
	var rec EpisodeRecord
	err := s.db.Where("strategy_id = ? AND status = ?", strategyID, string(domain.EpisodeOpen)).
		Order("open_time desc").
		First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return domain.Episode{}, false, nil
	}
	if err != nil {
		return domain.Episode{}, false, fmt.Errorf("store: get open episode for %s: %w", strategyID, err)
	}
	ep, err := recordToEpisode(rec)
	if err != nil {
		return domain.Episode{}, false, fmt.Errorf("store: decode episode for %s: %w", strategyID, err)
	}
	return ep, true, nil
}

func (s *gormEpisodeStore) OpenNew(e domain.Episode) error {
	e.Status = domain.EpisodeOpen
	rec, err := episodeToRecord(e)
	if err != nil {
		return fmt.Errorf("store: encode episode for %s: %w", e.StrategyID, err)
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("store: open episode for %s: %w", e.StrategyID, err)
	}
	return nil
}

func (s *gormEpisodeStore) CloseEpisode(e domain.Episode) error {
	e.Status = domain.EpisodeClosed
	rec, err := episodeToRecord(e)
	if err != nil {
		return fmt.Errorf("store: encode closed episode for %s: %w", e.StrategyID, err)
	}
	err = s.db.Model(&EpisodeRecord{}).
		Where("strategy_id = ? AND open_time = ?", e.StrategyID, e.OpenTime).
		Updates(map[string]any{
			"status":            string(domain.EpisodeClosed),
			"close_time":        rec.CloseTime,
			"close_price":       rec.ClosePrice,
			"close_reason_kind": rec.CloseReasonKind,
			"close_reason_tier": rec.CloseReasonTier,
			"out_above_streak":  rec.OutAboveStreak,
			"out_below_streak":  rec.OutBelowStreak,
			"atr_streak_json":   rec.AtrStreakJSON,
			"last_event_bar":    rec.LastEventBar,
		}).Error
	if err != nil {
		return fmt.Errorf("store: close episode for %s: %w", e.StrategyID, err)
	}
	return nil
}

func (s *gormEpisodeStore) UpdatePartial(e domain.Episode) error {
	rec, err := episodeToRecord(e)
	if err != nil {
		return fmt.Errorf("store: encode episode update for %s: %w", e.StrategyID, err)
	}
	err = s.db.Model(&EpisodeRecord{}).
		Where("strategy_id = ? AND open_time = ? AND status = ?", e.StrategyID, e.OpenTime, string(domain.EpisodeOpen)).
		Updates(map[string]any{
			"out_above_streak": rec.OutAboveStreak,
			"out_below_streak": rec.OutBelowStreak,
			"atr_streak_json":  rec.AtrStreakJSON,
			"last_event_bar":   rec.LastEventBar,
		}).Error
	if err != nil {
		return fmt.Errorf("store: update episode streaks for %s: %w", e.StrategyID, err)
	}
	return nil
}
