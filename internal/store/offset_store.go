package store

import (
	"fmt"
	"time"

	"github.com/jona04/colab-finance-go/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OffsetStore tracks the per-stream watermark (stream_key -> open_time).
type OffsetStore interface {
	Advance(streamKey string, lastClosedOpenTime, syncedAt time.Time) error
	Get(streamKey string) (domain.StreamOffset, bool, error)
}

type gormOffsetStore struct {
	db *gorm.DB
}

func NewOffsetStore(db *gorm.DB) OffsetStore {
	return &gormOffsetStore{db: db}
}

func (s *gormOffsetStore) Advance(streamKey string, lastClosedOpenTime, syncedAt time.Time) error {
	rec := offsetToRecord(domain.StreamOffset{
		StreamKey:          streamKey,
		LastClosedOpenTime: lastClosedOpenTime,
		LastSyncAt:         syncedAt,
	})
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stream_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_closed_open_time", "last_sync_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("store: advance offset %s: %w", streamKey, err)
	}
	return nil
}

func (s *gormOffsetStore) Get(streamKey string) (domain.StreamOffset, bool, error) {
	var rec OffsetRecord
	err := s.db.Where("stream_key = ?", streamKey).First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return domain.StreamOffset{}, false, nil
	}
	if err != nil {
		return domain.StreamOffset{}, false, fmt.Errorf("store: get offset %s: %w", streamKey, err)
	}
	return recordToOffset(rec), true, nil
}
