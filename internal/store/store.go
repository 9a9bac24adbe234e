// Package store implements the §4.B–§4.D and §4.G persistent collections
// on top of GORM/MySQL, following the connection and migration pattern of
// transaction_recorder.go: gorm.Open + AutoMigrate, typed repositories
// layered on the raw *gorm.DB.
package store

import (
	"fmt"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Store aggregates the six repositories backing the signal core. The
// indicators_1m collection is migrated by Open but has no repository here.
type Store struct {
	db *gorm.DB

	Candles        CandleStore
	Offsets        OffsetStore
	IndicatorSets  IndicatorSetStore
	Strategies     StrategyStore
	Episodes       EpisodeStore
	Signals        SignalStore
}

// Open connects to MySQL via dsn and runs AutoMigrate for all seven
// collections enumerated in §6.
func Open(dsn string, log zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open mysql: %w", err)
	}

	if err := db.AutoMigrate(
		&CandleRecord{},
		&SnapshotRecord{},
		&IndicatorSetRecord{},
		&StrategyRecord{},
		&EpisodeRecord{},
		&SignalRecord{},
		&OffsetRecord{},
	); err != nil {
		return nil, fmt.Errorf("store: automigrate: %w", err)
	}

	log.Info().Msg("store: connected and migrated")

	return &Store{
		db:            db,
		Candles:       NewCandleStore(db),
		Offsets:       NewOffsetStore(db),
		IndicatorSets: NewIndicatorSetStore(db),
		Strategies:    NewStrategyStore(db),
		Episodes:      NewEpisodeStore(db),
		Signals:       NewSignalStore(db),
	}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("store: get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
