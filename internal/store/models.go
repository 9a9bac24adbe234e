package store

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jona04/colab-finance-go/internal/domain"
)

// CandleRecord is the candles_1m row. Only closed bars are ever written.
type CandleRecord struct {
	ID        uint64    `gorm:"primaryKey"`
	Symbol    string    `gorm:"size:32;not null;uniqueIndex:idx_candle_key;index:idx_candle_read,priority:1"`
	Interval  string    `gorm:"size:16;not null;uniqueIndex:idx_candle_key;index:idx_candle_read,priority:2"`
	OpenTime  time.Time `gorm:"not null;uniqueIndex:idx_candle_key"`
	CloseTime time.Time `gorm:"not null;index:idx_candle_read,priority:3"`
	Open      float64   `gorm:"not null"`
	High      float64   `gorm:"not null"`
	Low       float64   `gorm:"not null"`
	Close     float64   `gorm:"not null"`
	Volume    float64   `gorm:"not null"`
	Trades    int64     `gorm:"not null"`
}

func (CandleRecord) TableName() string { return "candles_1m" }

func candleToRecord(c domain.Candle) CandleRecord {
	return CandleRecord{
		Symbol:    c.Symbol,
		Interval:  c.Interval,
		OpenTime:  c.OpenTime,
		CloseTime: c.CloseTime,
		Open:      c.Open,
		High:      c.High,
		Low:       c.Low,
		Close:     c.Close,
		Volume:    c.Volume,
		Trades:    c.Trades,
	}
}

func recordToCandle(r CandleRecord) domain.Candle {
	return domain.Candle{
		Symbol:    r.Symbol,
		Interval:  r.Interval,
		OpenTime:  r.OpenTime,
		CloseTime: r.CloseTime,
		Open:      r.Open,
		High:      r.High,
		Low:       r.Low,
		Close:     r.Close,
		Volume:    r.Volume,
		Trades:    r.Trades,
		IsClosed:  true,
	}
}

// SnapshotRecord is the indicators_1m row.
type SnapshotRecord struct {
	ID        uint64    `gorm:"primaryKey"`
	Symbol    string    `gorm:"size:32;not null;uniqueIndex:idx_snapshot_key;index:idx_snapshot_read,priority:1"`
	Ts        time.Time `gorm:"not null;uniqueIndex:idx_snapshot_key;index:idx_snapshot_read,priority:2"`
	CfgHash   string    `gorm:"size:16;not null;index"`
	Open      float64   `gorm:"not null"`
	High      float64   `gorm:"not null"`
	Low       float64   `gorm:"not null"`
	Close     float64   `gorm:"not null"`
	EMAFast   float64   `gorm:"not null"`
	EMASlow   float64   `gorm:"not null"`
	ATRPct    float64   `gorm:"not null"`
}

func (SnapshotRecord) TableName() string { return "indicators_1m" }

func snapshotToRecord(s domain.Snapshot) SnapshotRecord {
	return SnapshotRecord{
		Symbol:  s.Symbol,
		Ts:      s.CloseTime,
		CfgHash: s.CfgHash,
		Open:    s.Open,
		High:    s.High,
		Low:     s.Low,
		Close:   s.Close,
		EMAFast: s.EMAFast,
		EMASlow: s.EMASlow,
		ATRPct:  s.ATRPct,
	}
}

func recordToSnapshot(r SnapshotRecord) domain.Snapshot {
	return domain.Snapshot{
		Symbol:    r.Symbol,
		CfgHash:   r.CfgHash,
		CloseTime: r.Ts,
		Open:      r.Open,
		High:      r.High,
		Low:       r.Low,
		Close:     r.Close,
		EMAFast:   r.EMAFast,
		EMASlow:   r.EMASlow,
		ATRPct:    r.ATRPct,
	}
}

// IndicatorSetRecord is the indicator_sets row.
type IndicatorSetRecord struct {
	ID        uint64 `gorm:"primaryKey"`
	Symbol    string `gorm:"size:32;not null;uniqueIndex:idx_indicator_set_tuple;index:idx_indicator_set_status,priority:1"`
	EMAFast   int    `gorm:"not null;uniqueIndex:idx_indicator_set_tuple"`
	EMASlow   int    `gorm:"not null;uniqueIndex:idx_indicator_set_tuple"`
	ATRWindow int    `gorm:"not null;uniqueIndex:idx_indicator_set_tuple"`
	CfgHash   string `gorm:"size:16;not null;uniqueIndex"`
	Status    string `gorm:"size:16;not null;index:idx_indicator_set_status,priority:2"`
}

func (IndicatorSetRecord) TableName() string { return "indicator_sets" }

func indicatorSetToRecord(s domain.IndicatorSet) IndicatorSetRecord {
	return IndicatorSetRecord{
		Symbol:    s.Symbol,
		EMAFast:   s.EMAFast,
		EMASlow:   s.EMASlow,
		ATRWindow: s.ATRWindow,
		CfgHash:   s.CfgHash,
		Status:    string(s.Status),
	}
}

func recordToIndicatorSet(r IndicatorSetRecord) domain.IndicatorSet {
	return domain.IndicatorSet{
		CfgHash:   r.CfgHash,
		Symbol:    r.Symbol,
		EMAFast:   r.EMAFast,
		EMASlow:   r.EMASlow,
		ATRWindow: r.ATRWindow,
		Status:    domain.IndicatorSetStatus(r.Status),
	}
}

// StrategyRecord is the strategies row. Params and tiers are stored as a
// JSON blob, mirroring the way transaction_recorder.go flattens complex
// fields into plain columns rather than reaching for a relational schema.
type StrategyRecord struct {
	ID             uint64 `gorm:"primaryKey"`
	Name           string `gorm:"size:64;not null;uniqueIndex:idx_strategy_key"`
	Symbol         string `gorm:"size:32;not null;uniqueIndex:idx_strategy_key;index:idx_strategy_status,priority:2"`
	Status         string `gorm:"size:16;not null;index:idx_strategy_status,priority:1"`
	IndicatorSetID string `gorm:"size:16;not null;index:idx_strategy_indicator_set,priority:1"`
	ParamsJSON     string `gorm:"type:text;not null"`
	Dex            string `gorm:"size:16;not null"`
	Alias          string `gorm:"size:64;not null"`
	Token0Address  string `gorm:"size:42;not null"`
	Token1Address  string `gorm:"size:42;not null"`
}

func (StrategyRecord) TableName() string { return "strategies" }

func strategyToRecord(s domain.Strategy) (StrategyRecord, error) {
	paramsJSON, err := json.Marshal(s.Params)
	if err != nil {
		return StrategyRecord{}, err
	}
	return StrategyRecord{
		Name:           s.Name,
		Symbol:         s.Symbol,
		Status:         string(s.Status),
		IndicatorSetID: s.IndicatorSetID,
		ParamsJSON:     string(paramsJSON),
		Dex:            string(s.Dex),
		Alias:          s.Alias,
		Token0Address:  s.Token0Address.Hex(),
		Token1Address:  s.Token1Address.Hex(),
	}, nil
}

func recordToStrategy(r StrategyRecord) (domain.Strategy, error) {
	var params domain.StrategyParams
	if err := json.Unmarshal([]byte(r.ParamsJSON), &params); err != nil {
		return domain.Strategy{}, err
	}
	return domain.Strategy{
		Name:           r.Name,
		Symbol:         r.Symbol,
		Status:         domain.StrategyStatus(r.Status),
		IndicatorSetID: r.IndicatorSetID,
		Params:         params,
		Dex:            domain.Dex(r.Dex),
		Alias:          r.Alias,
		Token0Address:  common.HexToAddress(r.Token0Address),
		Token1Address:  common.HexToAddress(r.Token1Address),
	}, nil
}

// EpisodeRecord is the strategy_episodes row.
type EpisodeRecord struct {
	ID               uint64     `gorm:"primaryKey"`
	StrategyID       string     `gorm:"size:96;not null;index:idx_episode_status,priority:1;index:idx_episode_open,priority:1"`
	OpenTime         time.Time  `gorm:"not null;index:idx_episode_open,priority:2"`
	OpenPrice        float64    `gorm:"not null"`
	Pa               float64    `gorm:"not null"`
	Pb               float64    `gorm:"not null"`
	PoolType         string     `gorm:"size:32;not null"`
	ModeOnOpen       string     `gorm:"size:16;not null"`
	MajorityOnOpen   string     `gorm:"size:16;not null"`
	TargetMajorPct   float64    `gorm:"not null"`
	TargetMinorPct   float64    `gorm:"not null"`
	LastEventBar     int        `gorm:"not null"`
	OutAboveStreak   int        `gorm:"not null"`
	OutBelowStreak   int        `gorm:"not null"`
	AtrStreakJSON    string     `gorm:"type:text;not null"`
	Status           string     `gorm:"size:16;not null;index:idx_episode_status,priority:2"`
	CloseTime        *time.Time
	ClosePrice       *float64
	CloseReasonKind  string `gorm:"size:16"`
	CloseReasonTier  string `gorm:"size:32"`
	Dex              string `gorm:"size:16;not null"`
	Alias            string `gorm:"size:64;not null"`
	Token0Address    string `gorm:"size:42;not null"`
	Token1Address    string `gorm:"size:42;not null"`
}

func (EpisodeRecord) TableName() string { return "strategy_episodes" }

func episodeToRecord(e domain.Episode) (EpisodeRecord, error) {
	streakJSON, err := json.Marshal(e.AtrStreak)
	if err != nil {
		return EpisodeRecord{}, err
	}
	r := EpisodeRecord{
		StrategyID:      e.StrategyID,
		OpenTime:        e.OpenTime,
		OpenPrice:       e.OpenPrice,
		Pa:              e.Pa,
		Pb:              e.Pb,
		PoolType:        string(e.PoolType),
		ModeOnOpen:      e.ModeOnOpen,
		MajorityOnOpen:  string(e.MajorityOnOpen),
		TargetMajorPct:  e.TargetMajorPct,
		TargetMinorPct:  e.TargetMinorPct,
		LastEventBar:    e.LastEventBar,
		OutAboveStreak:  e.OutAboveStreak,
		OutBelowStreak:  e.OutBelowStreak,
		AtrStreakJSON:   string(streakJSON),
		Status:          string(e.Status),
		CloseReasonKind: string(e.CloseReason.Kind),
		CloseReasonTier: e.CloseReason.TierName,
		Dex:             string(e.Dex),
		Alias:           e.Alias,
		Token0Address:   e.Token0Address.Hex(),
		Token1Address:   e.Token1Address.Hex(),
	}
	if e.Status == domain.EpisodeClosed {
		ct := e.CloseTime
		cp := e.ClosePrice
		r.CloseTime = &ct
		r.ClosePrice = &cp
	}
	return r, nil
}

func recordToEpisode(r EpisodeRecord) (domain.Episode, error) {
	var streaks map[string]int
	if err := json.Unmarshal([]byte(r.AtrStreakJSON), &streaks); err != nil {
		return domain.Episode{}, err
	}
	e := domain.Episode{
		StrategyID:     r.StrategyID,
		OpenTime:       r.OpenTime,
		OpenPrice:      r.OpenPrice,
		Pa:             r.Pa,
		Pb:             r.Pb,
		PoolType:       domain.PoolType(r.PoolType),
		ModeOnOpen:     r.ModeOnOpen,
		MajorityOnOpen: domain.Majority(r.MajorityOnOpen),
		TargetMajorPct: r.TargetMajorPct,
		TargetMinorPct: r.TargetMinorPct,
		LastEventBar:   r.LastEventBar,
		OutAboveStreak: r.OutAboveStreak,
		OutBelowStreak: r.OutBelowStreak,
		AtrStreak:      streaks,
		Status:         domain.EpisodeStatus(r.Status),
		CloseReason: domain.CloseReason{
			Kind:     domain.CloseReasonKind(r.CloseReasonKind),
			TierName: r.CloseReasonTier,
		},
		Dex:           domain.Dex(r.Dex),
		Alias:         r.Alias,
		Token0Address: common.HexToAddress(r.Token0Address),
		Token1Address: common.HexToAddress(r.Token1Address),
	}
	if r.CloseTime != nil {
		e.CloseTime = *r.CloseTime
	}
	if r.ClosePrice != nil {
		e.ClosePrice = *r.ClosePrice
	}
	return e, nil
}

// SignalRecord is the signals row.
type SignalRecord struct {
	ID         uint64    `gorm:"primaryKey"`
	StrategyID string    `gorm:"size:96;not null;uniqueIndex:idx_signal_key"`
	Ts         time.Time `gorm:"not null;uniqueIndex:idx_signal_key"`
	SignalType string    `gorm:"size:32;not null;uniqueIndex:idx_signal_key"`
	Status     string    `gorm:"size:16;not null;index:idx_signal_status,priority:1"`
	Attempts   int       `gorm:"not null"`
	CfgHash    string    `gorm:"size:16;not null"`
	Symbol     string    `gorm:"size:32;not null"`
	StepsJSON  string    `gorm:"type:text;not null"`
	EpisodeJSON string   `gorm:"type:text;not null"`
	LastError  string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null;index:idx_signal_status,priority:2"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (SignalRecord) TableName() string { return "signals" }

func signalToRecord(s domain.Signal) (SignalRecord, error) {
	stepsJSON, err := json.Marshal(s.Steps)
	if err != nil {
		return SignalRecord{}, err
	}
	episodeJSON, err := json.Marshal(s.Episode)
	if err != nil {
		return SignalRecord{}, err
	}
	return SignalRecord{
		StrategyID:  s.StrategyID,
		Ts:          s.Ts,
		SignalType:  string(s.SignalType),
		Status:      string(s.Status),
		Attempts:    s.Attempts,
		CfgHash:     s.CfgHash,
		Symbol:      s.Symbol,
		StepsJSON:   string(stepsJSON),
		EpisodeJSON: string(episodeJSON),
		LastError:   s.LastError,
	}, nil
}

func recordToSignal(r SignalRecord) (domain.Signal, error) {
	var steps []domain.Step
	if err := json.Unmarshal([]byte(r.StepsJSON), &steps); err != nil {
		return domain.Signal{}, err
	}
	var episode domain.Episode
	if err := json.Unmarshal([]byte(r.EpisodeJSON), &episode); err != nil {
		return domain.Signal{}, err
	}
	return domain.Signal{
		StrategyID: r.StrategyID,
		Ts:         r.Ts,
		SignalType: domain.SignalType(r.SignalType),
		Status:     domain.SignalStatus(r.Status),
		Attempts:   r.Attempts,
		CfgHash:    r.CfgHash,
		Symbol:     r.Symbol,
		Steps:      steps,
		Episode:    episode,
		LastError:  r.LastError,
	}, nil
}

// OffsetRecord is the processing_offsets row.
type OffsetRecord struct {
	ID                 uint64    `gorm:"primaryKey"`
	StreamKey          string    `gorm:"size:64;not null;uniqueIndex"`
	LastClosedOpenTime time.Time `gorm:"not null"`
	LastSyncAt         time.Time `gorm:"not null"`
}

func (OffsetRecord) TableName() string { return "processing_offsets" }

func offsetToRecord(o domain.StreamOffset) OffsetRecord {
	return OffsetRecord{
		StreamKey:          o.StreamKey,
		LastClosedOpenTime: o.LastClosedOpenTime,
		LastSyncAt:         o.LastSyncAt,
	}
}

func recordToOffset(r OffsetRecord) domain.StreamOffset {
	return domain.StreamOffset{
		StreamKey:          r.StreamKey,
		LastClosedOpenTime: r.LastClosedOpenTime,
		LastSyncAt:         r.LastSyncAt,
	}
}
