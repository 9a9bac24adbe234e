// Package domain holds the entities shared across the Signal Core and
// Execution Pipeline: candles, indicator sets, strategies, episodes,
// signals, and their invariants. Nothing in this package performs I/O.
package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Candle is a closed 1-minute bar, keyed by (Symbol, Interval, OpenTime).
type Candle struct {
	Symbol    string
	Interval  string
	OpenTime  time.Time
	CloseTime time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Trades    int64
	IsClosed  bool
}

// Snapshot is one indicator reading, keyed by (Symbol, CloseTime, CfgHash).
type Snapshot struct {
	Symbol    string
	CfgHash   string
	CloseTime time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	EMAFast   float64
	EMASlow   float64
	ATRPct    float64
}

// IndicatorSetStatus is the lifecycle of an Indicator Set.
type IndicatorSetStatus string

const (
	IndicatorSetActive  IndicatorSetStatus = "ACTIVE"
	IndicatorSetRetired IndicatorSetStatus = "RETIRED"
)

// IndicatorSet dedups the (symbol, ema_fast, ema_slow, atr_window) tuple.
type IndicatorSet struct {
	CfgHash   string
	Symbol    string
	EMAFast   int
	EMASlow   int
	ATRWindow int
	Status    IndicatorSetStatus
}

// StrategyStatus is the lifecycle of a Strategy.
type StrategyStatus string

const (
	StrategyActive StrategyStatus = "ACTIVE"
	StrategyPaused StrategyStatus = "PAUSED"
)

// Dex identifies which AMM family a strategy's vault lives on.
type Dex string

const (
	DexUniswap   Dex = "uniswap"
	DexAerodrome Dex = "aerodrome"
	DexPancake   Dex = "pancake"
)

// Tier describes one named regime within a strategy's tiering ladder.
type Tier struct {
	Name             string
	ATRPctThreshold  float64
	BarsRequired     int
	AllowedFrom      []string
	MaxMajorSidePct  float64
}

// StrategyParams is the full §4.E parameter schema.
type StrategyParams struct {
	Eps                      float64
	CooloffBars              int
	BreakoutConfirmBars      int
	VolHighThresholdPct      float64
	Tiers                    []Tier
	SkewLowPct               float64
	SkewHighPct              float64
	StandardMaxMajorSidePct  float64
	HighVolMaxMajorSidePct   float64
	InrangeResizeMode        string
}

// Strategy binds an indicator set to a named, per-symbol trading config.
type Strategy struct {
	Name           string
	Symbol         string
	Status         StrategyStatus
	IndicatorSetID string // cfg_hash
	Params         StrategyParams
	Dex            Dex
	Alias          string
	Token0Address  common.Address
	Token1Address  common.Address
}

// StrategyID is the natural key (name, symbol) used to reference a Strategy.
func (s Strategy) StrategyID() string {
	return s.Symbol + "/" + s.Name
}

// PoolType is the regime name an episode's band was built for.
type PoolType string

const (
	PoolTypeStandard PoolType = "standard"
	PoolTypeHighVol  PoolType = "high_vol"
)

// Majority indicates which token an episode's band favors on open.
type Majority string

const (
	MajorityToken1 Majority = "token1"
	MajorityToken2 Majority = "token2"
)

// EpisodeStatus is the lifecycle of an Episode.
type EpisodeStatus string

const (
	EpisodeOpen   EpisodeStatus = "OPEN"
	EpisodeClosed EpisodeStatus = "CLOSED"
)

// CloseReasonKind enumerates why an episode closed.
type CloseReasonKind string

const (
	CloseReasonCrossMin  CloseReasonKind = "cross_min"
	CloseReasonCrossMax  CloseReasonKind = "cross_max"
	CloseReasonHighVol   CloseReasonKind = "high_vol"
	CloseReasonTighten   CloseReasonKind = "tighten"
)

// CloseReason carries the trigger that ended an episode and, for
// tighten_<name> transitions, the tier name.
type CloseReason struct {
	Kind     CloseReasonKind
	TierName string
}

// Episode is the active (or most recently closed) trading band owned
// by a strategy. At most one OPEN episode exists per StrategyID.
type Episode struct {
	StrategyID     string
	OpenTime       time.Time
	OpenPrice      float64
	Pa             float64
	Pb             float64
	PoolType       PoolType
	ModeOnOpen     string // "trend_up" | "trend_down"
	MajorityOnOpen Majority
	TargetMajorPct float64
	TargetMinorPct float64

	LastEventBar   int
	OutAboveStreak int
	OutBelowStreak int
	AtrStreak      map[string]int

	// Dex/Alias/token addresses are copied from the owning Strategy at
	// open time so the pipeline can execute a signal's steps without a
	// second strategy lookup.
	Dex           Dex
	Alias         string
	Token0Address common.Address
	Token1Address common.Address

	Status      EpisodeStatus
	CloseTime   time.Time
	ClosePrice  float64
	CloseReason CloseReason
}

// StepAction enumerates the kinds of pipeline steps.
type StepAction string

const (
	StepCollect     StepAction = "COLLECT"
	StepWithdraw    StepAction = "WITHDRAW"
	StepSwapExactIn StepAction = "SWAP_EXACT_IN"
	StepRebalance   StepAction = "REBALANCE"
	StepNoopLegacy  StepAction = "NOOP_LEGACY"
)

// Step is one action in an execution plan. Only routing fields known at
// plan time are populated; amounts/caps are resolved at runtime.
type Step struct {
	Action       StepAction
	WithdrawMode string // "pool" | "all", WITHDRAW only
	LowerPrice   float64
	UpperPrice   float64 // REBALANCE; also recorded on NOOP_LEGACY
	Reason       string  // NOOP_LEGACY only
}

// SignalType enumerates the kinds of plan a reconciler may emit.
type SignalType string

const (
	SignalOpenNewRange     SignalType = "OPEN_NEW_RANGE"
	SignalRebalanceToRange SignalType = "REBALANCE_TO_RANGE"
	SignalFullMaintenance  SignalType = "FULL_MAINTENANCE"
)

// SignalStatus is the lifecycle of a Signal.
type SignalStatus string

const (
	SignalPending  SignalStatus = "PENDING"
	SignalExecuted SignalStatus = "EXECUTED"
	SignalFailed   SignalStatus = "FAILED"
)

// Signal is a durable execution plan, keyed by (StrategyID, Ts, SignalType).
type Signal struct {
	StrategyID string
	Ts         time.Time
	SignalType SignalType
	Status     SignalStatus
	Attempts   int
	CfgHash    string
	Symbol     string
	Steps      []Step
	Episode    Episode
	LastError  string
}

// Key returns the natural uniqueness key for a signal.
func (s Signal) Key() (string, time.Time, SignalType) {
	return s.StrategyID, s.Ts, s.SignalType
}

// StreamOffset is the ingestion watermark for one stream.
type StreamOffset struct {
	StreamKey        string
	LastClosedOpenTime time.Time
	LastSyncAt       time.Time
}
