package indicator

import (
	"errors"

	"github.com/jona04/colab-finance-go/internal/domain"
)

// ErrInsufficientData is returned when fewer than max(emaSlow, atrWindow)
// candles are available to compute a snapshot.
var ErrInsufficientData = errors.New("indicator: insufficient data")

// ComputeSnapshot builds one Snapshot from the tail of an ascending,
// close_time-ordered candle slice, per the §4.A contract: requires
// N >= max(ema_slow, atr_window) candles; returns ErrInsufficientData
// otherwise.
func ComputeSnapshot(candles []domain.Candle, cfgHash string, emaFast, emaSlow, atrWindow int) (domain.Snapshot, error) {
	required := emaSlow
	if atrWindow > required {
		required = atrWindow
	}
	if len(candles) < required {
		return domain.Snapshot{}, ErrInsufficientData
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	fast, fastOK := EMALast(closes, emaFast)
	slow, slowOK := EMALast(closes, emaSlow)
	if !fastOK || !slowOK {
		return domain.Snapshot{}, ErrInsufficientData
	}

	atrPct, _ := ATRPctLast(candles, atrWindow)

	last := candles[len(candles)-1]
	return domain.Snapshot{
		Symbol:    last.Symbol,
		CfgHash:   cfgHash,
		CloseTime: last.CloseTime,
		Open:      last.Open,
		High:      last.High,
		Low:       last.Low,
		Close:     last.Close,
		EMAFast:   fast,
		EMASlow:   slow,
		ATRPct:    atrPct,
	}, nil
}
