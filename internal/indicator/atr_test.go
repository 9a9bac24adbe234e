package indicator

import (
	"testing"
	"time"

	"github.com/jona04/colab-finance-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candle(t time.Time, o, h, l, c float64) domain.Candle {
	return domain.Candle{
		Symbol:    "BTCUSDT",
		Interval:  "1m",
		OpenTime:  t,
		CloseTime: t.Add(time.Minute - time.Millisecond),
		Open:      o,
		High:      h,
		Low:       l,
		Close:     c,
		IsClosed:  true,
	}
}

func TestATRPctSeries_FirstBarHasNoPriorClose(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := []domain.Candle{
		candle(base, 100, 105, 95, 102),
	}
	tr := trueRange(candles)
	require.Len(t, tr, 1)
	assert.InDelta(t, 105.0-95.0, tr[0], 1e-9)

	// One bar is inside the warm-up window (minPeriods(14) = 7), so the
	// smoothed value is still NaN and ATR% reports 0 for it.
	series := ATRPctSeries(candles, 14)
	require.Len(t, series, 1)
	assert.InDelta(t, 0.0, series[0], 1e-9)
}

func TestATRPctSeries_NonNegative(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := []domain.Candle{
		candle(base, 100, 105, 95, 102),
		candle(base.Add(time.Minute), 102, 110, 100, 108),
		candle(base.Add(2*time.Minute), 108, 109, 90, 95),
	}
	series := ATRPctSeries(candles, 2)
	for _, v := range series {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}
