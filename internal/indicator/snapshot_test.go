package indicator

import (
	"testing"
	"time"

	"github.com/jona04/colab-finance-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCandles(n int) []domain.Candle {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Candle, n)
	price := 100.0
	for i := 0; i < n; i++ {
		price += 0.1
		out[i] = candle(base.Add(time.Duration(i)*time.Minute), price-0.1, price+0.2, price-0.2, price)
	}
	return out
}

func TestComputeSnapshot_InsufficientData(t *testing.T) {
	_, err := ComputeSnapshot(buildCandles(5), "abc123", 5, 20, 14)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestComputeSnapshot_ProducesSnapshotAtWarmup(t *testing.T) {
	candles := buildCandles(20)
	snap, err := ComputeSnapshot(candles, "abc123", 5, 20, 14)
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", snap.Symbol)
	assert.Equal(t, "abc123", snap.CfgHash)
	assert.Equal(t, candles[len(candles)-1].CloseTime, snap.CloseTime)
	assert.Greater(t, snap.EMAFast, 0.0)
	assert.Greater(t, snap.EMASlow, 0.0)
	assert.GreaterOrEqual(t, snap.ATRPct, 0.0)
}
