package ingestion

import (
	"context"
	"testing"

	segjson "github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKlineEnvelope_DecodesClosedBar(t *testing.T) {
	raw := `{"k":{"t":1700000000000,"T":1700000059999,"s":"BTCUSDT","i":"1m","o":"100.0","h":"105.0","l":"95.0","c":"102.0","v":"12.5","n":42,"x":true}}`

	var env klineEnvelope
	require.NoError(t, segjson.Unmarshal([]byte(raw), &env))
	assert.True(t, env.K.IsClosed)

	candle, err := env.K.toCandle()
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", candle.Symbol)
	assert.Equal(t, "1m", candle.Interval)
	assert.InDelta(t, 100.0, candle.Open, 1e-9)
	assert.InDelta(t, 102.0, candle.Close, 1e-9)
	assert.True(t, candle.IsClosed)
}

func TestKlineEnvelope_OpenBarNotDispatched(t *testing.T) {
	raw := `{"k":{"t":1700000000000,"T":1700000059999,"s":"BTCUSDT","i":"1m","o":"100.0","h":"105.0","l":"95.0","c":"102.0","v":"12.5","n":42,"x":false}}`

	var env klineEnvelope
	require.NoError(t, segjson.Unmarshal([]byte(raw), &env))
	assert.False(t, env.K.IsClosed)

	// The supervisor has no dispatcher here: an open bar must return
	// before dispatch is reached.
	s := &Supervisor{}
	closed, err := s.handleMessage(context.Background(), "btcusdt@kline_1m", []byte(raw))
	require.NoError(t, err)
	assert.False(t, closed)
}
