package store

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// ComputeCfgHash derives the stable 16-char indicator-set key from
// sha1("{symbol}|{ema_fast}|{ema_slow}|{atr_window}").
func ComputeCfgHash(symbol string, emaFast, emaSlow, atrWindow int) string {
	raw := fmt.Sprintf("%s|%d|%d|%d", symbol, emaFast, emaSlow, atrWindow)
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])[:16]
}
