package ingestion

import (
	"strconv"
	"time"

	"github.com/jona04/colab-finance-go/internal/domain"
)

// klineEnvelope mirrors the §6 wire format: {"k": {...}}. Numeric OHLCV
// fields arrive as JSON strings on the real feed, so they are decoded
// as strings and parsed explicitly.
type klineEnvelope struct {
	K klinePayload `json:"k"`
}

type klinePayload struct {
	OpenTimeMs  int64  `json:"t"`
	CloseTimeMs int64  `json:"T"`
	Symbol      string `json:"s"`
	Interval    string `json:"i"`
	Open        string `json:"o"`
	High        string `json:"h"`
	Low         string `json:"l"`
	Close       string `json:"c"`
	Volume      string `json:"v"`
	Trades      int64  `json:"n"`
	IsClosed    bool   `json:"x"`
}

func (p klinePayload) toCandle() (domain.Candle, error) {
	open, err := strconv.ParseFloat(p.Open, 64)
	if err != nil {
		return domain.Candle{}, err
	}
	high, err := strconv.ParseFloat(p.High, 64)
	if err != nil {
		return domain.Candle{}, err
	}
	low, err := strconv.ParseFloat(p.Low, 64)
	if err != nil {
		return domain.Candle{}, err
	}
	closeP, err := strconv.ParseFloat(p.Close, 64)
	if err != nil {
		return domain.Candle{}, err
	}
	volume, err := strconv.ParseFloat(p.Volume, 64)
	if err != nil {
		return domain.Candle{}, err
	}

	return domain.Candle{
		Symbol:    p.Symbol,
		Interval:  p.Interval,
		OpenTime:  time.UnixMilli(p.OpenTimeMs).UTC(),
		CloseTime: time.UnixMilli(p.CloseTimeMs).UTC(),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closeP,
		Volume:    volume,
		Trades:    p.Trades,
		IsClosed:  p.IsClosed,
	}, nil
}
