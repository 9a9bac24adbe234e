// Package ingestion owns the §4.J WebSocket lifecycle for a single
// <symbol>@<interval> stream and the per-bar dispatch chain that feeds
// closed candles through indicators, the episode state machine, and
// the reconciler into durable signals.
package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jona04/colab-finance-go/internal/domain"
	"github.com/jona04/colab-finance-go/internal/episode"
	"github.com/jona04/colab-finance-go/internal/indicator"
	"github.com/jona04/colab-finance-go/internal/metrics"
	"github.com/jona04/colab-finance-go/internal/reconciler"
	"github.com/jona04/colab-finance-go/internal/store"
)

// candleHistoryDepth bounds how many trailing closed candles are kept
// in memory per symbol to feed ComputeSnapshot; generous enough for
// any atr_window/ema_slow the catalog is expected to configure.
const candleHistoryDepth = 500

// Dispatcher runs the per-bar pipeline described in §4.J's dispatch
// path: upsert candle, advance the offset, recompute every ACTIVE
// indicator set's snapshot, run the episode state machine for every
// strategy bound to that set, and reconcile into a durable signal.
type Dispatcher struct {
	store       *store.Store
	reconciler  *reconciler.Reconciler
	log         zerolog.Logger
	history     map[string][]domain.Candle // keyed by symbol
}

func NewDispatcher(st *store.Store, rec *reconciler.Reconciler, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{store: st, reconciler: rec, log: log, history: make(map[string][]domain.Candle)}
}

// Dispatch processes one closed candle. It is the sole place state is
// mutated for a given symbol, so callers must serialize calls per
// symbol (the ingestion supervisor does this by running one goroutine
// per stream, per §5).
func (d *Dispatcher) Dispatch(ctx context.Context, c domain.Candle) error {
	// Hydrate from the persisted Candle Store before the first bar for
	// this symbol is processed, so a process restart resumes warm-up
	// from where it left off instead of from an empty history.
	if _, seen := d.history[c.Symbol]; !seen {
		hydrated, err := d.store.Candles.GetLastNClosed(c.Symbol, c.Interval, candleHistoryDepth)
		if err != nil {
			return fmt.Errorf("ingestion: hydrate history for %s: %w", c.Symbol, err)
		}
		d.history[c.Symbol] = hydrated
	}

	if err := d.store.Candles.Upsert(c); err != nil {
		return fmt.Errorf("ingestion: upsert candle: %w", err)
	}

	streamKey := c.Symbol + "@" + c.Interval
	if err := d.store.Offsets.Advance(streamKey, c.OpenTime, time.Now()); err != nil {
		return fmt.Errorf("ingestion: advance offset: %w", err)
	}

	d.history[c.Symbol] = appendBounded(d.history[c.Symbol], c, candleHistoryDepth)

	sets, err := d.store.IndicatorSets.GetActiveBySymbol(c.Symbol)
	if err != nil {
		return fmt.Errorf("ingestion: load indicator sets: %w", err)
	}

	for _, set := range sets {
		if err := d.processIndicatorSet(ctx, set); err != nil {
			d.log.Error().Err(err).Str("cfg_hash", set.CfgHash).Msg("ingestion: indicator set processing failed")
		}
	}
	return nil
}

func (d *Dispatcher) processIndicatorSet(ctx context.Context, set domain.IndicatorSet) error {
	snapshot, err := indicator.ComputeSnapshot(d.history[set.Symbol], set.CfgHash, set.EMAFast, set.EMASlow, set.ATRWindow)
	if err != nil {
		if err == indicator.ErrInsufficientData {
			return nil
		}
		return err
	}

	strategies, err := d.store.Strategies.GetActiveByIndicatorSet(set.CfgHash)
	if err != nil {
		return fmt.Errorf("load strategies: %w", err)
	}

	for _, strat := range strategies {
		if err := d.evaluateStrategy(ctx, strat, snapshot); err != nil {
			d.log.Error().Err(err).Str("strategy_id", strat.StrategyID()).Msg("ingestion: strategy evaluation failed")
		}
	}
	return nil
}

func (d *Dispatcher) evaluateStrategy(ctx context.Context, strat domain.Strategy, snapshot domain.Snapshot) error {
	current, hasOpen, err := d.store.Episodes.GetOpen(strat.StrategyID())
	if err != nil {
		return fmt.Errorf("get open episode: %w", err)
	}

	var result episode.Result
	if hasOpen {
		result = episode.Evaluate(strat, snapshot, &current)
	} else {
		result = episode.Evaluate(strat, snapshot, nil)
	}

	var desired domain.Episode
	switch {
	case result.FirstOpen:
		if err := d.store.Episodes.OpenNew(*result.Opened); err != nil {
			return fmt.Errorf("open first episode: %w", err)
		}
		desired = *result.Opened
	case result.Closed != nil:
		if err := d.store.Episodes.CloseEpisode(*result.Closed); err != nil {
			return fmt.Errorf("close episode: %w", err)
		}
		if err := d.store.Episodes.OpenNew(*result.Opened); err != nil {
			return fmt.Errorf("open next episode: %w", err)
		}
		metrics.EpisodeTransitionsTotal.WithLabelValues(string(result.Closed.CloseReason.Kind)).Inc()
		desired = *result.Opened
	case result.StreakUpdate != nil:
		// Streak counters changed but no trigger fired: the band is
		// unchanged, so there is nothing to reconcile.
		if err := d.store.Episodes.UpdatePartial(*result.StreakUpdate); err != nil {
			return fmt.Errorf("update episode streaks: %w", err)
		}
		return nil
	default:
		return nil
	}

	sig, err := d.reconciler.Reconcile(ctx, strat, desired)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	if sig == nil {
		return nil
	}
	if err := d.store.Signals.UpsertSignal(*sig); err != nil {
		return fmt.Errorf("upsert signal: %w", err)
	}
	return nil
}

func appendBounded(hist []domain.Candle, c domain.Candle, maxLen int) []domain.Candle {
	hist = append(hist, c)
	if len(hist) > maxLen {
		hist = hist[len(hist)-maxLen:]
	}
	return hist
}
