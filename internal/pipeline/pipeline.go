// Package pipeline implements §4.H, the Execution Pipeline: it pulls
// PENDING signals and executes each one's steps sequentially, retrying
// transient failures with linear backoff and runtime-sizing the
// SWAP_EXACT_IN and REBALANCE steps against live vault status.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jona04/colab-finance-go/internal/domain"
	"github.com/jona04/colab-finance-go/internal/metrics"
	"github.com/jona04/colab-finance-go/internal/store"
	"github.com/jona04/colab-finance-go/internal/vaultclient"
)

const (
	statusTimeout = 10 * time.Second
	actionTimeout = 55 * time.Second
	batchLimit    = 50
)

type Pipeline struct {
	signals     store.SignalStore
	vault       vaultclient.Client
	log         zerolog.Logger
	maxRetries  int
	baseBackoff time.Duration
}

func New(signals store.SignalStore, vault vaultclient.Client, log zerolog.Logger, maxRetries int, baseBackoff time.Duration) *Pipeline {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if baseBackoff <= 0 {
		baseBackoff = time.Second
	}
	return &Pipeline{signals: signals, vault: vault, log: log, maxRetries: maxRetries, baseBackoff: baseBackoff}
}

// RunOnce fetches up to batchLimit pending signals and processes each
// serially. Distinct signals are independent; a failure in one does not
// stop the batch.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	pending, err := p.signals.ListPending(batchLimit)
	if err != nil {
		return fmt.Errorf("pipeline: list pending: %w", err)
	}

	for _, sig := range pending {
		ok, procErr := p.processSignal(ctx, sig)
		if procErr != nil {
			p.log.Error().Err(procErr).Str("strategy_id", sig.StrategyID).Msg("pipeline: unexpected error processing signal")
			if err := p.signals.MarkFailure(sig, fmt.Sprintf("UNEXPECTED: %v", procErr)); err != nil {
				p.log.Error().Err(err).Msg("pipeline: mark_failure after unexpected error")
			}
			metrics.PipelineSignalsTotal.WithLabelValues(string(sig.SignalType), "unexpected_error").Inc()
			continue
		}
		if ok {
			if err := p.signals.MarkSuccess(sig); err != nil {
				p.log.Error().Err(err).Msg("pipeline: mark_success")
			}
			metrics.PipelineSignalsTotal.WithLabelValues(string(sig.SignalType), "success").Inc()
		} else {
			metrics.PipelineSignalsTotal.WithLabelValues(string(sig.SignalType), "failed").Inc()
		}
	}
	return nil
}

// processSignal executes a signal's steps in order. It returns ok=false
// (not an error) when a step permanently fails after retries — that is
// the expected FAILED path, already recorded via mark_failure.
func (p *Pipeline) processSignal(ctx context.Context, sig domain.Signal) (bool, error) {
	for _, step := range sig.Steps {
		start := time.Now()
		success, lastErr := p.runStepWithRetry(ctx, sig, step)
		metrics.PipelineStepDuration.WithLabelValues(string(step.Action)).Observe(time.Since(start).Seconds())

		if !success {
			if err := p.signals.MarkFailure(sig, lastErr); err != nil {
				return false, fmt.Errorf("mark_failure: %w", err)
			}
			return false, nil
		}
	}
	return true, nil
}

func (p *Pipeline) runStepWithRetry(ctx context.Context, sig domain.Signal, step domain.Step) (bool, string) {
	var lastErr string
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		err := p.executeStep(ctx, sig, step)
		if err == nil {
			return true, ""
		}
		lastErr = err.Error()

		if errors.Is(err, vaultclient.ErrReverted) {
			return false, lastErr
		}

		p.log.Warn().Err(err).
			Str("action", string(step.Action)).
			Int("attempt", attempt).
			Int("max_retries", p.maxRetries).
			Msg("pipeline: step attempt failed")

		if attempt < p.maxRetries {
			select {
			case <-ctx.Done():
				return false, ctx.Err().Error()
			case <-time.After(p.baseBackoff * time.Duration(attempt)):
			}
		}
	}
	return false, lastErr
}

// executeStep runs one step semantics per §4.H. A nil return means the
// step is considered successful (including the "no reliable price to
// size" no-op case for SWAP_EXACT_IN).
func (p *Pipeline) executeStep(ctx context.Context, sig domain.Signal, step domain.Step) error {
	ep := sig.Episode
	dex, alias := string(ep.Dex), ep.Alias

	switch step.Action {
	case domain.StepNoopLegacy:
		return nil

	case domain.StepCollect:
		actx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()
		_, err := p.vault.Collect(actx, dex, alias)
		return err

	case domain.StepWithdraw:
		actx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()
		mode := step.WithdrawMode
		if mode == "" {
			mode = "pool"
		}
		_, err := p.vault.Withdraw(actx, dex, alias, mode)
		return err

	case domain.StepSwapExactIn:
		return p.executeSwapExactIn(ctx, dex, alias, ep)

	case domain.StepRebalance:
		return p.executeRebalance(ctx, dex, alias, step, ep)

	default:
		return fmt.Errorf("pipeline: unknown step action %q", step.Action)
	}
}

func (p *Pipeline) executeSwapExactIn(ctx context.Context, dex, alias string, ep domain.Episode) error {
	sctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()
	status, err := p.vault.Status(sctx, dex, alias)
	if err != nil {
		return err
	}

	pT1T0 := status.Prices.Current.PT1T0
	if pT1T0 == nil || *pT1T0 <= 0 {
		// No reliable price to size against; treat as success per §4.H.
		return nil
	}

	amt0 := status.Holdings.Totals.Token0
	amt1 := status.Holdings.Totals.Token1
	usd0 := amt0 * (*pT1T0)
	usd1 := amt1
	total := usd0 + usd1

	// token2 majority => token0 is the major side; else token1 is.
	majorIsToken0 := ep.MajorityOnOpen == domain.MajorityToken2
	var majorCurrUSD float64
	if majorIsToken0 {
		majorCurrUSD = usd0
	} else {
		majorCurrUSD = usd1
	}

	deltaUSD := total*ep.TargetMajorPct - majorCurrUSD

	var tokenIn, tokenOut string
	var amountInUSD float64
	if majorIsToken0 {
		if deltaUSD > 0 {
			tokenIn, tokenOut = ep.Token1Address.Hex(), ep.Token0Address.Hex()
			amountInUSD = deltaUSD
		} else {
			tokenIn, tokenOut = ep.Token0Address.Hex(), ep.Token1Address.Hex()
			amountInUSD = -deltaUSD
		}
	} else {
		if deltaUSD > 0 {
			tokenIn, tokenOut = ep.Token0Address.Hex(), ep.Token1Address.Hex()
			amountInUSD = deltaUSD
		} else {
			tokenIn, tokenOut = ep.Token1Address.Hex(), ep.Token0Address.Hex()
			amountInUSD = -deltaUSD
		}
	}

	actx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()
	_, err = p.vault.SwapExactIn(actx, dex, alias, vaultclient.SwapExactInRequest{
		TokenIn:     tokenIn,
		TokenOut:    tokenOut,
		AmountInUSD: &amountInUSD,
	})
	return err
}

func (p *Pipeline) executeRebalance(ctx context.Context, dex, alias string, step domain.Step, ep domain.Episode) error {
	sctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()
	if _, err := p.vault.Status(sctx, dex, alias); err != nil {
		return err
	}

	req := vaultclient.RebalanceRequest{
		LowerPrice: step.LowerPrice,
		UpperPrice: step.UpperPrice,
	}

	actx, cancel2 := context.WithTimeout(ctx, actionTimeout)
	defer cancel2()
	_, err := p.vault.Rebalance(actx, dex, alias, req)
	return err
}
