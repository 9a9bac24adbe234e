// Package reconciler implements §4.F: it converts a desired episode into
// an ordered execution plan by comparing it against the vault's live
// status, or returns nil when the vault is already aligned.
package reconciler

import (
	"context"
	"fmt"
	"math"

	"github.com/jona04/colab-finance-go/internal/domain"
	"github.com/jona04/colab-finance-go/internal/vaultclient"
)

const alignTolerance = 1e-9

type Reconciler struct {
	vault vaultclient.Client
}

func New(vault vaultclient.Client) *Reconciler {
	return &Reconciler{vault: vault}
}

// Reconcile returns the plan to execute for a newly opened/transitioned
// episode, or nil if the vault is already in the desired state.
func (r *Reconciler) Reconcile(ctx context.Context, strategy domain.Strategy, desired domain.Episode) (*domain.Signal, error) {
	dex, alias := string(strategy.Dex), strategy.Alias

	var status *vaultclient.StatusResponse
	if dex != "" && alias != "" {
		var err error
		status, err = r.vault.Status(ctx, dex, alias)
		if err != nil {
			return nil, fmt.Errorf("reconciler: status for %s: %w", strategy.StrategyID(), err)
		}
	}

	if status == nil || status.Pool == nil {
		return r.firstOpenPlan(strategy, desired, dex, alias), nil
	}

	paLive := status.Prices.Lower.PT1T0
	pbLive := status.Prices.Upper.PT1T0
	aligned := paLive != nil && pbLive != nil &&
		math.Abs(*paLive-desired.Pa) <= alignTolerance &&
		math.Abs(*pbLive-desired.Pb) <= alignTolerance
	if aligned {
		return nil, nil
	}

	return r.fullRotationPlan(strategy, desired, dex, alias), nil
}

func (r *Reconciler) firstOpenPlan(strategy domain.Strategy, desired domain.Episode, dex, alias string) *domain.Signal {
	var steps []domain.Step
	if dex != "" && alias != "" {
		steps = []domain.Step{
			{Action: domain.StepRebalance, LowerPrice: desired.Pa, UpperPrice: desired.Pb},
		}
	} else {
		steps = []domain.Step{
			{Action: domain.StepNoopLegacy, Reason: "FIRST_OPEN_NO_VAULT", LowerPrice: desired.Pa, UpperPrice: desired.Pb},
		}
	}
	return &domain.Signal{
		StrategyID: strategy.StrategyID(),
		Ts:         desired.OpenTime,
		SignalType: domain.SignalOpenNewRange,
		Status:     domain.SignalPending,
		CfgHash:    strategy.IndicatorSetID,
		Symbol:     strategy.Symbol,
		Steps:      steps,
		Episode:    desired,
	}
}

func (r *Reconciler) fullRotationPlan(strategy domain.Strategy, desired domain.Episode, dex, alias string) *domain.Signal {
	var steps []domain.Step
	if dex != "" && alias != "" {
		steps = []domain.Step{
			{Action: domain.StepCollect},
			{Action: domain.StepWithdraw, WithdrawMode: "pool"},
			{Action: domain.StepSwapExactIn},
			{Action: domain.StepRebalance, LowerPrice: desired.Pa, UpperPrice: desired.Pb},
		}
	} else {
		steps = []domain.Step{
			{Action: domain.StepNoopLegacy, Reason: "RANGE_MISMATCH_OR_REDEPLOY", LowerPrice: desired.Pa, UpperPrice: desired.Pb},
		}
	}
	return &domain.Signal{
		StrategyID: strategy.StrategyID(),
		Ts:         desired.OpenTime,
		SignalType: domain.SignalRebalanceToRange,
		Status:     domain.SignalPending,
		CfgHash:    strategy.IndicatorSetID,
		Symbol:     strategy.Symbol,
		Steps:      steps,
		Episode:    desired,
	}
}
