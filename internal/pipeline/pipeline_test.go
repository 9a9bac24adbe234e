package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jona04/colab-finance-go/internal/domain"
	"github.com/jona04/colab-finance-go/internal/vaultclient"
)

type fakeSignalStore struct {
	pending []domain.Signal
	success []domain.Signal
	failed  []domain.Signal
	lastErr string
}

func (f *fakeSignalStore) UpsertSignal(sig domain.Signal) error { return nil }
func (f *fakeSignalStore) ListPending(limit int) ([]domain.Signal, error) {
	return f.pending, nil
}
func (f *fakeSignalStore) MarkSuccess(sig domain.Signal) error {
	f.success = append(f.success, sig)
	return nil
}
func (f *fakeSignalStore) MarkFailure(sig domain.Signal, lastError string) error {
	f.failed = append(f.failed, sig)
	f.lastErr = lastError
	return nil
}

type fakeVault struct {
	status        *vaultclient.StatusResponse
	swapErr       error
	rebalanceCall *vaultclient.RebalanceRequest
	swapCall      *vaultclient.SwapExactInRequest
}

func (f *fakeVault) Status(ctx context.Context, dex, alias string) (*vaultclient.StatusResponse, error) {
	return f.status, nil
}
func (f *fakeVault) Collect(ctx context.Context, dex, alias string) (*vaultclient.TxReceipt, error) {
	return &vaultclient.TxReceipt{}, nil
}
func (f *fakeVault) Withdraw(ctx context.Context, dex, alias, mode string) (*vaultclient.TxReceipt, error) {
	return &vaultclient.TxReceipt{}, nil
}
func (f *fakeVault) SwapExactIn(ctx context.Context, dex, alias string, req vaultclient.SwapExactInRequest) (*vaultclient.SwapExactInResponse, error) {
	f.swapCall = &req
	if f.swapErr != nil {
		return nil, f.swapErr
	}
	return &vaultclient.SwapExactInResponse{}, nil
}
func (f *fakeVault) Rebalance(ctx context.Context, dex, alias string, req vaultclient.RebalanceRequest) (*vaultclient.TxReceipt, error) {
	f.rebalanceCall = &req
	return &vaultclient.TxReceipt{}, nil
}

func testEpisode() domain.Episode {
	return domain.Episode{
		StrategyID:     "BTCUSDT/trend-follow",
		MajorityOnOpen: domain.MajorityToken1,
		TargetMajorPct: 0.6,
		TargetMinorPct: 0.4,
		Dex:            domain.DexUniswap,
		Alias:          "my-vault",
		Token0Address:  common.HexToAddress("0x1"),
		Token1Address:  common.HexToAddress("0x2"),
	}
}

func TestPipeline_FullRotationSucceeds(t *testing.T) {
	p1 := 2000.0
	vault := &fakeVault{status: &vaultclient.StatusResponse{
		Holdings: vaultclient.Holdings{Totals: vaultclient.Totals{Token0: 0.5, Token1: 1000}},
		Prices:   vaultclient.Prices{Current: vaultclient.PriceQuote{PT1T0: &p1}},
	}}
	signals := &fakeSignalStore{pending: []domain.Signal{{
		StrategyID: "BTCUSDT/trend-follow",
		SignalType: domain.SignalRebalanceToRange,
		Steps: []domain.Step{
			{Action: domain.StepCollect},
			{Action: domain.StepWithdraw, WithdrawMode: "pool"},
			{Action: domain.StepSwapExactIn},
			{Action: domain.StepRebalance, LowerPrice: 1900, UpperPrice: 2100},
		},
		Episode: testEpisode(),
	}}}

	pl := New(signals, vault, zerolog.Nop(), 3, time.Millisecond)
	err := pl.RunOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, signals.success, 1)
	require.Empty(t, signals.failed)
	require.NotNil(t, vault.swapCall)
	// delta_usd = (0.5*2000+1000)*0.6 - 1000 = 200; majority token1, positive delta => swap token0->token1
	assert.InDelta(t, 200.0, *vault.swapCall.AmountInUSD, 1e-9)
	assert.Equal(t, common.HexToAddress("0x1").Hex(), vault.swapCall.TokenIn)
	assert.Equal(t, common.HexToAddress("0x2").Hex(), vault.swapCall.TokenOut)
	require.NotNil(t, vault.rebalanceCall)
	assert.Equal(t, 1900.0, vault.rebalanceCall.LowerPrice)
}

func TestPipeline_RevertedSwapFailsSignalAndSkipsRebalance(t *testing.T) {
	p1 := 2000.0
	vault := &fakeVault{
		status: &vaultclient.StatusResponse{
			Holdings: vaultclient.Holdings{Totals: vaultclient.Totals{Token0: 0.5, Token1: 1000}},
			Prices:   vaultclient.Prices{Current: vaultclient.PriceQuote{PT1T0: &p1}},
		},
		swapErr: vaultclient.ErrReverted,
	}
	signals := &fakeSignalStore{pending: []domain.Signal{{
		StrategyID: "BTCUSDT/trend-follow",
		SignalType: domain.SignalRebalanceToRange,
		Steps: []domain.Step{
			{Action: domain.StepSwapExactIn},
			{Action: domain.StepRebalance, LowerPrice: 1900, UpperPrice: 2100},
		},
		Episode: testEpisode(),
	}}}

	pl := New(signals, vault, zerolog.Nop(), 3, time.Millisecond)
	err := pl.RunOnce(context.Background())
	require.NoError(t, err)

	require.Empty(t, signals.success)
	require.Len(t, signals.failed, 1)
	assert.Nil(t, vault.rebalanceCall)
}
