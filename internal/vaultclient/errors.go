package vaultclient

import "errors"

// ErrTransient marks network/timeout/5xx failures the pipeline should retry.
var ErrTransient = errors.New("vaultclient: transient failure")

// ErrPermanent marks 4xx/missing-precondition failures, retried only up to
// the pipeline's bound before the signal is failed.
var ErrPermanent = errors.New("vaultclient: permanent failure")

// ErrReverted marks an explicit on-chain revert reported by the façade.
// Non-retryable.
var ErrReverted = errors.New("vaultclient: reverted")
