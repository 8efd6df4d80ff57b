package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/roshannn-07/fairpass/internal/domain"
)

// AssetHoldingOracle answers whether an address currently holds an asset.
// Every call goes to the ledger; nothing is cached.
type AssetHoldingOracle struct {
	Ledger   domain.LedgerReader
	Timeout  time.Duration
	Observer LedgerObserver
}

func (o *AssetHoldingOracle) Holds(ctx context.Context, holderAddress string, assetID uint64) (bool, error) {
	if assetID == 0 {
		return false, fmt.Errorf("%w: asset id must be positive", domain.ErrInvalidArgument)
	}
	if !o.Ledger.ValidAddress(holderAddress) {
		return false, fmt.Errorf("%w: invalid holder address", domain.ErrInvalidArgument)
	}

	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	start := time.Now()
	holdings, err := o.Ledger.HeldAssets(ctx, holderAddress)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if o.Observer != nil {
		o.Observer.ObserveLedgerQuery(time.Since(start), err)
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrLedgerUnreachable, err)
	}

	for _, h := range holdings {
		if h.AssetID == assetID && h.Amount >= 1 {
			return true, nil
		}
	}
	return false, nil
}
