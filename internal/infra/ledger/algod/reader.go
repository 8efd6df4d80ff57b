// Package algod reads asset holdings from an Algorand node through the algod
// v2 REST API.
package algod

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"golang.org/x/time/rate"

	"github.com/roshannn-07/fairpass/internal/domain"
)

var _ domain.LedgerReader = (*Reader)(nil)

// Config holds the connection settings for the algod node.
type Config struct {
	// Address is the algod base URL, e.g. https://testnet-api.algonode.cloud.
	Address string
	// Token is sent as X-Algo-API-Token. Public endpoints accept an empty token.
	Token string
	// RequestsPerSecond throttles account lookups against the node. Zero
	// disables throttling.
	RequestsPerSecond float64
	// Burst is the limiter burst size. Defaults to 1.
	Burst int
}

// Reader implements domain.LedgerReader on top of the algod client. It holds
// no per-call state and is safe for concurrent use.
type Reader struct {
	client  *algod.Client
	limiter *rate.Limiter
}

func NewReader(cfg Config) (*Reader, error) {
	if cfg.Address == "" {
		return nil, errors.New("algod address is required")
	}
	client, err := algod.MakeClient(cfg.Address, cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create algod client: %w", err)
	}
	r := &Reader{client: client}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return r, nil
}

func (r *Reader) HeldAssets(ctx context.Context, address string) ([]domain.AssetHolding, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("algod rate limiter: %w", err)
		}
	}
	start := time.Now()
	account, err := r.client.AccountInformation(address).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("algod account information after %s: %w", time.Since(start).Round(time.Millisecond), err)
	}
	holdings := make([]domain.AssetHolding, 0, len(account.Assets))
	for _, asset := range account.Assets {
		holdings = append(holdings, domain.AssetHolding{
			AssetID: asset.AssetId,
			Amount:  asset.Amount,
		})
	}
	return holdings, nil
}

// ValidAddress checks the base32 encoding and checksum of an Algorand address.
func (r *Reader) ValidAddress(address string) bool {
	_, err := types.DecodeAddress(address)
	return err == nil
}
