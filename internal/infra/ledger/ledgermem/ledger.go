// Package ledgermem is an in-process ledger for tests and demo deployments.
package ledgermem

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roshannn-07/fairpass/internal/domain"
)

var _ domain.LedgerReader = (*Ledger)(nil)

type Ledger struct {
	mu       sync.RWMutex
	holdings map[string]map[uint64]uint64
	failure  error
	latency  time.Duration

	calls atomic.Int64

	// Validate decides address syntax. Defaults to any non-empty string
	// without whitespace.
	Validate func(address string) bool
}

func New() *Ledger {
	return &Ledger{holdings: make(map[string]map[uint64]uint64)}
}

// Parse builds a ledger from "address:asset:amount" entries separated by
// commas, the format of LEDGER_MEMORY_HOLDINGS.
func Parse(seed string) (*Ledger, error) {
	l := New()
	for _, entry := range strings.Split(seed, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid holding %q: want address:asset:amount", entry)
		}
		assetID, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid asset id in %q: %w", entry, err)
		}
		amount, err := strconv.ParseUint(parts[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amount in %q: %w", entry, err)
		}
		l.SetHolding(parts[0], assetID, amount)
	}
	return l, nil
}

func (l *Ledger) SetHolding(address string, assetID, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	assets, ok := l.holdings[address]
	if !ok {
		assets = make(map[uint64]uint64)
		l.holdings[address] = assets
	}
	assets[assetID] = amount
}

// Transfer moves amount units of assetID between addresses, the way an
// on-chain transfer would after a ticket was signed.
func (l *Ledger) Transfer(from, to string, assetID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount == 0 {
		return nil
	}
	if l.holdings[from][assetID] < amount {
		return errors.New("insufficient balance")
	}
	l.holdings[from][assetID] -= amount
	if l.holdings[to] == nil {
		l.holdings[to] = make(map[uint64]uint64)
	}
	l.holdings[to][assetID] += amount
	return nil
}

// FailWith makes every subsequent read fail with err; nil restores service.
func (l *Ledger) FailWith(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failure = err
}

// SetLatency delays every read, respecting the caller's context.
func (l *Ledger) SetLatency(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.latency = d
}

func (l *Ledger) Calls() int64 {
	return l.calls.Load()
}

func (l *Ledger) HeldAssets(ctx context.Context, address string) ([]domain.AssetHolding, error) {
	l.calls.Add(1)

	l.mu.RLock()
	latency, failure := l.latency, l.failure
	l.mu.RUnlock()

	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if failure != nil {
		return nil, failure
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.AssetHolding, 0, len(l.holdings[address]))
	for assetID, amount := range l.holdings[address] {
		out = append(out, domain.AssetHolding{AssetID: assetID, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out, nil
}

func (l *Ledger) ValidAddress(address string) bool {
	if l.Validate != nil {
		return l.Validate(address)
	}
	return address != "" && !strings.ContainsAny(address, " \t\r\n")
}
