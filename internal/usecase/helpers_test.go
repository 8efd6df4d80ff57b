package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/roshannn-07/fairpass/internal/domain"
	"github.com/roshannn-07/fairpass/internal/infra/codec"
	"github.com/roshannn-07/fairpass/internal/infra/crypto"
)

const testSeedHex = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"

var errNetwork = errors.New("dial tcp: connection refused")

// countingLedger is a LedgerReader stub that records how often it is read.
type countingLedger struct {
	mu       sync.Mutex
	holdings map[string][]domain.AssetHolding
	err      error
	delay    time.Duration
	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
}

func newCountingLedger() *countingLedger {
	return &countingLedger{holdings: map[string][]domain.AssetHolding{}}
}

func (l *countingLedger) hold(address string, assetID, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.holdings[address] = append(l.holdings[address], domain.AssetHolding{AssetID: assetID, Amount: amount})
}

func (l *countingLedger) HeldAssets(ctx context.Context, address string) ([]domain.AssetHolding, error) {
	l.calls.Add(1)
	n := l.inFlight.Add(1)
	defer l.inFlight.Add(-1)
	for {
		peak := l.peak.Load()
		if n <= peak || l.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if l.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.delay):
		}
	}
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.AssetHolding(nil), l.holdings[address]...), nil
}

func (l *countingLedger) ValidAddress(address string) bool {
	return address != "" && address != "not-an-address"
}

func sampleClaim() domain.TicketClaim {
	return domain.TicketClaim{
		AssetID:       12345,
		HolderAddress: "ADDR1",
		EventID:       domain.EventIDFromInt(999),
		EventName:     "Launch Night",
		IssuedAt:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func testSigner(t *testing.T) *crypto.Signer {
	t.Helper()
	signer, err := crypto.NewSigner(testSeedHex)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	return signer
}

func testVerifier(t *testing.T, signer *crypto.Signer) *crypto.Verifier {
	t.Helper()
	verifier, err := crypto.NewVerifierFromKey(signer.PublicKey())
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	return verifier
}

func newVerifyTicket(t *testing.T, ledger domain.LedgerReader) (*VerifyTicket, *crypto.Signer) {
	t.Helper()
	signer := testSigner(t)
	return &VerifyTicket{
		Verifier: testVerifier(t, signer),
		Oracle:   &AssetHoldingOracle{Ledger: ledger, Timeout: time.Second},
	}, signer
}

func signedTicket(t *testing.T, signer *crypto.Signer, claim domain.TicketClaim) SignedTicket {
	t.Helper()
	signed, err := signer.SignClaim(claim)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	payload, err := codec.Serialize(claim)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return SignedTicket{Payload: payload, Signature: signed.Signature}
}
