package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/roshannn-07/fairpass/internal/domain"
)

func TestBulkVerify_PreservesOrderAndBoundsConcurrency(t *testing.T) {
	ledger := newCountingLedger()
	ledger.delay = 5 * time.Millisecond
	for i := uint64(1); i <= 20; i += 2 {
		ledger.hold("ADDR1", i, 1)
	}
	verify, signer := newVerifyTicket(t, ledger)
	uc := &BulkVerify{Verify: verify, Concurrency: 3}

	tickets := make([]SignedTicket, 0, 21)
	for i := uint64(1); i <= 20; i++ {
		claim := sampleClaim()
		claim.AssetID = i
		tickets = append(tickets, signedTicket(t, signer, claim))
	}
	tickets = append(tickets, SignedTicket{Payload: []byte("{}")})

	verdicts := uc.Execute(context.Background(), tickets)
	if len(verdicts) != len(tickets) {
		t.Fatalf("expected %d verdicts, got %d", len(tickets), len(verdicts))
	}
	for i, v := range verdicts[:20] {
		if v.AssetID != uint64(i+1) {
			t.Fatalf("verdict %d out of order: asset %d", i, v.AssetID)
		}
		want := domain.ReasonAssetNotHeld
		if v.AssetID%2 == 1 {
			want = domain.ReasonOK
		}
		if v.Reason != want {
			t.Fatalf("asset %d: expected %s, got %s", v.AssetID, want, v.Reason)
		}
	}
	if verdicts[20].Reason != domain.ReasonMalformedClaim {
		t.Fatalf("expected trailing malformed verdict, got %s", verdicts[20].Reason)
	}
	if peak := ledger.peak.Load(); peak > 3 {
		t.Fatalf("concurrency bound exceeded: %d", peak)
	}
}

func TestBulkVerify_Empty(t *testing.T) {
	verify, _ := newVerifyTicket(t, newCountingLedger())
	uc := &BulkVerify{Verify: verify}
	if got := uc.Execute(context.Background(), nil); len(got) != 0 {
		t.Fatalf("expected no verdicts, got %d", len(got))
	}
}
