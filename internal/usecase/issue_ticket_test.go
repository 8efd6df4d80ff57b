package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roshannn-07/fairpass/internal/domain"
	"github.com/roshannn-07/fairpass/internal/infra/codec"
)

type stubRenderer struct {
	content []byte
	err     error
}

func (r *stubRenderer) Render(content []byte) ([]byte, error) {
	r.content = content
	if r.err != nil {
		return nil, r.err
	}
	return []byte("png"), nil
}

func (r *stubRenderer) DataURL(png []byte) string {
	return "data:image/png;base64," + string(png)
}

func TestIssueTicket_SignsAndRenders(t *testing.T) {
	signer := testSigner(t)
	renderer := &stubRenderer{}
	uc := &IssueTicket{
		Signer: signer,
		QR:     renderer,
		Ledger: newCountingLedger(),
		Now:    func() time.Time { return time.Date(2025, 1, 1, 1, 2, 3, 456789123, time.FixedZone("X", 3600)) },
	}

	issued, err := uc.Execute(context.Background(), IssueTicketRequest{
		AssetID:       12345,
		HolderAddress: "ADDR1",
		EventID:       domain.EventIDFromInt(999),
		EventName:     "Launch Night",
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	want := time.Date(2025, 1, 1, 0, 2, 3, 456000000, time.UTC)
	if !issued.Signed.Claim.IssuedAt.Equal(want) {
		t.Fatalf("expected issuedAt %s, got %s", want, issued.Signed.Claim.IssuedAt)
	}
	if string(renderer.content) != string(issued.Envelope) {
		t.Fatalf("renderer did not receive the envelope")
	}
	if issued.DataURL != "data:image/png;base64,png" {
		t.Fatalf("unexpected data url %q", issued.DataURL)
	}

	decoded, err := codec.DecodeEnvelope(issued.Envelope)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !decoded.Equal(issued.Signed) {
		t.Fatalf("envelope does not round trip")
	}
	if err := testVerifier(t, signer).Check(decoded.Claim, decoded.Signature); err != nil {
		t.Fatalf("issued ticket does not verify: %v", err)
	}
}

func TestIssueTicket_Rejects(t *testing.T) {
	uc := &IssueTicket{Signer: testSigner(t), QR: &stubRenderer{}, Ledger: newCountingLedger()}

	_, err := uc.Execute(context.Background(), IssueTicketRequest{HolderAddress: "not-an-address", AssetID: 1, EventID: domain.EventIDFromInt(1)})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	_, err = uc.Execute(context.Background(), IssueTicketRequest{HolderAddress: "ADDR1", EventID: domain.EventIDFromInt(1)})
	if !errors.Is(err, domain.ErrMalformedClaim) {
		t.Fatalf("expected ErrMalformedClaim for zero asset, got %v", err)
	}

	boom := errors.New("too large")
	uc.QR = &stubRenderer{err: boom}
	_, err = uc.Execute(context.Background(), IssueTicketRequest{AssetID: 1, HolderAddress: "ADDR1", EventID: domain.EventIDFromInt(1)})
	if !errors.Is(err, boom) {
		t.Fatalf("expected render error, got %v", err)
	}
}

func TestIssueTicket_IssuedTicketsVerify(t *testing.T) {
	ledger := newCountingLedger()
	ledger.hold("ADDR1", 12345, 1)
	verify, signer := newVerifyTicket(t, ledger)
	uc := &IssueTicket{Signer: signer, QR: &stubRenderer{}, Ledger: ledger}

	for _, eventID := range []domain.EventID{domain.EventIDFromInt(-5), domain.EventIDFromString("   ")} {
		_, err := uc.Execute(context.Background(), IssueTicketRequest{AssetID: 12345, HolderAddress: "ADDR1", EventID: eventID})
		if !errors.Is(err, domain.ErrMalformedClaim) {
			t.Fatalf("event id %q: expected ErrMalformedClaim, got %v", eventID.String(), err)
		}
	}

	for _, eventID := range []domain.EventID{domain.EventIDFromInt(0), domain.EventIDFromString("launch-night")} {
		issued, err := uc.Execute(context.Background(), IssueTicketRequest{AssetID: 12345, HolderAddress: "ADDR1", EventID: eventID})
		if err != nil {
			t.Fatalf("event id %q: issue: %v", eventID.String(), err)
		}
		verdict := verify.Execute(context.Background(), SignedTicket{Envelope: issued.Envelope})
		if verdict.Reason != domain.ReasonOK {
			t.Fatalf("event id %q: issued ticket verdict %s", eventID.String(), verdict.Reason)
		}
	}
}
