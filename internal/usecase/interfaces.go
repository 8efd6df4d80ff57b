package usecase

import (
	"context"
	"time"

	"github.com/roshannn-07/fairpass/internal/domain"
)

type ClaimVerifier interface {
	Check(claim domain.TicketClaim, signature string) error
	KeyID() string
}

type ClaimSigner interface {
	SignClaim(claim domain.TicketClaim) (domain.SignedClaim, error)
	KeyID() string
}

type HoldingOracle interface {
	Holds(ctx context.Context, holderAddress string, assetID uint64) (bool, error)
}

// QRRenderer turns envelope bytes into a QR image.
type QRRenderer interface {
	Render(content []byte) ([]byte, error)
	DataURL(png []byte) string
}

type AdmissionPolicy interface {
	Evaluate(ctx context.Context, input domain.AdmissionInput) (domain.AdmissionResult, error)
}

type LedgerObserver interface {
	ObserveLedgerQuery(elapsed time.Duration, err error)
}

type VerdictObserver interface {
	ObserveVerdict(verdict domain.Verdict)
}
