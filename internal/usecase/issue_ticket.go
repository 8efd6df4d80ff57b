package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/roshannn-07/fairpass/internal/domain"
	"github.com/roshannn-07/fairpass/internal/infra/codec"
)

type IssueTicketRequest struct {
	AssetID       uint64
	HolderAddress string
	EventID       domain.EventID
	EventName     string
}

type IssuedTicket struct {
	Signed   domain.SignedClaim
	Envelope []byte
	PNG      []byte
	DataURL  string
}

// IssueTicket signs a fresh claim for a minted ticket and renders it as a QR
// code ready to be mailed to the holder.
type IssueTicket struct {
	Signer ClaimSigner
	QR     QRRenderer
	// Ledger, when set, rejects holder addresses the ledger would not accept.
	Ledger domain.LedgerReader
	Now    func() time.Time
	Logger *zap.Logger
}

func (uc *IssueTicket) Execute(ctx context.Context, req IssueTicketRequest) (*IssuedTicket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if uc.Ledger != nil && !uc.Ledger.ValidAddress(req.HolderAddress) {
		return nil, fmt.Errorf("%w: invalid holder address", domain.ErrInvalidArgument)
	}

	now := time.Now
	if uc.Now != nil {
		now = uc.Now
	}
	claim := domain.TicketClaim{
		AssetID:       req.AssetID,
		HolderAddress: req.HolderAddress,
		EventID:       req.EventID,
		EventName:     req.EventName,
		IssuedAt:      now().UTC().Truncate(time.Millisecond),
	}

	signed, err := uc.Signer.SignClaim(claim)
	if err != nil {
		return nil, err
	}
	envelope, err := codec.EncodeEnvelope(signed)
	if err != nil {
		return nil, err
	}
	png, err := uc.QR.Render(envelope)
	if err != nil {
		return nil, fmt.Errorf("render ticket qr: %w", err)
	}

	if uc.Logger != nil {
		uc.Logger.Info("ticket issued",
			zap.Uint64("asset_id", claim.AssetID),
			zap.String("holder_address", claim.HolderAddress),
			zap.String("event_id", claim.EventID.String()),
			zap.String("key_id", uc.Signer.KeyID()),
		)
	}
	return &IssuedTicket{
		Signed:   signed,
		Envelope: envelope,
		PNG:      png,
		DataURL:  uc.QR.DataURL(png),
	}, nil
}
