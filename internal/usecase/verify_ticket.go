package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/roshannn-07/fairpass/internal/domain"
	"github.com/roshannn-07/fairpass/internal/infra/codec"
)

// SignedTicket is what a scanner hands over. Exactly one of Envelope (the
// scanned QR text), Payload (raw claim bytes) or Claim is used, in that
// order; Signature is ignored when Envelope is set.
type SignedTicket struct {
	Envelope  []byte
	Payload   []byte
	Claim     *domain.TicketClaim
	Signature string
}

func TicketFromSigned(signed domain.SignedClaim) SignedTicket {
	claim := signed.Claim
	return SignedTicket{Claim: &claim, Signature: signed.Signature}
}

// VerifyTicket decides whether a presented ticket grants entry. Checks run
// in a fixed order: claim shape, signature, then ledger holding. The ledger
// is never consulted for a ticket that fails the earlier checks.
type VerifyTicket struct {
	Verifier ClaimVerifier
	Oracle   HoldingOracle
	Logger   *zap.Logger
	Observer VerdictObserver
}

func (uc *VerifyTicket) Execute(ctx context.Context, ticket SignedTicket) domain.Verdict {
	_, verdict := uc.evaluate(ctx, ticket)
	return verdict
}

// ExecuteHolding checks only that holderAddress holds assetID. It backs the
// legacy wallet-and-asset lookup, which carries no signed claim.
func (uc *VerifyTicket) ExecuteHolding(ctx context.Context, holderAddress string, assetID uint64) domain.Verdict {
	verdict := domain.Verdict{AssetID: assetID, HolderAddress: holderAddress}
	err := uc.checkHolding(ctx, holderAddress, assetID)
	return uc.finish(verdict, err)
}

func (uc *VerifyTicket) evaluate(ctx context.Context, ticket SignedTicket) (domain.TicketClaim, domain.Verdict) {
	claim, signature, err := resolveTicket(ticket)
	if err != nil {
		return claim, uc.finish(domain.Verdict{}, err)
	}

	verdict := domain.Verdict{
		AssetID:          claim.AssetID,
		HolderAddress:    claim.HolderAddress,
		EventID:          claim.EventID,
		SignatureChecked: true,
	}
	if err := uc.Verifier.Check(claim, signature); err != nil {
		if !errors.Is(err, domain.ErrBadSignature) {
			err = fmt.Errorf("%w: %w", domain.ErrBadSignature, err)
		}
		return claim, uc.finish(verdict, err)
	}
	return claim, uc.finish(verdict, uc.checkHolding(ctx, claim.HolderAddress, claim.AssetID))
}

func resolveTicket(ticket SignedTicket) (domain.TicketClaim, string, error) {
	switch {
	case len(ticket.Envelope) > 0:
		env, err := codec.ParseEnvelope(ticket.Envelope)
		if err != nil {
			return domain.TicketClaim{}, "", fmt.Errorf("%w: %w", domain.ErrMalformedClaim, err)
		}
		claim, err := codec.Deserialize(env.Payload)
		return claim, env.Signature, err
	case ticket.Claim != nil:
		if _, err := codec.Serialize(*ticket.Claim); err != nil {
			return domain.TicketClaim{}, "", err
		}
		return *ticket.Claim, ticket.Signature, nil
	case len(ticket.Payload) > 0:
		claim, err := codec.Deserialize(ticket.Payload)
		return claim, ticket.Signature, err
	default:
		return domain.TicketClaim{}, "", fmt.Errorf("%w: empty payload", domain.ErrMalformedClaim)
	}
}

func (uc *VerifyTicket) checkHolding(ctx context.Context, holderAddress string, assetID uint64) error {
	held, err := uc.Oracle.Holds(ctx, holderAddress, assetID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return fmt.Errorf("%w: %w", domain.ErrMalformedClaim, err)
		}
		// Anything other than a rejected argument means the holding is unknown.
		if !errors.Is(err, domain.ErrLedgerUnreachable) {
			err = fmt.Errorf("%w: %w", domain.ErrLedgerUnreachable, err)
		}
		return err
	}
	if !held {
		return domain.ErrAssetNotHeld
	}
	return nil
}

func (uc *VerifyTicket) finish(verdict domain.Verdict, err error) domain.Verdict {
	verdict.Reason = domain.ReasonForError(err)
	verdict.Valid = verdict.Reason == domain.ReasonOK
	if uc.Observer != nil {
		uc.Observer.ObserveVerdict(verdict)
	}
	if err != nil {
		uc.logger().Info("ticket denied",
			zap.String("reason", string(verdict.Reason)),
			zap.Uint64("asset_id", verdict.AssetID),
			zap.String("holder_address", verdict.HolderAddress),
			zap.String("event_id", verdict.EventID.String()),
			zap.Bool("signature_checked", verdict.SignatureChecked),
			zap.String("key_id", uc.keyID()),
			zap.Error(err),
		)
	}
	return verdict
}

func (uc *VerifyTicket) keyID() string {
	if uc.Verifier == nil {
		return ""
	}
	return uc.Verifier.KeyID()
}

func (uc *VerifyTicket) logger() *zap.Logger {
	if uc.Logger == nil {
		return zap.NewNop()
	}
	return uc.Logger
}
