package domain

import "errors"

var (
	ErrMalformedClaim    = errors.New("malformed claim")
	ErrBadSignature      = errors.New("bad signature")
	ErrAssetNotHeld      = errors.New("asset not held")
	ErrLedgerUnreachable = errors.New("ledger unreachable")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrSigning           = errors.New("signing error")
	ErrDecode            = errors.New("decode error")

	ErrVerifierConfig   = errors.New("verifier not configured")
	ErrAlreadyCheckedIn = errors.New("ticket already checked in")
	ErrAdmissionDenied  = errors.New("admission denied")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
)

// ReasonForError maps a verification failure onto its verdict reason.
func ReasonForError(err error) Reason {
	switch {
	case err == nil:
		return ReasonOK
	case errors.Is(err, ErrBadSignature):
		return ReasonBadSignature
	case errors.Is(err, ErrAssetNotHeld):
		return ReasonAssetNotHeld
	case errors.Is(err, ErrLedgerUnreachable):
		return ReasonLedgerUnreachable
	default:
		return ReasonMalformedClaim
	}
}

// ErrorForReason is the inverse of ReasonForError for denial reasons.
func ErrorForReason(reason Reason) error {
	switch reason {
	case ReasonOK:
		return nil
	case ReasonBadSignature:
		return ErrBadSignature
	case ReasonAssetNotHeld:
		return ErrAssetNotHeld
	case ReasonLedgerUnreachable:
		return ErrLedgerUnreachable
	default:
		return ErrMalformedClaim
	}
}
