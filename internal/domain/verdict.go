package domain

type Reason string

const (
	ReasonOK                Reason = "ok"
	ReasonBadSignature      Reason = "bad_signature"
	ReasonMalformedClaim    Reason = "malformed_claim"
	ReasonAssetNotHeld      Reason = "asset_not_held"
	ReasonLedgerUnreachable Reason = "ledger_unreachable"
)

// Retryable reports whether a caller may retry the verification. Every other
// reason is a definitive deny.
func (r Reason) Retryable() bool {
	return r == ReasonLedgerUnreachable
}

// Verdict is the outcome of a single ticket verification. It is built fresh
// per call and never stored by the verification service.
type Verdict struct {
	Valid         bool
	Reason        Reason
	AssetID       uint64
	HolderAddress string
	EventID       EventID

	// SignatureChecked is false only for holding-only checks that carry no
	// signed claim.
	SignatureChecked bool
}
