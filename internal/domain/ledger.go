package domain

import "context"

type AssetHolding struct {
	AssetID uint64
	Amount  uint64
}

// LedgerReader is the read-only view of the ledger the holding oracle needs.
// Implementations must be safe for concurrent use and must honour ctx
// deadlines.
type LedgerReader interface {
	// HeldAssets lists the assets currently held by address.
	HeldAssets(ctx context.Context, address string) ([]AssetHolding, error)
	// ValidAddress reports whether address is syntactically valid on this ledger.
	ValidAddress(address string) bool
}
