package domain

import (
	"context"
	"time"
)

type CheckIn struct {
	ID            string
	EventID       EventID
	AssetID       uint64
	HolderAddress string
	Gate          string
	CheckedInAt   time.Time
}

// CheckInRepository records admissions. Record must be atomic per
// (EventID, AssetID) and return ErrAlreadyCheckedIn on a second admission.
type CheckInRepository interface {
	Record(ctx context.Context, checkIn CheckIn) (CheckIn, error)
	Get(ctx context.Context, eventID EventID, assetID uint64) (CheckIn, error)
}
