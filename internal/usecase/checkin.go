package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roshannn-07/fairpass/internal/domain"
)

type CheckInRequest struct {
	Ticket SignedTicket
	Gate   string
}

type CheckInResult struct {
	Verdict   domain.Verdict
	CheckIn   domain.CheckIn
	Admission *domain.AdmissionResult
}

// CheckInTicket admits a ticket at the door. A ticket is admitted at most
// once per event; the repository enforces that atomically.
type CheckInTicket struct {
	Verify *VerifyTicket
	Policy AdmissionPolicy
	Repo   domain.CheckInRepository
	Now    func() time.Time
	Logger *zap.Logger
}

func (uc *CheckInTicket) Execute(ctx context.Context, req CheckInRequest) (CheckInResult, error) {
	claim, verdict := uc.Verify.evaluate(ctx, req.Ticket)
	result := CheckInResult{Verdict: verdict}
	if !verdict.Valid {
		return result, domain.ErrorForReason(verdict.Reason)
	}

	now := time.Now().UTC()
	if uc.Now != nil {
		now = uc.Now().UTC()
	}

	if uc.Policy != nil {
		admission, err := uc.Policy.Evaluate(ctx, domain.NewAdmissionInput(claim, verdict, req.Gate, now))
		if err != nil {
			return result, fmt.Errorf("evaluate admission policy: %w", err)
		}
		result.Admission = &admission
		if !admission.Allow {
			codes := make([]string, 0, len(admission.Deny))
			for _, d := range admission.Deny {
				codes = append(codes, d.Code)
			}
			uc.logger().Info("admission denied",
				zap.Uint64("asset_id", claim.AssetID),
				zap.String("event_id", claim.EventID.String()),
				zap.Strings("deny_codes", codes),
			)
			return result, fmt.Errorf("%w: %s", domain.ErrAdmissionDenied, strings.Join(codes, ","))
		}
	}

	recorded, err := uc.Repo.Record(ctx, domain.CheckIn{
		ID:            uuid.NewString(),
		EventID:       claim.EventID,
		AssetID:       claim.AssetID,
		HolderAddress: claim.HolderAddress,
		Gate:          req.Gate,
		CheckedInAt:   now,
	})
	if err != nil {
		return result, err
	}
	result.CheckIn = recorded
	uc.logger().Info("ticket checked in",
		zap.String("checkin_id", recorded.ID),
		zap.Uint64("asset_id", recorded.AssetID),
		zap.String("event_id", recorded.EventID.String()),
		zap.String("gate", recorded.Gate),
	)
	return result, nil
}

func (uc *CheckInTicket) logger() *zap.Logger {
	if uc.Logger == nil {
		return zap.NewNop()
	}
	return uc.Logger
}
