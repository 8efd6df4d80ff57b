package domain

import "time"

type AdmissionInput struct {
	Claim   AdmissionClaim `json:"claim"`
	Verdict string         `json:"verdict"`
	Gate    string         `json:"gate,omitempty"`
	Now     time.Time      `json:"now"`
}

type AdmissionClaim struct {
	AssetID       uint64    `json:"asset_id"`
	HolderAddress string    `json:"holder_address"`
	EventID       string    `json:"event_id"`
	EventName     string    `json:"event_name"`
	IssuedAt      time.Time `json:"issued_at"`
}

type AdmissionDeny struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type AdmissionResult struct {
	Allow bool            `json:"allow"`
	Deny  []AdmissionDeny `json:"deny,omitempty"`
}

func NewAdmissionInput(claim TicketClaim, verdict Verdict, gate string, now time.Time) AdmissionInput {
	return AdmissionInput{
		Claim: AdmissionClaim{
			AssetID:       claim.AssetID,
			HolderAddress: claim.HolderAddress,
			EventID:       claim.EventID.String(),
			EventName:     claim.EventName,
			IssuedAt:      claim.IssuedAt.UTC(),
		},
		Verdict: string(verdict.Reason),
		Gate:    gate,
		Now:     now.UTC(),
	}
}
