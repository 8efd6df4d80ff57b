package http

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roshannn-07/fairpass/internal/domain"
	"github.com/roshannn-07/fairpass/internal/infra/codec"
	"github.com/roshannn-07/fairpass/internal/infra/metrics"
	"github.com/roshannn-07/fairpass/internal/infra/qr"
	"github.com/roshannn-07/fairpass/internal/pkg/retry"
	"github.com/roshannn-07/fairpass/internal/usecase"
)

const (
	defaultScanMaxBytes   = 4 << 20
	defaultBulkMaxTickets = 200

	reasonTicketInvalid = "ticket_invalid"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ticketRequest accepts a ticket either as the scanned QR text or as its
// payload and signature.
type ticketRequest struct {
	QR        string          `json:"qr,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Signature string          `json:"signature,omitempty"`
}

func (r ticketRequest) ticket() (usecase.SignedTicket, bool) {
	if r.QR != "" {
		return usecase.SignedTicket{Envelope: []byte(r.QR)}, true
	}
	payload := bytes.TrimSpace(r.Payload)
	if len(payload) > 0 && !bytes.Equal(payload, []byte("null")) {
		return usecase.SignedTicket{Payload: payload, Signature: r.Signature}, true
	}
	return usecase.SignedTicket{}, false
}

type verifyRequest struct {
	ticketRequest
	WalletAddress string  `json:"walletAddress,omitempty"`
	AssetID       *uint64 `json:"assetId,omitempty"`
}

// verdictResponse never says which check failed: every definitive denial is
// reported as ticket_invalid. Details stay in the server log.
type verdictResponse struct {
	Valid            bool            `json:"valid"`
	Reason           string          `json:"reason"`
	Retryable        bool            `json:"retryable"`
	AssetID          uint64          `json:"assetId,omitempty"`
	WalletAddress    string          `json:"walletAddress,omitempty"`
	EventID          *domain.EventID `json:"eventId,omitempty"`
	SignatureChecked bool            `json:"signature_checked"`
}

type bulkVerifyRequest struct {
	Tickets []ticketRequest `json:"tickets"`
}

type bulkVerifyResponse struct {
	Results []verdictResponse `json:"results"`
}

type issueRequest struct {
	AssetID     uint64         `json:"assetId"`
	UserAddress string         `json:"userAddress"`
	EventID     domain.EventID `json:"eventId"`
	EventName   string         `json:"eventName"`
}

type issueResponse struct {
	Payload   json.RawMessage `json:"payload"`
	Signature string          `json:"signature"`
	QR        string          `json:"qr"`
	QRDataURL string          `json:"qr_data_url"`
	KeyID     string          `json:"key_id"`
}

type checkInRequest struct {
	ticketRequest
	Gate string `json:"gate,omitempty"`
}

type checkInResponse struct {
	CheckedIn   bool           `json:"checked_in"`
	CheckInID   string         `json:"checkin_id"`
	CheckedInAt string         `json:"checked_in_at"`
	Gate        string         `json:"gate,omitempty"`
	AssetID     uint64         `json:"assetId"`
	EventID     domain.EventID `json:"eventId"`
}

func (s *Server) handleHealth(c *gin.Context) {
	dbMode := "no-db"
	if s.store.Enabled() {
		dbMode = "db"
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mode": dbMode, "ledger": s.ledgerMode})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": dbMode, "ledger": s.ledgerMode})
}

func (s *Server) handleNoRoute(c *gin.Context) {
	if c.Request.Method == http.MethodPost {
		switch c.Request.URL.Path {
		case "/v1/tickets:verify":
			c.Set(metrics.RouteKey, c.Request.URL.Path)
			s.handleVerify(c)
			return
		case "/v1/tickets:scan":
			c.Set(metrics.RouteKey, c.Request.URL.Path)
			s.handleScan(c)
			return
		case "/v1/tickets:issue":
			c.Set(metrics.RouteKey, c.Request.URL.Path)
			s.handleIssue(c)
			return
		case "/v1/tickets:bulk-verify":
			c.Set(metrics.RouteKey, c.Request.URL.Path)
			s.handleBulkVerify(c)
			return
		}
	}
	writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
}

func (s *Server) handleVerify(c *gin.Context) {
	if !s.enforceRateLimit(c, "tickets.verify") {
		return
	}
	if s.verifyUC == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "VERIFIER_UNAVAILABLE", "verifier not configured")
		return
	}
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}

	ctx := c.Request.Context()
	if ticket, ok := req.ticket(); ok {
		verdict := s.verifyWithRetry(ctx, func(ctx context.Context) domain.Verdict {
			return s.verifyUC.Execute(ctx, ticket)
		})
		writeVerdict(c, verdict, false)
		return
	}
	if req.WalletAddress != "" || req.AssetID != nil {
		var assetID uint64
		if req.AssetID != nil {
			assetID = *req.AssetID
		}
		verdict := s.verifyWithRetry(ctx, func(ctx context.Context) domain.Verdict {
			return s.verifyUC.ExecuteHolding(ctx, req.WalletAddress, assetID)
		})
		writeVerdict(c, verdict, true)
		return
	}
	writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "qr, payload and signature, or walletAddress and assetId are required")
}

func (s *Server) handleScan(c *gin.Context) {
	if !s.enforceRateLimit(c, "tickets.scan") {
		return
	}
	if s.verifyUC == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "VERIFIER_UNAVAILABLE", "verifier not configured")
		return
	}
	maxBytes := int64(s.cfg.ScanMaxBytes)
	if maxBytes <= 0 {
		maxBytes = defaultScanMaxBytes
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+1<<10)

	header, err := c.FormFile("image")
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "multipart field image is required")
		return
	}
	if header.Size > maxBytes {
		writeErrorCode(c, http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", "image exceeds size limit")
		return
	}
	file, err := header.Open()
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "unreadable upload")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxBytes))
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "unreadable upload")
		return
	}

	text, err := qr.ReadText(data)
	if err != nil {
		s.log.Info("qr scan failed", zap.Error(err))
		writeErrorCode(c, http.StatusBadRequest, "QR_UNREADABLE", "no ticket QR code found in image")
		return
	}
	ticket := usecase.SignedTicket{Envelope: []byte(text)}
	verdict := s.verifyWithRetry(c.Request.Context(), func(ctx context.Context) domain.Verdict {
		return s.verifyUC.Execute(ctx, ticket)
	})
	writeVerdict(c, verdict, false)
}

func (s *Server) handleBulkVerify(c *gin.Context) {
	if !s.enforceRateLimit(c, "tickets.bulk_verify") {
		return
	}
	if s.bulkUC == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "VERIFIER_UNAVAILABLE", "verifier not configured")
		return
	}
	var req bulkVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}
	maxTickets := s.cfg.BulkMaxTickets
	if maxTickets <= 0 {
		maxTickets = defaultBulkMaxTickets
	}
	if len(req.Tickets) == 0 || len(req.Tickets) > maxTickets {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "tickets must contain between 1 and "+strconv.Itoa(maxTickets)+" entries")
		return
	}

	tickets := make([]usecase.SignedTicket, len(req.Tickets))
	for i, t := range req.Tickets {
		tickets[i], _ = t.ticket()
	}
	verdicts := s.bulkUC.Execute(c.Request.Context(), tickets)
	out := bulkVerifyResponse{Results: make([]verdictResponse, len(verdicts))}
	for i, v := range verdicts {
		out.Results[i] = buildVerdictResponse(v, false)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleIssue(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	if s.issueUC == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "SIGNING_UNAVAILABLE", "ticket signing key not configured")
		return
	}
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}
	issued, err := s.issueUC.Execute(c.Request.Context(), usecase.IssueTicketRequest{
		AssetID:       req.AssetID,
		HolderAddress: req.UserAddress,
		EventID:       req.EventID,
		EventName:     req.EventName,
	})
	if err != nil {
		if errors.Is(err, domain.ErrMalformedClaim) || errors.Is(err, domain.ErrInvalidArgument) {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_TICKET_REQUEST", err.Error())
			return
		}
		s.writeError(c, err)
		return
	}
	env, err := codec.ParseEnvelope(issued.Envelope)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, issueResponse{
		Payload:   env.Payload,
		Signature: issued.Signed.Signature,
		QR:        string(issued.Envelope),
		QRDataURL: issued.DataURL,
		KeyID:     s.issueUC.Signer.KeyID(),
	})
}

func (s *Server) handleCheckIn(c *gin.Context) {
	if !s.enforceRateLimit(c, "checkins.create") {
		return
	}
	if s.checkinUC == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "CHECKIN_UNAVAILABLE", "check-in not configured")
		return
	}
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}
	ticket, ok := req.ticket()
	if !ok {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "qr or payload and signature are required")
		return
	}

	result, err := retry.Do(c.Request.Context(), s.retryPolicy,
		func(_ usecase.CheckInResult, err error) bool { return errors.Is(err, domain.ErrLedgerUnreachable) },
		func(ctx context.Context) (usecase.CheckInResult, error) {
			return s.checkinUC.Execute(ctx, usecase.CheckInRequest{Ticket: ticket, Gate: req.Gate})
		})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, buildCheckInResponse(result.CheckIn))
}

func (s *Server) handleGetCheckIn(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	if s.checkins == nil {
		s.writeError(c, domain.ErrNotFound)
		return
	}
	assetID, err := strconv.ParseUint(c.Param("asset_id"), 10, 64)
	if err != nil || assetID == 0 {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "asset_id must be a positive integer")
		return
	}
	eventID := parseEventIDParam(c.Param("event_id"), c.Query("event_id_kind"))
	checkIn, err := s.checkins.Get(c.Request.Context(), eventID, assetID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildCheckInResponse(checkIn))
}

// parseEventIDParam treats an all-digit path segment as a numeric event id
// unless the caller asks for the string kind.
func parseEventIDParam(raw, kind string) domain.EventID {
	if kind != "string" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n >= 0 {
			return domain.EventIDFromInt(n)
		}
	}
	return domain.EventIDFromString(raw)
}

func (s *Server) verifyWithRetry(ctx context.Context, fn func(context.Context) domain.Verdict) domain.Verdict {
	verdict, _ := retry.Do(ctx, s.retryPolicy,
		func(v domain.Verdict, _ error) bool { return v.Reason.Retryable() },
		func(ctx context.Context) (domain.Verdict, error) { return fn(ctx), nil })
	return verdict
}

func (s *Server) requireAdmin(c *gin.Context) bool {
	if s.adminAPIKey == "" {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "admin key required")
		return false
	}
	key := c.GetHeader("X-Admin-Key")
	if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.adminAPIKey)) != 1 {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid admin key")
		return false
	}
	return true
}

func publicReason(reason domain.Reason) string {
	switch reason {
	case domain.ReasonOK, domain.ReasonLedgerUnreachable:
		return string(reason)
	default:
		return reasonTicketInvalid
	}
}

// buildVerdictResponse echoes claim fields only for accepted tickets, since
// a rejected claim is unauthenticated. Legacy lookups echo their own input.
func buildVerdictResponse(v domain.Verdict, echoInput bool) verdictResponse {
	out := verdictResponse{
		Valid:            v.Valid,
		Reason:           publicReason(v.Reason),
		Retryable:        v.Reason.Retryable(),
		SignatureChecked: v.SignatureChecked,
	}
	if v.Valid || echoInput {
		out.AssetID = v.AssetID
		out.WalletAddress = v.HolderAddress
	}
	if v.Valid && !v.EventID.IsZero() {
		eventID := v.EventID
		out.EventID = &eventID
	}
	return out
}

func writeVerdict(c *gin.Context, v domain.Verdict, echoInput bool) {
	status := http.StatusOK
	if v.Reason == domain.ReasonLedgerUnreachable {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, buildVerdictResponse(v, echoInput))
}

func buildCheckInResponse(checkIn domain.CheckIn) checkInResponse {
	return checkInResponse{
		CheckedIn:   true,
		CheckInID:   checkIn.ID,
		CheckedInAt: checkIn.CheckedInAt.UTC().Format(time.RFC3339Nano),
		Gate:        checkIn.Gate,
		AssetID:     checkIn.AssetID,
		EventID:     checkIn.EventID,
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	status, code, message := http.StatusInternalServerError, "INTERNAL", "internal error"
	switch {
	case errors.Is(err, domain.ErrAlreadyCheckedIn):
		status, code, message = http.StatusConflict, "ALREADY_CHECKED_IN", "ticket already checked in"
	case errors.Is(err, domain.ErrAdmissionDenied):
		status, code, message = http.StatusForbidden, "ADMISSION_DENIED", err.Error()
	case errors.Is(err, domain.ErrLedgerUnreachable):
		status, code, message = http.StatusServiceUnavailable, "LEDGER_UNREACHABLE", "ledger unreachable, retry"
	case errors.Is(err, domain.ErrMalformedClaim),
		errors.Is(err, domain.ErrBadSignature),
		errors.Is(err, domain.ErrAssetNotHeld),
		errors.Is(err, domain.ErrDecode):
		status, code, message = http.StatusBadRequest, "TICKET_INVALID", "ticket invalid"
	case errors.Is(err, domain.ErrInvalidArgument):
		status, code, message = http.StatusBadRequest, "INVALID_REQUEST", err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, code, message = http.StatusNotFound, "NOT_FOUND", "not found"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code, message = http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	writeErrorCode(c, status, code, message)
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}
