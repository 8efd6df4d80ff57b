// Package codec holds the canonical byte form of ticket claims shared by the
// signing and verification paths, and the QR envelope wrapped around it.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/roshannn-07/fairpass/internal/domain"
)

// TimestampLayout is the canonical form of issuedAt: UTC with millisecond
// precision, the shape Date.prototype.toISOString produces.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// wireClaim fixes the field order of the canonical serialization. Do not
// reorder these fields: existing signatures cover this exact layout.
type wireClaim struct {
	AssetID     uint64         `json:"assetId"`
	UserAddress string         `json:"userAddress"`
	EventID     domain.EventID `json:"eventId"`
	Timestamp   string         `json:"timestamp"`
	EventName   string         `json:"eventName"`
}

// Serialize returns the canonical bytes of claim: compact JSON, fixed field
// order, no HTML escaping.
func Serialize(claim domain.TicketClaim) ([]byte, error) {
	if err := validateClaim(claim); err != nil {
		return nil, err
	}
	return marshalCompact(wireClaim{
		AssetID:     claim.AssetID,
		UserAddress: claim.HolderAddress,
		EventID:     claim.EventID,
		Timestamp:   FormatTimestamp(claim.IssuedAt),
		EventName:   claim.EventName,
	})
}

// Deserialize parses canonical (or any equivalent JSON) claim bytes. Anything
// ambiguous is rejected with domain.ErrMalformedClaim.
func Deserialize(data []byte) (domain.TicketClaim, error) {
	fields, err := readClaimObject(data)
	if err != nil {
		return domain.TicketClaim{}, err
	}
	raw := struct {
		AssetID, UserAddress, EventID, Timestamp, EventName json.RawMessage
	}{
		AssetID:     fields["assetId"],
		UserAddress: fields["userAddress"],
		EventID:     fields["eventId"],
		Timestamp:   fields["timestamp"],
		EventName:   fields["eventName"],
	}

	assetID, err := parseAssetID(raw.AssetID)
	if err != nil {
		return domain.TicketClaim{}, err
	}
	address, err := parseRequiredString("userAddress", raw.UserAddress, false)
	if err != nil {
		return domain.TicketClaim{}, err
	}
	eventID, err := parseEventID(raw.EventID)
	if err != nil {
		return domain.TicketClaim{}, err
	}
	timestamp, err := parseRequiredString("timestamp", raw.Timestamp, false)
	if err != nil {
		return domain.TicketClaim{}, err
	}
	issuedAt, err := ParseTimestamp(timestamp)
	if err != nil {
		return domain.TicketClaim{}, err
	}
	eventName, err := parseRequiredString("eventName", raw.EventName, true)
	if err != nil {
		return domain.TicketClaim{}, err
	}

	return domain.TicketClaim{
		AssetID:       assetID,
		HolderAddress: address,
		EventID:       eventID,
		EventName:     eventName,
		IssuedAt:      issuedAt,
	}, nil
}

var claimFields = map[string]bool{
	"assetId":     true,
	"userAddress": true,
	"eventId":     true,
	"timestamp":   true,
	"eventName":   true,
}

// readClaimObject splits a single JSON object into its members. Keys must
// match the claim field names exactly and appear at most once.
func readClaimObject(data []byte) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, malformed("invalid JSON: %v", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, malformed("claim must be a JSON object")
	}

	fields := make(map[string]json.RawMessage, len(claimFields))
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed("invalid JSON: %v", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, malformed("invalid JSON: object key expected")
		}
		if !claimFields[key] {
			return nil, malformed("unknown field %q", key)
		}
		if _, dup := fields[key]; dup {
			return nil, malformed("duplicate field %q", key)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, malformed("invalid JSON: %v", err)
		}
		fields[key] = value
	}
	if _, err := dec.Token(); err != nil {
		return nil, malformed("invalid JSON: %v", err)
	}
	if err := ensureEOF(dec); err != nil {
		return nil, malformed("%v", err)
	}
	return fields, nil
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts any RFC3339 timestamp that fits in millisecond
// precision.
func ParseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, malformed("invalid timestamp %q", value)
	}
	if t.Nanosecond()%int(time.Millisecond) != 0 {
		return time.Time{}, malformed("timestamp %q exceeds millisecond precision", value)
	}
	return t.UTC(), nil
}

func validateClaim(claim domain.TicketClaim) error {
	switch {
	case claim.AssetID == 0:
		return malformed("assetId must be positive")
	case strings.TrimSpace(claim.HolderAddress) == "":
		return malformed("userAddress is required")
	case claim.EventID.IsZero():
		return malformed("eventId is required")
	case !claim.EventID.Valid():
		return malformed("eventId must be a non-blank string or a non-negative integer")
	case claim.IssuedAt.IsZero():
		return malformed("timestamp is required")
	case claim.IssuedAt.Nanosecond()%int(time.Millisecond) != 0:
		return malformed("timestamp exceeds millisecond precision")
	}
	return nil
}

func parseAssetID(raw json.RawMessage) (uint64, error) {
	if isAbsent(raw) {
		return 0, malformed("assetId is required")
	}
	// ParseUint rejects signs, fractions, exponents and quoted values.
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, malformed("assetId must be a positive integer")
	}
	if id == 0 {
		return 0, malformed("assetId must be a positive integer")
	}
	return id, nil
}

func parseEventID(raw json.RawMessage) (domain.EventID, error) {
	if isAbsent(raw) {
		return domain.EventID{}, malformed("eventId is required")
	}
	var eventID domain.EventID
	if raw[0] == '"' {
		s, err := parseRequiredString("eventId", raw, false)
		if err != nil {
			return domain.EventID{}, err
		}
		eventID = domain.EventIDFromString(s)
	} else {
		id, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return domain.EventID{}, malformed("eventId must be a string or a non-negative integer")
		}
		eventID = domain.EventIDFromInt(id)
	}
	if !eventID.Valid() {
		return domain.EventID{}, malformed("eventId must be a non-blank string or a non-negative integer")
	}
	return eventID, nil
}

func parseRequiredString(field string, raw json.RawMessage, allowEmpty bool) (string, error) {
	if isAbsent(raw) {
		return "", malformed("%s is required", field)
	}
	if raw[0] != '"' {
		return "", malformed("%s must be a string", field)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", malformed("%s must be a string", field)
	}
	if !allowEmpty && strings.TrimSpace(s) == "" {
		return "", malformed("%s must not be empty", field)
	}
	return s, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func marshalCompact(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func ensureEOF(dec *json.Decoder) error {
	var extra any
	if err := dec.Decode(&extra); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return errors.New("invalid JSON: trailing data")
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrMalformedClaim, fmt.Sprintf(format, args...))
}
