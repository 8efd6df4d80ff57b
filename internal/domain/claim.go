package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// EventID identifies the event a ticket grants entry to. Events are keyed by
// integers in some deployments and by opaque strings in others, and the JSON
// kind is part of what gets signed, so the kind is preserved.
type EventID struct {
	value   string
	numeric bool
}

func EventIDFromInt(id int64) EventID {
	return EventID{value: strconv.FormatInt(id, 10), numeric: true}
}

func EventIDFromString(id string) EventID {
	return EventID{value: id}
}

func (e EventID) String() string { return e.value }

func (e EventID) IsNumeric() bool { return e.numeric }

func (e EventID) IsZero() bool { return e.value == "" }

// Valid reports whether e can be signed and parsed back: a non-negative
// integer or a string that is not blank.
func (e EventID) Valid() bool {
	if e.numeric {
		id, err := strconv.ParseInt(e.value, 10, 64)
		return err == nil && id >= 0
	}
	return strings.TrimSpace(e.value) != ""
}

func (e EventID) MarshalJSON() ([]byte, error) {
	if e.numeric {
		return []byte(e.value), nil
	}
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e.value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

var errEventID = errors.New("event id must be a non-blank string or a non-negative integer")

func (e *EventID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty event id")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = EventIDFromString(s)
	} else {
		id, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return errEventID
		}
		*e = EventIDFromInt(id)
	}
	if !e.Valid() {
		return errEventID
	}
	return nil
}

// TicketClaim is the set of facts asserted about an issued ticket.
// AssetID, HolderAddress, EventID and IssuedAt are fixed at signing time;
// EventName is display only.
type TicketClaim struct {
	AssetID       uint64
	HolderAddress string
	EventID       EventID
	EventName     string
	IssuedAt      time.Time
}

// Equal reports whether two claims carry the same facts. IssuedAt is compared
// as an instant so location differences do not matter.
func (c TicketClaim) Equal(other TicketClaim) bool {
	return c.AssetID == other.AssetID &&
		c.HolderAddress == other.HolderAddress &&
		c.EventID == other.EventID &&
		c.EventName == other.EventName &&
		c.IssuedAt.Equal(other.IssuedAt)
}

// SignedClaim pairs a claim with the hex signature over its canonical bytes.
type SignedClaim struct {
	Claim     TicketClaim
	Signature string
}

func (s SignedClaim) Equal(other SignedClaim) bool {
	return s.Signature == other.Signature && s.Claim.Equal(other.Claim)
}
