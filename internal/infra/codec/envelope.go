package codec

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roshannn-07/fairpass/internal/domain"
)

// Envelope is the QR wire format: the canonical claim embedded verbatim plus
// its hex signature.
type Envelope struct {
	Payload   json.RawMessage `json:"payload"`
	Signature string          `json:"signature"`
}

func EncodeEnvelope(signed domain.SignedClaim) ([]byte, error) {
	if signed.Signature == "" {
		return nil, fmt.Errorf("%w: signature is required", domain.ErrDecode)
	}
	payload, err := Serialize(signed.Claim)
	if err != nil {
		return nil, err
	}
	return marshalCompact(Envelope{Payload: payload, Signature: signed.Signature})
}

// ParseEnvelope splits raw envelope bytes into payload and signature without
// interpreting the payload. Structural problems yield domain.ErrDecode.
func ParseEnvelope(data []byte) (Envelope, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimSpace(data)))
	dec.DisallowUnknownFields()

	var env Envelope
	if err := dec.Decode(&env); err != nil {
		return Envelope{}, fmt.Errorf("%w: invalid envelope: %v", domain.ErrDecode, err)
	}
	if err := ensureEOF(dec); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	if isAbsent(env.Payload) {
		return Envelope{}, fmt.Errorf("%w: payload is required", domain.ErrDecode)
	}
	if strings.TrimSpace(env.Signature) == "" {
		return Envelope{}, fmt.Errorf("%w: signature is required", domain.ErrDecode)
	}
	return env, nil
}

// DecodeEnvelope parses envelope bytes into a signed claim. A well-formed
// envelope carrying a bad claim fails with domain.ErrMalformedClaim.
func DecodeEnvelope(data []byte) (domain.SignedClaim, error) {
	env, err := ParseEnvelope(data)
	if err != nil {
		return domain.SignedClaim{}, err
	}
	claim, err := Deserialize(env.Payload)
	if err != nil {
		return domain.SignedClaim{}, err
	}
	return domain.SignedClaim{Claim: claim, Signature: env.Signature}, nil
}

// DecodeSignature turns a hex signature into bytes. Upper-case hex and a 0x
// prefix are tolerated.
func DecodeSignature(signature string) ([]byte, error) {
	s := strings.TrimPrefix(strings.TrimSpace(signature), "0x")
	if s == "" {
		return nil, fmt.Errorf("%w: empty signature", domain.ErrBadSignature)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: signature is not hex", domain.ErrBadSignature)
	}
	return raw, nil
}
