package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/roshannn-07/fairpass/internal/domain"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	signed := domain.SignedClaim{Claim: sampleClaim(), Signature: "deadbeef"}
	data, err := EncodeEnvelope(signed)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(string(data), `{"payload":{"assetId":12345,`) {
		t.Fatalf("unexpected envelope layout: %s", data)
	}
	if !strings.HasSuffix(string(data), `"signature":"deadbeef"}`) {
		t.Fatalf("unexpected envelope layout: %s", data)
	}
	back, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !back.Equal(signed) {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, signed)
	}
}

func TestParseEnvelopeErrors(t *testing.T) {
	cases := map[string]string{
		"not json":          "hello",
		"missing payload":   `{"signature":"ab"}`,
		"null payload":      `{"payload":null,"signature":"ab"}`,
		"missing signature": `{"payload":{}}`,
		"extra field":       `{"payload":{},"signature":"ab","kid":"x"}`,
		"trailing":          `{"payload":{},"signature":"ab"}x`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseEnvelope([]byte(input)); !errors.Is(err, domain.ErrDecode) {
				t.Fatalf("expected ErrDecode, got %v", err)
			}
		})
	}
}

func TestDecodeEnvelopeMalformedPayload(t *testing.T) {
	input := `{"payload":{"userAddress":"ADDR1","eventId":999,"timestamp":"2025-01-01T00:00:00Z","eventName":"x"},"signature":"ab"}`
	_, err := DecodeEnvelope([]byte(input))
	if !errors.Is(err, domain.ErrMalformedClaim) {
		t.Fatalf("expected ErrMalformedClaim, got %v", err)
	}
}

func TestDecodeSignature(t *testing.T) {
	raw, err := DecodeSignature("0xDEADbeef")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw) != 4 || raw[0] != 0xde {
		t.Fatalf("unexpected bytes: %x", raw)
	}
	if _, err := DecodeSignature("zz"); !errors.Is(err, domain.ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
	if _, err := DecodeSignature(""); !errors.Is(err, domain.ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}
