package codec

import (
	"errors"
	"testing"
	"time"

	"github.com/roshannn-07/fairpass/internal/domain"
)

func sampleClaim() domain.TicketClaim {
	return domain.TicketClaim{
		AssetID:       12345,
		HolderAddress: "ADDR1",
		EventID:       domain.EventIDFromInt(999),
		EventName:     "Launch Night",
		IssuedAt:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSerializeCanonicalBytes(t *testing.T) {
	got, err := Serialize(sampleClaim())
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	want := `{"assetId":12345,"userAddress":"ADDR1","eventId":999,"timestamp":"2025-01-01T00:00:00.000Z","eventName":"Launch Night"}`
	if string(got) != want {
		t.Fatalf("canonical mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestSerializeIsIndependentOfLocation(t *testing.T) {
	claim := sampleClaim()
	loc := time.FixedZone("UTC+5", 5*3600)
	shifted := claim
	shifted.IssuedAt = claim.IssuedAt.In(loc)

	a, err := Serialize(claim)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	b, err := Serialize(shifted)
	if err != nil {
		t.Fatalf("serialize shifted: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("expected identical bytes, got %s vs %s", a, b)
	}
}

func TestSerializeKeepsStringEventIDAndSkipsHTMLEscaping(t *testing.T) {
	claim := sampleClaim()
	claim.EventID = domain.EventIDFromString("evt-<42>")
	claim.EventName = "Rock & Roll"
	got, err := Serialize(claim)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	want := `{"assetId":12345,"userAddress":"ADDR1","eventId":"evt-<42>","timestamp":"2025-01-01T00:00:00.000Z","eventName":"Rock & Roll"}`
	if string(got) != want {
		t.Fatalf("canonical mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	claims := []domain.TicketClaim{
		sampleClaim(),
		{
			AssetID:       749632100,
			HolderAddress: "7ZUECA7HFLZTXENRV24SHLU4AVPUTMTTDUFUBNBD64C73F3UHRTHAIOF6Q",
			EventID:       domain.EventIDFromString("4b1c2d9e-launch"),
			EventName:     "",
			IssuedAt:      time.Date(2024, 11, 3, 18, 30, 15, 123*int(time.Millisecond), time.UTC),
		},
		{
			AssetID:       1,
			HolderAddress: "x",
			EventID:       domain.EventIDFromInt(0),
			EventName:     "Überraschung \"quoted\" \n newline",
			IssuedAt:      time.Date(2030, 6, 30, 23, 59, 59, 999*int(time.Millisecond), time.UTC),
		},
	}
	for _, claim := range claims {
		data, err := Serialize(claim)
		if err != nil {
			t.Fatalf("serialize: %v", err)
		}
		back, err := Deserialize(data)
		if err != nil {
			t.Fatalf("deserialize %s: %v", data, err)
		}
		if !back.Equal(claim) {
			t.Fatalf("round trip mismatch: %+v vs %+v", back, claim)
		}
		again, err := Serialize(back)
		if err != nil {
			t.Fatalf("re-serialize: %v", err)
		}
		if string(again) != string(data) {
			t.Fatalf("re-serialization drifted: %s vs %s", again, data)
		}
	}
}

func TestDeserializeAcceptsReorderedFields(t *testing.T) {
	input := `{"eventName":"Launch Night","timestamp":"2025-01-01T00:00:00Z","eventId":999,"userAddress":"ADDR1","assetId":12345}`
	claim, err := Deserialize([]byte(input))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if !claim.Equal(sampleClaim()) {
		t.Fatalf("unexpected claim: %+v", claim)
	}
}

func TestDeserializeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"missing assetId":    `{"userAddress":"ADDR1","eventId":999,"timestamp":"2025-01-01T00:00:00Z","eventName":"x"}`,
		"string assetId":     `{"assetId":"12345","userAddress":"ADDR1","eventId":999,"timestamp":"2025-01-01T00:00:00Z","eventName":"x"}`,
		"zero assetId":       `{"assetId":0,"userAddress":"ADDR1","eventId":999,"timestamp":"2025-01-01T00:00:00Z","eventName":"x"}`,
		"negative assetId":   `{"assetId":-5,"userAddress":"ADDR1","eventId":999,"timestamp":"2025-01-01T00:00:00Z","eventName":"x"}`,
		"fractional assetId": `{"assetId":1.5,"userAddress":"ADDR1","eventId":999,"timestamp":"2025-01-01T00:00:00Z","eventName":"x"}`,
		"exponent assetId":   `{"assetId":1e3,"userAddress":"ADDR1","eventId":999,"timestamp":"2025-01-01T00:00:00Z","eventName":"x"}`,
		"null address":       `{"assetId":1,"userAddress":null,"eventId":999,"timestamp":"2025-01-01T00:00:00Z","eventName":"x"}`,
		"empty address":      `{"assetId":1,"userAddress":" ","eventId":999,"timestamp":"2025-01-01T00:00:00Z","eventName":"x"}`,
		"numeric address":    `{"assetId":1,"userAddress":42,"eventId":999,"timestamp":"2025-01-01T00:00:00Z","eventName":"x"}`,
		"fractional eventId": `{"assetId":1,"userAddress":"A","eventId":9.5,"timestamp":"2025-01-01T00:00:00Z","eventName":"x"}`,
		"bool eventId":       `{"assetId":1,"userAddress":"A","eventId":true,"timestamp":"2025-01-01T00:00:00Z","eventName":"x"}`,
		"empty eventId":      `{"assetId":1,"userAddress":"A","eventId":"","timestamp":"2025-01-01T00:00:00Z","eventName":"x"}`,
		"bad timestamp":      `{"assetId":1,"userAddress":"A","eventId":1,"timestamp":"yesterday","eventName":"x"}`,
		"date only":          `{"assetId":1,"userAddress":"A","eventId":1,"timestamp":"2025-01-01","eventName":"x"}`,
		"sub-millisecond":    `{"assetId":1,"userAddress":"A","eventId":1,"timestamp":"2025-01-01T00:00:00.0000001Z","eventName":"x"}`,
		"missing eventName":  `{"assetId":1,"userAddress":"A","eventId":1,"timestamp":"2025-01-01T00:00:00Z"}`,
		"unknown field":      `{"assetId":1,"userAddress":"A","eventId":1,"timestamp":"2025-01-01T00:00:00Z","eventName":"x","admin":true}`,
		"negative eventId":   `{"assetId":1,"userAddress":"A","eventId":-5,"timestamp":"2025-01-01T00:00:00Z","eventName":"x"}`,
		"blank eventId":      `{"assetId":1,"userAddress":"A","eventId":"   ","timestamp":"2025-01-01T00:00:00Z","eventName":"x"}`,
		"case-folded key":    `{"ASSETID":1,"userAddress":"A","eventId":1,"timestamp":"2025-01-01T00:00:00Z","eventName":"x"}`,
		"duplicate assetId":  `{"assetId":1,"userAddress":"A","eventId":1,"timestamp":"2025-01-01T00:00:00Z","eventName":"x","assetId":2}`,
		"trailing data":      `{"assetId":1,"userAddress":"A","eventId":1,"timestamp":"2025-01-01T00:00:00Z","eventName":"x"} {}`,
		"not an object":      `[1,2,3]`,
		"null":               `null`,
		"not json":           `assetId=1`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Deserialize([]byte(input))
			if !errors.Is(err, domain.ErrMalformedClaim) {
				t.Fatalf("expected ErrMalformedClaim, got %v", err)
			}
		})
	}
}

func TestSerializeRejectsInvalidClaims(t *testing.T) {
	base := sampleClaim()
	cases := map[string]func(c *domain.TicketClaim){
		"zero asset":      func(c *domain.TicketClaim) { c.AssetID = 0 },
		"empty holder":    func(c *domain.TicketClaim) { c.HolderAddress = "" },
		"zero event":      func(c *domain.TicketClaim) { c.EventID = domain.EventID{} },
		"negative event":  func(c *domain.TicketClaim) { c.EventID = domain.EventIDFromInt(-5) },
		"blank event":     func(c *domain.TicketClaim) { c.EventID = domain.EventIDFromString("   ") },
		"zero issuedAt":   func(c *domain.TicketClaim) { c.IssuedAt = time.Time{} },
		"sub-millisecond": func(c *domain.TicketClaim) { c.IssuedAt = c.IssuedAt.Add(time.Microsecond) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			claim := base
			mutate(&claim)
			if _, err := Serialize(claim); !errors.Is(err, domain.ErrMalformedClaim) {
				t.Fatalf("expected ErrMalformedClaim, got %v", err)
			}
		})
	}
}
